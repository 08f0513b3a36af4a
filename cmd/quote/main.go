// Package main provides the quote CLI: fetch a swap quote and
// optionally build the swap transaction for a user key.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"solana-prediction-sdk/client"
	"solana-prediction-sdk/config"
	"solana-prediction-sdk/trade"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		env        = flag.String("env", "development", "Environment preset: development or production")
		apiKey     = flag.String("api-key", "", "Platform API key")
		inputMint  = flag.String("input-mint", config.USDCMint, "Input mint address")
		outputMint = flag.String("output-mint", "", "Output mint address")
		amount     = flag.Uint64("amount", 0, "Amount in base units of the fixed side")
		mode       = flag.String("mode", "ExactIn", "Swap mode: ExactIn or ExactOut")
		slippage   = flag.Int("slippage-bps", -1, "Slippage tolerance in basis points (-1 uses the default)")
		userKey    = flag.String("user", "", "User public key; builds the swap transaction when set")
	)
	flag.Parse()

	log := logrus.New()

	cfg, err := loadConfig(*configPath, *env)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}

	c := client.New(cfg)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()

	intent := trade.Intent{
		InputMint:  *inputMint,
		OutputMint: *outputMint,
		Amount:     *amount,
		Mode:       trade.Mode(*mode),
	}
	if *slippage >= 0 {
		intent.SlippageBps = trade.Slippage(*slippage)
	}

	quote, err := c.Trade.GetQuote(ctx, intent)
	if err != nil {
		log.WithError(err).Fatal("quote failed")
	}
	printJSON(quote)

	if *userKey != "" {
		intent.UserPublicKey = *userKey
		swap, err := c.Trade.CreateSwap(ctx, intent, quote)
		if err != nil {
			log.WithError(err).Fatal("swap build failed")
		}
		printJSON(swap)
	}
}

func loadConfig(path, env string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.ForEnvironment(config.Environment(env)), nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
