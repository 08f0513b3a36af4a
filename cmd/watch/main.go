// Package main provides the watch CLI: subscribe to live market
// channels and print every update.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"solana-prediction-sdk/client"
	"solana-prediction-sdk/config"
	"solana-prediction-sdk/stream"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		env        = flag.String("env", "development", "Environment preset: development or production")
		apiKey     = flag.String("api-key", "", "Platform API key")
		channels   = flag.String("channels", "prices", "Comma-separated channels: prices,trades,orderbook")
		tickers    = flag.String("tickers", "", "Comma-separated market tickers")
		all        = flag.Bool("all", false, "Subscribe to every market instead of specific tickers")
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
	if !*all && *tickers == "" {
		log.Fatal("either -tickers or -all is required")
	}

	c := client.New(cfg)
	defer c.Close()

	c.Stream.OnPrice(func(u stream.PriceUpdate) {
		log.WithFields(logrus.Fields{
			"ticker": u.Ticker,
			"yes":    u.YesPrice,
			"no":     u.NoPrice,
		}).Info("price")
	})
	c.Stream.OnTrade(func(u stream.TradeUpdate) {
		log.WithFields(logrus.Fields{
			"ticker":   u.Ticker,
			"side":     u.Side,
			"price":    u.Price,
			"quantity": u.Quantity,
		}).Info("trade")
	})
	c.Stream.OnOrderbook(func(u stream.OrderbookUpdate) {
		log.WithFields(logrus.Fields{
			"ticker":   u.Ticker,
			"yes_bids": len(u.YesBids),
			"yes_asks": len(u.YesAsks),
		}).Info("orderbook")
	})
	c.Stream.OnError(func(err error) {
		log.WithError(err).Warn("stream error")
	})

	tickerList := splitList(*tickers)
	for _, name := range splitList(*channels) {
		channel := stream.Channel(name)
		if *all {
			err = c.Stream.SubscribeAll(channel)
		} else {
			err = c.Stream.Subscribe(channel, tickerList...)
		}
		if err != nil {
			log.WithError(err).WithField("channel", name).Fatal("subscribe failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Stream.Connect(ctx); err != nil {
		log.WithError(err).Fatal("connect failed")
	}
	log.WithField("endpoint", cfg.WebSocketURL).Info("connected")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.WithField("signal", sig.String()).Info("shutting down")
}

func loadConfig(path, env string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.ForEnvironment(config.Environment(env)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
