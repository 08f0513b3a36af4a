// Package main provides the record CLI: capture live price ticks into
// ClickHouse.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"solana-prediction-sdk/capture"
	chstore "solana-prediction-sdk/capture/clickhouse"
	"solana-prediction-sdk/client"
	"solana-prediction-sdk/config"
	"solana-prediction-sdk/stream"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		env        = flag.String("env", "development", "Environment preset: development or production")
		apiKey     = flag.String("api-key", "", "Platform API key")
		dsn        = flag.String("clickhouse", "clickhouse://localhost:9000/predictions", "ClickHouse DSN")
		tickers    = flag.String("tickers", "", "Comma-separated market tickers")
		all        = flag.Bool("all", false, "Capture every market instead of specific tickers")
		batchSize  = flag.Int("batch-size", capture.DefaultBatchSize, "Ticks per insert batch")
		flushSec   = flag.Int("flush-sec", 5, "Maximum seconds before a partial batch is flushed")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := chstore.NewConn(ctx, *dsn)
	if err != nil {
		log.WithError(err).Fatal("clickhouse connect failed")
	}
	defer conn.Close()
	if err := chstore.Migrate(ctx, conn); err != nil {
		log.WithError(err).Fatal("clickhouse schema failed")
	}

	recorder := capture.NewRecorder(chstore.NewStore(conn),
		capture.WithBatchSize(*batchSize),
		capture.WithFlushInterval(time.Duration(*flushSec)*time.Second),
		capture.WithLogger(log),
	)

	c := client.New(cfg)
	defer c.Close()

	detach := recorder.Attach(c.Stream)
	defer detach()
	c.Stream.OnError(func(err error) {
		log.WithError(err).Warn("stream error")
	})

	if *all {
		err = c.Stream.SubscribeAll(stream.ChannelPrices)
	} else {
		err = c.Stream.Subscribe(stream.ChannelPrices, splitList(*tickers)...)
	}
	if err != nil {
		log.WithError(err).Fatal("subscribe failed")
	}

	if err := c.Stream.Connect(ctx); err != nil {
		log.WithError(err).Fatal("connect failed")
	}
	log.WithField("endpoint", cfg.WebSocketURL).Info("recording")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("shutting down")
		cancel()
	}()

	if err := recorder.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("recorder stopped")
	}
	if dropped := recorder.Dropped(); dropped > 0 {
		log.WithField("dropped", dropped).Warn("ticks were dropped")
	}
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
