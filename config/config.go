// Package config holds the explicit configuration passed to every SDK
// component at construction time. There is no package-level mutable state;
// callers build a Config (usually from an environment preset) and hand it
// to client.New.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment selects a set of platform endpoints.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Well-known mint addresses and platform constants.
const (
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	SOLMint  = "So11111111111111111111111111111111111111112"

	// OutcomeTokenDecimals is the decimal scale of every outcome token.
	OutcomeTokenDecimals = 6
)

// Defaults shared by all environments.
const (
	DefaultSlippageBps        = 50
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultPollInterval       = 2 * time.Second
	DefaultConfirmTimeout     = 60 * time.Second
	DefaultReconnectInterval  = 5 * time.Second
	DefaultMaxReconnects      = 10
	DefaultMaxBatchSize       = 100
	DefaultMaxFilterAddresses = 200
)

// Config carries endpoints, credentials and tuning knobs for the SDK.
// Zero values are filled in by Normalize.
type Config struct {
	Environment Environment `yaml:"environment"`
	APIKey      string      `yaml:"api_key"`

	MetadataBaseURL string `yaml:"metadata_base_url"`
	TradeBaseURL    string `yaml:"trade_base_url"`
	WebSocketURL    string `yaml:"websocket_url"`
	RPCEndpoint     string `yaml:"rpc_endpoint"`

	HTTPTimeout          time.Duration `yaml:"-"`
	PollInterval         time.Duration `yaml:"-"`
	ConfirmTimeout       time.Duration `yaml:"-"`
	ReconnectInterval    time.Duration `yaml:"-"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`

	DefaultSlippageBps int `yaml:"default_slippage_bps"`
	MaxBatchSize       int `yaml:"max_batch_size"`
	MaxFilterAddresses int `yaml:"max_filter_addresses"`
}

// ForEnvironment returns the endpoint preset for env with all defaults set.
func ForEnvironment(env Environment) Config {
	cfg := Config{Environment: env}
	switch env {
	case Production:
		cfg.MetadataBaseURL = "https://prediction-markets-api.dflow.net/api/v1"
		cfg.TradeBaseURL = "https://quote-api.dflow.net"
		cfg.WebSocketURL = "wss://prediction-markets-api.dflow.net/api/v1/ws"
	default:
		cfg.Environment = Development
		cfg.MetadataBaseURL = "https://dev-prediction-markets-api.dflow.net/api/v1"
		cfg.TradeBaseURL = "https://dev-quote-api.dflow.net"
		cfg.WebSocketURL = "wss://dev-prediction-markets-api.dflow.net/api/v1/ws"
	}
	return cfg.Normalize()
}

// Default returns the development preset.
func Default() Config {
	return ForEnvironment(Development)
}

// Normalize fills unset fields with defaults and returns the result.
func (c Config) Normalize() Config {
	if c.Environment == "" {
		c.Environment = Development
	}
	if c.MetadataBaseURL == "" || c.TradeBaseURL == "" || c.WebSocketURL == "" {
		preset := ForEnvironment(c.Environment)
		if c.MetadataBaseURL == "" {
			c.MetadataBaseURL = preset.MetadataBaseURL
		}
		if c.TradeBaseURL == "" {
			c.TradeBaseURL = preset.TradeBaseURL
		}
		if c.WebSocketURL == "" {
			c.WebSocketURL = preset.WebSocketURL
		}
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = DefaultMaxReconnects
	}
	if c.DefaultSlippageBps <= 0 {
		c.DefaultSlippageBps = DefaultSlippageBps
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.MaxFilterAddresses <= 0 {
		c.MaxFilterAddresses = DefaultMaxFilterAddresses
	}
	return c
}

// fileConfig is the on-disk schema. Durations are plain seconds so the
// YAML stays readable.
type fileConfig struct {
	Config            `yaml:",inline"`
	HTTPTimeoutSec    int `yaml:"http_timeout_sec"`
	PollIntervalSec   int `yaml:"poll_interval_sec"`
	ConfirmTimeoutSec int `yaml:"confirm_timeout_sec"`
	ReconnectEverySec int `yaml:"reconnect_interval_sec"`
}

// Load reads a YAML config file. Missing fields fall back to the
// environment preset named in the file (development when absent).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := fc.Config
	cfg.HTTPTimeout = time.Duration(fc.HTTPTimeoutSec) * time.Second
	cfg.PollInterval = time.Duration(fc.PollIntervalSec) * time.Second
	cfg.ConfirmTimeout = time.Duration(fc.ConfirmTimeoutSec) * time.Second
	cfg.ReconnectInterval = time.Duration(fc.ReconnectEverySec) * time.Second
	return cfg.Normalize(), nil
}
