package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestForEnvironmentPresets(t *testing.T) {
	dev := ForEnvironment(Development)
	if dev.MetadataBaseURL != "https://dev-prediction-markets-api.dflow.net/api/v1" {
		t.Errorf("unexpected dev metadata URL: %s", dev.MetadataBaseURL)
	}
	if dev.TradeBaseURL != "https://dev-quote-api.dflow.net" {
		t.Errorf("unexpected dev trade URL: %s", dev.TradeBaseURL)
	}

	prod := ForEnvironment(Production)
	if prod.WebSocketURL != "wss://prediction-markets-api.dflow.net/api/v1/ws" {
		t.Errorf("unexpected prod websocket URL: %s", prod.WebSocketURL)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{}.Normalize()

	if cfg.Environment != Development {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("expected 2s poll interval, got %s", cfg.PollInterval)
	}
	if cfg.ConfirmTimeout != 60*time.Second {
		t.Errorf("expected 60s confirm timeout, got %s", cfg.ConfirmTimeout)
	}
	if cfg.MaxBatchSize != 100 || cfg.MaxFilterAddresses != 200 {
		t.Errorf("unexpected ceilings: %d/%d", cfg.MaxBatchSize, cfg.MaxFilterAddresses)
	}
	if cfg.MaxReconnectAttempts != 10 {
		t.Errorf("expected 10 reconnect attempts, got %d", cfg.MaxReconnectAttempts)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Environment:  Production,
		PollInterval: 500 * time.Millisecond,
	}.Normalize()

	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("explicit poll interval overwritten: %s", cfg.PollInterval)
	}
	if cfg.TradeBaseURL != "https://quote-api.dflow.net" {
		t.Errorf("expected production trade URL, got %s", cfg.TradeBaseURL)
	}
}

func TestLoad(t *testing.T) {
	content := `
environment: production
api_key: test-key
poll_interval_sec: 1
max_batch_size: 25
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIKey != "test-key" {
		t.Errorf("unexpected api key: %s", cfg.APIKey)
	}
	if cfg.PollInterval != time.Second {
		t.Errorf("expected 1s poll interval, got %s", cfg.PollInterval)
	}
	if cfg.MaxBatchSize != 25 {
		t.Errorf("expected batch size 25, got %d", cfg.MaxBatchSize)
	}
	if cfg.MetadataBaseURL != "https://prediction-markets-api.dflow.net/api/v1" {
		t.Errorf("expected production metadata URL, got %s", cfg.MetadataBaseURL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
