package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.LoginURL != "login.html" {
		t.Errorf("LoginURL = %q", cfg.API.LoginURL)
	}
	if cfg.Client.Timeout != 0 || cfg.Client.RateLimit != 0 {
		t.Errorf("Client = %+v, want zero timeout and no rate limit", cfg.Client)
	}
	if !strings.HasSuffix(cfg.Storage.Dir, filepath.Join(".fleetdesk", "data")) {
		t.Errorf("Storage.Dir = %q", cfg.Storage.Dir)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) = %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := DefaultConfigPath(); got != filepath.Join("/home/tester", ".fleetdesk", "config.yaml") {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL || cfg.Output.Format != "table" {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://file.example/api/
client:
  timeout: 30s
  rate_limit: 5
log:
  level: info
output:
  format: yaml
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FLEETDESK_LOG_LEVEL", "debug")
	t.Setenv("FLEETDESK_OUTPUT_FORMAT", "json")

	cfg, err := Load(path, map[string]any{"output.format": "table"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://file.example/api/" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.LoginURL != DefaultLoginURL {
		t.Errorf("LoginURL = %q, want default", cfg.API.LoginURL)
	}
	if cfg.Client.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Client.Timeout)
	}
	if cfg.Client.RateLimit != 5 {
		t.Errorf("RateLimit = %v", cfg.Client.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, env should win over file", cfg.Log.Level)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %q, flag should win over env", cfg.Output.Format)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.API.BaseURL = "https://fleet.example"
	cfg.Client.Timeout = 15 * time.Second
	cfg.Metrics.Textfile = "/var/lib/node_exporter/fleetdesk.prom"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CLIConfig)
		want   string
	}{
		{"empty base url", func(c *CLIConfig) { c.API.BaseURL = "" }, "api.base_url is required"},
		{"bad scheme", func(c *CLIConfig) { c.API.BaseURL = "ftp://x" }, "unsupported scheme"},
		{"negative timeout", func(c *CLIConfig) { c.Client.Timeout = -time.Second }, "client.timeout"},
		{"negative rate", func(c *CLIConfig) { c.Client.RateLimit = -1 }, "client.rate_limit"},
		{"missing ca", func(c *CLIConfig) { c.Client.CAFile = "/nonexistent/ca.pem" }, "client.ca_file"},
		{"no storage", func(c *CLIConfig) { c.Storage.Dir = "" }, "storage.dir"},
		{"log level", func(c *CLIConfig) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *CLIConfig) { c.Log.Format = "xml" }, "log.format"},
		{"output format", func(c *CLIConfig) { c.Output.Format = "csv" }, "output.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Output.Format = "csv"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "log.level") || !strings.Contains(err.Error(), "output.format") {
		t.Errorf("Validate() = %v, want both problems", err)
	}
}
