package config

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultLoginURL     = "login.html"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultOutputFormat = "table"

	dirName  = ".fleetdesk"
	fileName = "config.yaml"
)

// HomeDir returns ~/.fleetdesk, falling back to ./.fleetdesk when the
// home directory is unknown.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(HomeDir(), fileName)
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APISection{
			BaseURL:  DefaultBaseURL,
			LoginURL: DefaultLoginURL,
		},
		Storage: StorageSection{
			Dir: filepath.Join(HomeDir(), "data"),
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Output: OutputSection{
			Format: DefaultOutputFormat,
		},
	}
}

// defaultMap flattens Default for the loader.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"api.base_url":      d.API.BaseURL,
		"api.login_url":     d.API.LoginURL,
		"client.timeout":    d.Client.Timeout.String(),
		"client.rate_limit": d.Client.RateLimit,
		"client.ca_file":    d.Client.CAFile,
		"storage.dir":       d.Storage.Dir,
		"log.level":         d.Log.Level,
		"log.format":        d.Log.Format,
		"output.format":     d.Output.Format,
		"metrics.textfile":  d.Metrics.Textfile,
	}
}
