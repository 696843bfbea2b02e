package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
)

// Validate checks cfg for values the client cannot work with.
func Validate(cfg *CLIConfig) error {
	var errs []error

	if cfg.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if u, err := url.Parse(cfg.API.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	} else if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("api.base_url: unsupported scheme %q", u.Scheme))
	}

	if cfg.Client.Timeout < 0 {
		errs = append(errs, errors.New("client.timeout must not be negative"))
	}
	if cfg.Client.RateLimit < 0 {
		errs = append(errs, errors.New("client.rate_limit must not be negative"))
	}
	if cfg.Client.CAFile != "" {
		if _, err := os.Stat(cfg.Client.CAFile); err != nil {
			errs = append(errs, fmt.Errorf("client.ca_file: %w", err))
		}
	}

	if cfg.Storage.Dir == "" {
		errs = append(errs, errors.New("storage.dir is required"))
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Log.Format))
	}

	if _, err := output.ParseFormat(cfg.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}

	return errors.Join(errs...)
}
