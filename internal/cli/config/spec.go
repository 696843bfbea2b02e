package config

import "time"

// CLIConfig is the configuration for fleetdesk-cli.
type CLIConfig struct {
	API     APISection     `koanf:"api" yaml:"api"`
	Client  ClientSection  `koanf:"client" yaml:"client"`
	Storage StorageSection `koanf:"storage" yaml:"storage"`
	Log     LogSection     `koanf:"log" yaml:"log"`
	Output  OutputSection  `koanf:"output" yaml:"output"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
}

// APISection locates the FleetDesk service.
type APISection struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	// LoginURL is where an expired session sends the user.
	LoginURL string `koanf:"login_url" yaml:"login_url"`
}

// ClientSection tunes the HTTP client.
type ClientSection struct {
	// Timeout of zero leaves the transport defaults in place.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	// RateLimit is in requests per second; zero disables it.
	RateLimit float64 `koanf:"rate_limit" yaml:"rate_limit"`
	CAFile    string  `koanf:"ca_file" yaml:"ca_file"`
}

// StorageSection holds the local state directory.
type StorageSection struct {
	Dir string `koanf:"dir" yaml:"dir"`
}

type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

type OutputSection struct {
	Format string `koanf:"format" yaml:"format"`
}

// MetricsSection controls the node_exporter textfile written on exit.
type MetricsSection struct {
	Textfile string `koanf:"textfile" yaml:"textfile"`
}
