package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/config"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:                 buildinfo.ProductName,
		Usage:                "FleetDesk vehicle request client",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			RoutesCommand(),
			HodCommand(),
			ReportCommand(),
			UploadCommand(),
			ConfigCommand(),
			ShellCommand(),
			VersionCommand(),
		},
		After: closeRuntime,
	}
	return app
}

// globalFlags returns the global CLI flags. Environment variables are read
// by the config loader (FLEETDESK_API_BASE_URL and so on), so only the
// config path has an EnvVars binding here.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"FLEETDESK_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Aliases: []string{"b"},
			Usage:   "FleetDesk API base URL (api.base_url)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml (output.format)",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout, 0 for none (client.timeout)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "Extra CA bundle for TLS (client.ca_file)",
		},
		&cli.StringFlag{
			Name:  "storage-dir",
			Usage: "Local state directory (storage.dir)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (log.level)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Shorthand for --log-level debug",
		},
	}
}

// flagOverrides maps explicitly set global flags onto config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	set := func(flag, key string, value any) {
		if c.IsSet(flag) {
			overrides[key] = value
		}
	}

	set("base-url", "api.base_url", c.String("base-url"))
	set("output", "output.format", c.String("output"))
	set("timeout", "client.timeout", c.Duration("timeout").String())
	set("ca-file", "client.ca_file", c.String("ca-file"))
	set("storage-dir", "storage.dir", c.String("storage-dir"))
	set("log-level", "log.level", c.String("log-level"))
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

// loadConfig resolves the configuration for c.
func loadConfig(c *cli.Context) (*config.CLIConfig, string, map[string]any, error) {
	path := c.String("config")
	overrides := flagOverrides(c)
	cfg, err := config.Load(path, overrides)
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, path, overrides, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
