package command

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/config"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/lookup"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
	"github.com/fleetdesk/fleetdesk-go/internal/credential"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/shutdown"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/tlsroots"
	"github.com/fleetdesk/fleetdesk-go/internal/storage"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/logger"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/metric"
)

const (
	runtimeKey = "runtime"
	sharedKey  = "sharedRuntime"
	secretFile = "secret"
)

// Runtime holds everything a command needs. It is built once per process
// (or once per shell) and closed on exit.
type Runtime struct {
	ConfigPath string
	Overrides  map[string]any

	Log     logger.Logger
	Metrics *metric.Registry
	Store   storage.LocalStore
	Tokens  connection.CredentialStore
	Saver   *connection.DirSaver

	Out io.Writer
	Err io.Writer

	// wide and format come from the current invocation's flags.
	wide       bool
	format     string
	httpClient *http.Client
	shutdown   *shutdown.Handler

	mu     sync.RWMutex
	cfg    *config.CLIConfig
	client *connection.Client
	routes *lookup.RouteTreeCache
}

// runtimeDeps are the parts of a Runtime that differ between the real CLI
// and tests.
type runtimeDeps struct {
	cfg        *config.CLIConfig
	cfgPath    string
	overrides  map[string]any
	log        logger.Logger
	metrics    *metric.Registry
	store      storage.LocalStore
	tokens     connection.CredentialStore
	httpClient *http.Client
	out, err   io.Writer
}

func newRuntime(d runtimeDeps) (*Runtime, error) {
	rt := &Runtime{
		ConfigPath: d.cfgPath,
		Overrides:  d.overrides,
		Log:        d.log,
		Metrics:    d.metrics,
		Store:      d.store,
		Tokens:     d.tokens,
		Saver:      &connection.DirSaver{Dir: "."},
		Out:        d.out,
		Err:        d.err,
		httpClient: d.httpClient,
		shutdown:   shutdown.NewHandler(5 * time.Second),
	}
	if rt.Log == nil {
		rt.Log = logger.Discard()
	}
	if rt.Metrics == nil {
		rt.Metrics = metric.NewRegistry()
	}
	if err := rt.apply(d.cfg); err != nil {
		return nil, err
	}

	rt.shutdown.OnShutdown(rt.writeMetrics)
	return rt, nil
}

// openRuntime builds the production runtime: badger under storage.dir and a
// sealed token store keyed by ~/.fleetdesk/secret.
func openRuntime(c *cli.Context) (*Runtime, error) {
	cfg, path, overrides, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	metrics := metric.NewRegistry()

	store, err := storage.OpenBadger(storage.DefaultConfig(cfg.Storage.Dir), log.Slog())
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	store.RegisterMetrics(metrics.Prometheus())

	secret, err := credential.LoadOrCreateSecret(filepath.Join(config.HomeDir(), secretFile))
	if err != nil {
		store.Close()
		return nil, err
	}
	sealer, err := credential.NewSealer(secret)
	if err != nil {
		store.Close()
		return nil, err
	}

	rt, err := newRuntime(runtimeDeps{
		cfg:       cfg,
		cfgPath:   path,
		overrides: overrides,
		log:       log,
		metrics:   metrics,
		store:     store,
		tokens:    credential.NewStore(store, credential.WithSealer(sealer), credential.WithLogger(log)),
		out:       c.App.Writer,
		err:       c.App.ErrWriter,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	rt.shutdown.OnShutdown(func(context.Context) error {
		return store.Close()
	})
	return rt, nil
}

// apply (re)builds the client and route cache from cfg.
func (r *Runtime) apply(cfg *config.CLIConfig) error {
	tlsConfig, err := tlsroots.ClientConfig(cfg.Client.CAFile)
	if err != nil {
		return err
	}

	client := connection.New(connection.Config{
		BaseURL:       cfg.API.BaseURL,
		LoginLocation: cfg.API.LoginURL,
		Timeout:       cfg.Client.Timeout,
		RateLimit:     cfg.Client.RateLimit,
		TLSConfig:     tlsConfig,
		HTTPClient:    r.httpClient,
		Credentials:   r.Tokens,
		Navigator:     &connection.TerminalNavigator{W: r.Err},
		Notifier:      &connection.WriterNotifier{W: r.Err},
		Saver:         r.Saver,
		Progress:      r.Err,
		Logger:        r.Log,
		Metrics:       r.Metrics,
	})
	routes := lookup.NewRouteTreeCache(client, r.Store, lookup.Options{
		Logger:  r.Log,
		Metrics: r.Metrics,
	})
	client.SetRouteCache(routes)

	r.mu.Lock()
	r.cfg = cfg
	r.client = client
	r.routes = routes
	r.mu.Unlock()

	logger.SetLevel(cfg.Log.Level)
	return nil
}

// Reload re-reads the configuration file and applies it. An invalid file
// leaves the current configuration in place.
func (r *Runtime) Reload() error {
	cfg, err := config.Load(r.ConfigPath, r.Overrides)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	return r.apply(cfg)
}

// Config returns the active configuration.
func (r *Runtime) Config() *config.CLIConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Client returns the API client.
func (r *Runtime) Client() *connection.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Routes returns the route tree cache.
func (r *Runtime) Routes() *lookup.RouteTreeCache {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.routes
}

// useFlags applies the per-invocation display flags.
func (r *Runtime) useFlags(c *cli.Context) {
	r.wide = c.Bool("wide")
	r.format = ""
	if c.IsSet("output") {
		r.format = c.String("output")
	}
}

func (r *Runtime) outputFormat() (output.Format, error) {
	if r.format != "" {
		return output.ParseFormat(r.format)
	}
	return output.ParseFormat(r.Config().Output.Format)
}

// Print writes data in the configured output format.
func (r *Runtime) Print(data any) error {
	format, err := r.outputFormat()
	if err != nil {
		return err
	}
	return output.NewFormatter(format, r.wide).Format(r.Out, data)
}

// Show writes data, using table for the table format.
func (r *Runtime) Show(data any, table output.Tabular) error {
	format, err := r.outputFormat()
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		return output.NewFormatter(format, r.wide).Format(r.Out, table)
	}
	return output.NewFormatter(format, r.wide).Format(r.Out, data)
}

func (r *Runtime) tableOutput() bool {
	format, _ := r.outputFormat()
	return format == output.FormatTable
}

// PrintBody writes an API response. Raw bodies are printed verbatim.
func (r *Runtime) PrintBody(body *connection.Body) error {
	if body.IsRaw() {
		_, err := fmt.Fprintln(r.Out, body.Text())
		return err
	}
	return r.Print(body.Value())
}

// Close runs the shutdown hooks.
func (r *Runtime) Close() error {
	return r.shutdown.Shutdown()
}

func (r *Runtime) writeMetrics(context.Context) error {
	path := r.Config().Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := r.Metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// runtimeFrom returns the runtime for c, opening it on first use.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		var err error
		if rt, err = openRuntime(c); err != nil {
			return nil, err
		}
		c.App.Metadata[runtimeKey] = rt
	}
	rt.useFlags(c)
	return rt, nil
}

// closeRuntime closes a runtime this app opened. Shared runtimes belong to
// the enclosing shell.
func closeRuntime(c *cli.Context) error {
	if shared, _ := c.App.Metadata[sharedKey].(bool); shared {
		return nil
	}
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	return rt.Close()
}

// commandContext bounds a command by the configured timeout, if any.
func commandContext(c *cli.Context, rt *Runtime) (context.Context, context.CancelFunc) {
	if d := rt.Config().Client.Timeout; d > 0 {
		return context.WithTimeout(c.Context, d)
	}
	return context.WithCancel(c.Context)
}
