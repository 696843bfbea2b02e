package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/fleetdesk/fleetdesk-go/internal/infra/buildinfo"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/logger"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/metric"
)

// Invalidator drops cached server data.
type Invalidator interface {
	Invalidate()
}

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to every request path. One trailing slash is
	// stripped; a missing scheme defaults to http://.
	BaseURL string

	// LoginLocation is passed to the Navigator when a session ends.
	// Default: "login.html"
	LoginLocation string

	// Timeout bounds a whole request. Zero leaves it to the transport.
	Timeout time.Duration

	// RateLimit caps outgoing requests per second. Zero disables it.
	RateLimit float64

	// TLSConfig is used by the default transport.
	TLSConfig *tls.Config

	// HTTPClient replaces the default client; Timeout and TLSConfig are
	// then ignored.
	HTTPClient *http.Client

	Credentials CredentialStore
	Navigator   Navigator
	Notifier    Notifier
	Saver       Saver

	// Progress receives download progress. Nil disables it.
	Progress io.Writer

	Logger  logger.Logger
	Metrics *metric.Registry
	Now     func() time.Time
}

// RequestOptions customises a single request.
type RequestOptions struct {
	// Method defaults to GET for Request and POST for Upload.
	Method string

	// Header values override the defaults, except Authorization which is
	// always taken from the credential store when a token is present.
	Header http.Header

	// Body is sent as-is when it is a string, []byte or io.Reader and
	// JSON-encoded otherwise.
	Body any
}

// Client talks to the FleetDesk API.
type Client struct {
	baseURL       string
	loginLocation string
	http          *http.Client
	limiter       *rate.Limiter

	creds     CredentialStore
	navigator Navigator
	notifier  Notifier
	saver     Saver
	progress  io.Writer

	log     logger.Logger
	metrics *metric.Registry
	now     func() time.Time

	mu         sync.RWMutex
	routeCache Invalidator
}

// New creates a Client.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:       normalizeBaseURL(cfg.BaseURL),
		loginLocation: cfg.LoginLocation,
		http:          cfg.HTTPClient,
		creds:         cfg.Credentials,
		navigator:     cfg.Navigator,
		notifier:      cfg.Notifier,
		saver:         cfg.Saver,
		progress:      cfg.Progress,
		log:           cfg.Logger,
		metrics:       cfg.Metrics,
		now:           cfg.Now,
	}

	if c.loginLocation == "" {
		c.loginLocation = DefaultLoginLocation
	}
	if c.http == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.TLSConfig != nil {
			transport.TLSClientConfig = cfg.TLSConfig
		}
		c.http = &http.Client{Timeout: cfg.Timeout, Transport: transport}
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	if c.creds == nil {
		c.creds = &memoryCredentials{}
	}
	if c.navigator == nil {
		c.navigator = nopUI{}
	}
	if c.notifier == nil {
		c.notifier = nopUI{}
	}
	if c.saver == nil {
		c.saver = &DirSaver{Dir: "."}
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials returns the token store in use.
func (c *Client) Credentials() CredentialStore {
	return c.creds
}

// SetRouteCache registers the cache that admin writes must invalidate.
func (c *Client) SetRouteCache(inv Invalidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routeCache = inv
}

// Request performs a JSON API call.
//
// Errors are always *ClientError except for an unencodable opts.Body.
// A 401 clears the token and navigates to the login location before
// returning ErrSessionExpired.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Body, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	defaults := http.Header{}
	defaults.Set("Content-Type", "application/json")

	return c.do(ctx, exchange{
		method:   method,
		path:     path,
		body:     body,
		defaults: defaults,
		header:   opts.Header,
	})
}

// exchange describes one request/response round trip.
type exchange struct {
	method   string
	path     string
	body     io.Reader
	defaults http.Header
	header   http.Header

	// rawTransport keeps the transport error text as the message and logs
	// the failure at error level.
	rawTransport bool
}

// requestContext attaches the client logger and a request ID to ctx. A
// request ID already on ctx is reused.
func (c *Client) requestContext(ctx context.Context) (context.Context, string) {
	requestID := logger.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = ulid.Make().String()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	return logger.WithLogger(ctx, c.log), requestID
}

func (c *Client) do(ctx context.Context, ex exchange) (*Body, error) {
	ctx, requestID := c.requestContext(ctx)
	log := logger.L(ctx).With("method", ex.method, "path", ex.path)

	fail := func(err error) *ClientError {
		if ex.rawTransport {
			log.Error("upload transport failure", "error", err)
			return rawTransportError(err)
		}
		log.Debug("transport failure", "error", err)
		return transportError(err)
	}

	if err := c.wait(ctx); err != nil {
		return nil, fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, ex.method, c.url(ex.path), ex.body)
	if err != nil {
		return nil, fail(err)
	}

	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("X-Request-ID", requestID)
	for k, vs := range ex.defaults {
		req.Header[k] = vs
	}
	for k, vs := range ex.header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token, ok := c.creds.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(ex.method, 0, c.now().Sub(start))
		return nil, fail(err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	elapsed := c.now().Sub(start)
	c.metrics.ObserveRequest(ex.method, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fail(err)
	}

	log.Debug("api response",
		"status", resp.StatusCode,
		"elapsed", elapsed,
		"bytes", len(data),
		"authorization", req.Header.Get("Authorization"))

	body := decodeBody(string(data))

	if resp.StatusCode == http.StatusUnauthorized {
		c.expireSession(log)
		return nil, sessionExpiredError()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, requestError(resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) expireSession(log logger.Logger) {
	c.metrics.SessionExpired()
	if err := c.creds.ClearToken(); err != nil {
		log.Warn("clear token failed", "error", err)
	}
	c.navigator.Navigate(c.loginLocation)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// resolve returns target unchanged when absolute, otherwise joins it to
// the base URL.
func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return c.url(target)
}

func normalizeBaseURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return ""
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return base
}

func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// memoryCredentials is used when no store is configured.
type memoryCredentials struct {
	mu    sync.Mutex
	token string
}

func (m *memoryCredentials) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *memoryCredentials) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryCredentials) ClearToken() error {
	return m.SetToken("")
}

type nopUI struct{}

func (nopUI) Navigate(string) {}
func (nopUI) Notify(string)   {}
