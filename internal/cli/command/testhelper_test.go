package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/config"
	"github.com/fleetdesk/fleetdesk-go/internal/credential"
	"github.com/fleetdesk/fleetdesk-go/internal/storage"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/metric"
)

// mockServer is a test API server with per-path handlers.
type mockServer struct {
	*httptest.Server
	mux *http.ServeMux
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	m := &mockServer{mux: http.NewServeMux()}
	m.Server = httptest.NewServer(m.mux)
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.mux.HandleFunc(pattern, handler)
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// testEnv is a runtime wired to a mock server with in-memory storage.
type testEnv struct {
	rt     *Runtime
	store  *storage.MemoryStore
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newTestEnv(t *testing.T, server *mockServer, mutate ...func(*config.CLIConfig)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	cfg.Storage.Dir = t.TempDir()
	for _, m := range mutate {
		m(cfg)
	}

	store := storage.NewMemoryStore()
	env := &testEnv{store: store, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}

	rt, err := newRuntime(runtimeDeps{
		cfg:     cfg,
		metrics: metric.NewRegistry(),
		store:   store,
		tokens:  credential.NewStore(store),
		out:     env.out,
		err:     env.errOut,
	})
	if err != nil {
		t.Fatalf("newRuntime() error = %v", err)
	}
	env.rt = rt
	return env
}

// run executes one command line against env's runtime.
func (e *testEnv) run(input string, args ...string) error {
	app := App()
	app.Metadata[runtimeKey] = e.rt
	app.Reader = strings.NewReader(input)
	app.Writer = e.out
	app.ErrWriter = e.errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app.Run(append([]string{app.Name}, args...))
}

func (e *testEnv) login(t *testing.T, token string) {
	t.Helper()
	if err := e.rt.Tokens.SetToken(token); err != nil {
		t.Fatal(err)
	}
}

// runStandalone runs a command with no pre-built runtime.
func runStandalone(args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := App()
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{app.Name}, args...))
	return out.String(), err
}

const routesTreeJSON = `{
  "routes": [
    {"id": 1, "route_no": "R1", "route_name": "Colombo"},
    {"id": "2", "route_no": "", "route_name": "Kandy"}
  ],
  "sub_routes": [
    {"id": 10, "route_id": 1, "name": "Fort"},
    {"id": 11, "route_id": "1", "name": "Pettah"},
    {"id": 20, "route_id": 2, "name": "Peradeniya"}
  ]
}`
