package command

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/config"
)

func routesServer(t *testing.T) (*mockServer, *atomic.Int32) {
	server := newMockServer(t)
	var hits atomic.Int32
	server.handle("/lookup/routes-tree", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, routesTreeJSON)
	})
	return server, &hits
}

func TestRoutesTree(t *testing.T) {
	server, hits := routesServer(t)
	env := newTestEnv(t, server)

	if err := env.run("", "routes", "tree"); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()
	for _, want := range []string{"ROUTE", "R1 - Colombo", "Kandy"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := env.run("", "routes", "tree"); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1 (second call cached)", n)
	}

	if err := env.run("", "routes", "tree", "--refresh"); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2 after --refresh", n)
	}
}

func TestRoutesTree_JSON(t *testing.T) {
	server, _ := routesServer(t)
	env := newTestEnv(t, server, func(c *config.CLIConfig) { c.Output.Format = "json" })

	if err := env.run("", "routes", "tree"); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Routes    []map[string]any `json:"routes"`
		SubRoutes []map[string]any `json:"sub_routes"`
	}
	if err := json.Unmarshal(env.out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, env.out.String())
	}
	if len(got.Routes) != 2 || len(got.SubRoutes) != 3 {
		t.Errorf("got %d routes, %d sub-routes", len(got.Routes), len(got.SubRoutes))
	}
}

func TestRoutesSubRoutes(t *testing.T) {
	server, _ := routesServer(t)
	env := newTestEnv(t, server)

	if err := env.run("", "routes", "subroutes", "1"); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()
	if !strings.Contains(out, "Fort") || !strings.Contains(out, "Pettah") {
		t.Errorf("missing sub-routes of route 1:\n%s", out)
	}
	if strings.Contains(out, "Peradeniya") {
		t.Errorf("sub-route of route 2 listed:\n%s", out)
	}

	if err := env.run("", "routes", "subroutes"); err == nil {
		t.Error("expected usage error without ROUTE_ID")
	}
}

func TestRoutesInvalidate(t *testing.T) {
	server, hits := routesServer(t)
	env := newTestEnv(t, server)

	env.run("", "routes", "tree")
	if err := env.run("", "routes", "invalidate"); err != nil {
		t.Fatal(err)
	}
	if env.rt.Routes().Cached() {
		t.Error("cache still populated")
	}
	if _, err := env.store.Get(t.Context(), "routesTree"); err == nil {
		t.Error("durable copy not removed")
	}
	env.run("", "routes", "tree")
	if n := hits.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestRoutesBulk(t *testing.T) {
	server, _ := routesServer(t)
	var got []string
	server.handle("/admin/routes/7/subroutes/bulk", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Lines []string `json:"lines"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		got = body.Lines
		jsonResponse(w, http.StatusOK, map[string]any{"ok": true, "upserted": len(body.Lines)})
	})
	env := newTestEnv(t, server)
	env.login(t, "tok")

	env.run("", "routes", "tree")
	if !env.rt.Routes().Cached() {
		t.Fatal("tree not cached")
	}

	file := filepath.Join(t.TempDir(), "lines.txt")
	os.WriteFile(file, []byte("Stop C\n\n  Stop D  \n"), 0600)

	if err := env.run("Stop E\n", "routes", "bulk", "--line", "Stop A", "-l", "Stop B", "--file", file, "7"); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Stop A", "Stop B", "Stop C", "Stop D"}; !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if env.rt.Routes().Cached() {
		t.Error("route cache not invalidated after bulk upsert")
	}
	if !strings.Contains(env.out.String(), "upserted") {
		t.Errorf("response not printed:\n%s", env.out.String())
	}

	if err := env.run("Stop E\n", "routes", "bulk", "-f", "-", "7"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"Stop E"}) {
		t.Errorf("stdin lines = %q", got)
	}

	if err := env.run("", "routes", "bulk", "7"); err == nil {
		t.Error("expected error without lines")
	}
}
