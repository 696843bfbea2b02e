package command

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/repl"
)

func TestShellCommand(t *testing.T) {
	server, hits := routesServer(t)
	env := newTestEnv(t, server)

	input := "routes tree\nroutes subroutes 2\n-o json routes subroutes 2\nnope\nshell\nexit\n"
	if err := env.run(input, "shell", "--no-watch", "--no-history"); err != nil {
		t.Fatal(err)
	}

	out := env.out.String()
	for _, want := range []string{repl.DefaultPrompt, "R1 - Colombo", "Peradeniya", `"route_id": 2`, "already in a shell"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1 (shell lines share the cache)", n)
	}
}

func TestShellExecutor_SharesRuntime(t *testing.T) {
	env := newTestEnv(t, newMockServer(t))
	exec := shellExecutor(env.rt)

	if err := exec(context.Background(), []string{"routes", "invalidate"}); err != nil {
		t.Fatal(err)
	}
	if err := exec(context.Background(), []string{"routes", "invalidate"}); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(env.out.String(), "Route cache cleared"); n != 2 {
		t.Errorf("ran %d times, want 2", n)
	}

	select {
	case <-env.rt.shutdown.Done():
		t.Error("shell line closed the shared runtime")
	default:
	}
}

func TestCommandPaths(t *testing.T) {
	got := commandPaths("", []*cli.Command{
		{Name: "routes", Subcommands: []*cli.Command{{Name: "tree"}, {Name: "secret", Hidden: true}}},
		{Name: "login"},
	})
	want := []string{"routes", "routes tree", "login"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commandPaths() = %v, want %v", got, want)
	}
}
