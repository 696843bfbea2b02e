package command

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
)

func TestHodList(t *testing.T) {
	server := newMockServer(t)
	server.handle("/admin/hod-registrations", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"registrations": []map[string]any{
				{"id": 5, "username": "hod.kandy", "full_name": "Nimal Silva", "department": "Finance", "created_at": "2024-03-01T08:30:00Z"},
			},
		})
	})
	env := newTestEnv(t, server)
	env.login(t, "tok")

	if err := env.run("", "hod", "list"); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()
	for _, want := range []string{"DEPARTMENT", "hod.kandy", "Nimal Silva", "Finance", "2024-03-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "T08:30") {
		t.Errorf("date not shortened:\n%s", out)
	}
	at := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC).Local().Format("15:04")
	if !strings.Contains(out, "TIME") || !strings.Contains(out, at) {
		t.Errorf("output missing request time %q:\n%s", at, out)
	}
}

func TestHodList_Empty(t *testing.T) {
	server := newMockServer(t)
	server.handle("/admin/hod-registrations", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, []any{})
	})
	env := newTestEnv(t, server)

	if err := env.run("", "hod", "ls"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.out.String(), "No pending registrations") {
		t.Errorf("output = %q", env.out.String())
	}
}

func TestHodDecide(t *testing.T) {
	server := newMockServer(t)
	var paths []string
	server.handle("/admin/hod-registrations/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/reject") {
			jsonResponse(w, http.StatusOK, map[string]string{"message": "Registration rejected"})
			return
		}
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})
	env := newTestEnv(t, server)
	env.login(t, "tok")

	if err := env.run("", "hod", "approve", "5"); err != nil {
		t.Fatal(err)
	}
	if err := env.run("", "hod", "reject", "6"); err != nil {
		t.Fatal(err)
	}

	want := []string{"/admin/hod-registrations/5/approve", "/admin/hod-registrations/6/reject"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	out := env.out.String()
	if !strings.Contains(out, "Registration 5: approved") || !strings.Contains(out, "Registration rejected") {
		t.Errorf("output = %q", out)
	}

	if err := env.run("", "hod", "approve"); err == nil {
		t.Error("expected usage error")
	}
}

func TestHodDecide_Forbidden(t *testing.T) {
	server := newMockServer(t)
	server.handle("/admin/hod-registrations/", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusForbidden, map[string]string{"message": "Admins only", "code": "FORBIDDEN"})
	})
	env := newTestEnv(t, server)
	env.login(t, "tok")

	err := env.run("", "hod", "approve", "5")
	var ce *connection.ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %T %v", err, err)
	}
	if ce.Status != http.StatusForbidden || ce.Message != "Admins only" || ce.ServerCode != "FORBIDDEN" {
		t.Errorf("ClientError = %+v", ce)
	}
	if _, ok := env.rt.Tokens.Token(); !ok {
		t.Error("403 must not clear the token")
	}
}
