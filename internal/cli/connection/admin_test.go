package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

func TestPendingHodRegistrations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[{"id":1,"username":"a"},{"id":2,"username":"b"}]`},
		{"wrapped", `{"registrations":[{"id":1,"username":"a"},{"id":2,"username":"b"}]}`},
		{"items", `{"items":[{"id":1,"username":"a"},{"id":2,"username":"b"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/admin/hod-registrations" {
					t.Errorf("path = %q", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})

			regs, err := c.PendingHodRegistrations(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if len(regs) != 2 {
				t.Fatalf("len = %d", len(regs))
			}
			if regs[0].String("id") != "1" || regs[1].String("username") != "b" {
				t.Errorf("regs = %v", regs)
			}
		})
	}
}

func TestApproveRejectHodRegistration(t *testing.T) {
	var calls []string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"ok":true}`))
	})

	if _, err := c.ApproveHodRegistration(context.Background(), "5"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.RejectHodRegistration(context.Background(), "6"); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"POST /admin/hod-registrations/5/approve",
		"POST /admin/hod-registrations/6/reject",
	}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestBulkUpsertSubRoutes(t *testing.T) {
	var gotPath string
	var got struct {
		Lines []string `json:"lines"`
	}
	status := http.StatusOK
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(status)
		w.Write([]byte(`{"upserted":2}`))
	})
	inv := &countingInvalidator{}
	c.SetRouteCache(inv)

	if _, err := c.BulkUpsertSubRoutes(context.Background(), "7", []string{"Kandy", "Peradeniya"}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/admin/routes/7/subroutes/bulk" {
		t.Errorf("path = %q", gotPath)
	}
	if len(got.Lines) != 2 || got.Lines[1] != "Peradeniya" {
		t.Errorf("lines = %v", got.Lines)
	}
	if inv.n != 1 {
		t.Errorf("invalidations = %d, want 1", inv.n)
	}

	status = http.StatusBadRequest
	if _, err := c.BulkUpsertSubRoutes(context.Background(), "7", nil); err == nil {
		t.Fatal("expected error")
	}
	if got.Lines == nil {
		t.Error("nil lines should be sent as an empty list")
	}
	if inv.n != 1 {
		t.Errorf("failed upsert invalidated the cache")
	}
}
