package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestLoadMe(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"me":{"id":3,"role":"HOD","username":"kamal","department":"IT"}}`))
	})

	me, err := c.LoadMe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if me.Me == nil || me.Me.Role != RoleHOD || me.Me.Username != "kamal" {
		t.Fatalf("me = %+v", me.Me)
	}
	if me.Me.Fields["department"] != "IT" {
		t.Errorf("extra fields = %v", me.Me.Fields)
	}
}

func TestGuardRole(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		role     string
		wantErr  error
		wantNavs int
	}{
		{"matching role", `{"me":{"role":"ADMIN"}}`, RoleAdmin, nil, 0},
		{"other role", `{"me":{"role":"TA"}}`, RoleAdmin, ErrRoleMismatch, 1},
		{"missing me", `{}`, RoleHR, ErrRoleMismatch, 1},
		{"raw body", `not json`, RoleHR, ErrRoleMismatch, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			p, err := c.GuardRole(context.Background(), tt.role)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatal(err)
				}
				if p.Role != tt.role {
					t.Errorf("role = %q", p.Role)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(rec.Locations) != tt.wantNavs {
				t.Errorf("navigations = %v, want %d", rec.Locations, tt.wantNavs)
			}
		})
	}

	t.Run("expired session propagates", func(t *testing.T) {
		c, rec, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := c.GuardRole(context.Background(), RoleHR)
		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("error = %v, want ErrSessionExpired", err)
		}
		// Only the 401 handler navigates.
		if len(rec.Locations) != 1 {
			t.Errorf("navigations = %v", rec.Locations)
		}
	})
}

func TestLogout(t *testing.T) {
	c, rec, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_ = creds.SetToken("abc")

	if err := c.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := creds.Token(); ok {
		t.Error("token not cleared")
	}
	if len(rec.Locations) != 1 || rec.Locations[0] != DefaultLoginLocation {
		t.Errorf("navigations = %v", rec.Locations)
	}
}

func TestLogin(t *testing.T) {
	c, _, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["username"] != "admin" || req["password"] != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"token":"tok-1","user":{"role":"ADMIN","username":"admin"}}`))
	})

	res, err := c.Login(context.Background(), "admin", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if res.Role != RoleAdmin {
		t.Errorf("role = %q", res.Role)
	}
	if tok, _ := creds.Token(); tok != "tok-1" {
		t.Errorf("stored token = %q", tok)
	}

	_, err = c.Login(context.Background(), "admin", "wrong")
	if !errors.Is(err, ErrRequest) || err.Error() != "Invalid credentials" {
		t.Errorf("error = %v", err)
	}
}

func TestLogin_NoToken(t *testing.T) {
	c, _, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	if _, err := c.Login(context.Background(), "a", "b"); !errors.Is(err, ErrRequest) {
		t.Errorf("error = %v, want ErrRequest", err)
	}
	if _, ok := creds.Token(); ok {
		t.Error("token stored")
	}
}
