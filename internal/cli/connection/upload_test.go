package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewForm().
		AddField("route_id", "7").
		AddFile("photo", "p.png", strings.NewReader("PNG")).
		AddFilePath("roster", path)
	if err := f.Err(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(f.ContentType(), "multipart/form-data; boundary=") {
		t.Errorf("ContentType() = %q", f.ContentType())
	}

	t.Run("missing file sticks", func(t *testing.T) {
		bad := NewForm().AddFilePath("f", filepath.Join(t.TempDir(), "nope"))
		if bad.Err() == nil {
			t.Fatal("expected error")
		}
		bad.AddField("x", "y")
		if _, err := bad.finish(); err == nil {
			t.Error("finish() should report the first error")
		}
	})
}

func TestUpload(t *testing.T) {
	var (
		gotMethod string
		gotType   string
		gotAuth   string
		fields    = map[string]string{}
		files     = map[string]string{}
	)
	c, _, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		for k, fh := range r.MultipartForm.File {
			f, _ := fh[0].Open()
			data, _ := io.ReadAll(f)
			f.Close()
			files[k] = fh[0].Filename + ":" + string(data)
		}
		w.Write([]byte(`{"uploaded":1}`))
	})
	_ = creds.SetToken("abc")

	form := NewForm().AddField("note", "hi").AddFile("doc", "a.txt", strings.NewReader("content"))
	body, err := c.Upload(context.Background(), "/upload", form, RequestOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if !strings.HasPrefix(gotType, "multipart/form-data") {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if fields["note"] != "hi" {
		t.Errorf("fields = %v", fields)
	}
	if files["doc"] != "a.txt:content" {
		t.Errorf("files = %v", files)
	}
	if _, ok := body.Field("uploaded"); !ok {
		t.Error("response field missing")
	}
}

func TestUpload_MethodOverride(t *testing.T) {
	var gotMethod string
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	})

	if _, err := c.Upload(context.Background(), "/upload", nil, RequestOptions{Method: http.MethodPut}); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
}

func TestUpload_Errors(t *testing.T) {
	t.Run("non-2xx uses body message", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			w.Write([]byte(`{"message":"file too large"}`))
		})
		_, err := c.Upload(context.Background(), "/upload", NewForm(), RequestOptions{})
		if !errors.Is(err, ErrRequest) || err.Error() != "file too large" {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("401 expires session", func(t *testing.T) {
		c, rec, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_ = creds.SetToken("abc")
		_, err := c.Upload(context.Background(), "/upload", NewForm(), RequestOptions{})
		if !errors.Is(err, ErrSessionExpired) {
			t.Errorf("error = %v, want ErrSessionExpired", err)
		}
		if _, ok := creds.Token(); ok {
			t.Error("token not cleared")
		}
		if len(rec.Locations) != 1 {
			t.Errorf("navigations = %v", rec.Locations)
		}
	})

	t.Run("transport failure keeps cause text", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		addr := ln.Addr().String()
		ln.Close()

		c := New(Config{BaseURL: "http://" + addr})
		_, err = c.Upload(context.Background(), "/upload", NewForm(), RequestOptions{})

		var ue *url.Error
		if !errors.As(err, &ue) {
			t.Fatalf("error = %v, want *url.Error in chain", err)
		}
		if err.Error() != ue.Error() {
			t.Errorf("message = %q, want %q", err.Error(), ue.Error())
		}
		if err.Error() == MsgTransport {
			t.Error("upload should not normalise the transport message")
		}
	})

	t.Run("form error", func(t *testing.T) {
		c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not be sent")
		})
		bad := NewForm().AddFilePath("f", filepath.Join(t.TempDir(), "missing"))
		if _, err := c.Upload(context.Background(), "/upload", bad, RequestOptions{}); err == nil {
			t.Error("expected error")
		}
	})
}
