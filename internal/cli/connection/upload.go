package connection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// Form is a multipart/form-data body built up field by field. The first
// error sticks and is reported by Upload.
type Form struct {
	buf    bytes.Buffer
	w      *multipart.Writer
	err    error
	closed bool
}

// NewForm returns an empty form.
func NewForm() *Form {
	f := &Form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

// AddField adds a text field.
func (f *Form) AddField(name, value string) *Form {
	if f.err != nil || f.closed {
		return f
	}
	f.err = f.w.WriteField(name, value)
	return f
}

// AddFile adds a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) *Form {
	if f.err != nil || f.closed {
		return f
	}
	part, err := f.w.CreateFormFile(field, filename)
	if err != nil {
		f.err = err
		return f
	}
	if _, err := io.Copy(part, r); err != nil {
		f.err = fmt.Errorf("read %s: %w", filename, err)
	}
	return f
}

// AddFilePath adds the file at path under its base name.
func (f *Form) AddFilePath(field, path string) *Form {
	if f.err != nil || f.closed {
		return f
	}
	file, err := os.Open(path)
	if err != nil {
		f.err = fmt.Errorf("open %s: %w", path, err)
		return f
	}
	defer file.Close()
	return f.AddFile(field, filepath.Base(path), file)
}

// ContentType returns the multipart content type including the boundary.
func (f *Form) ContentType() string {
	return f.w.FormDataContentType()
}

// Err returns the first error hit while building the form.
func (f *Form) Err() error {
	return f.err
}

func (f *Form) finish() (io.Reader, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.closed {
		f.closed = true
		if err := f.w.Close(); err != nil {
			f.err = err
			return nil, err
		}
	}
	return bytes.NewReader(f.buf.Bytes()), nil
}

// Upload sends form as multipart/form-data.
//
// It follows the Request contract except that the method defaults to POST,
// no JSON content type is set, and a transport failure keeps the underlying
// error's text as the message (the cause stays reachable via errors.As).
func (c *Client) Upload(ctx context.Context, path string, form *Form, opts RequestOptions) (*Body, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}
	if form == nil {
		form = NewForm()
	}

	body, err := form.finish()
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	defaults := http.Header{}
	defaults.Set("Content-Type", form.ContentType())

	return c.do(ctx, exchange{
		method:       method,
		path:         path,
		body:         body,
		defaults:     defaults,
		header:       opts.Header,
		rawTransport: true,
	})
}
