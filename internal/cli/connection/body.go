package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotJSON is returned by Body.Decode for a raw body.
var ErrNotJSON = errors.New("response body is not JSON")

// Body is a response body: either parsed JSON or the raw text that failed
// to parse. An empty response is parsed as an empty object.
type Body struct {
	text  string
	value any
	raw   bool
}

// ParsedBody wraps an already decoded JSON value.
func ParsedBody(v any) *Body {
	data, _ := json.Marshal(v)
	return &Body{text: string(data), value: v}
}

// RawBody wraps text that is not JSON.
func RawBody(text string) *Body {
	return &Body{text: text, raw: true}
}

// decodeBody classifies response text.
func decodeBody(text string) *Body {
	if text == "" {
		return &Body{text: "{}", value: map[string]any{}}
	}

	if !json.Valid([]byte(text)) {
		return RawBody(text)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return RawBody(text)
	}
	return &Body{text: text, value: v}
}

// IsRaw reports whether the body failed to parse as JSON.
func (b *Body) IsRaw() bool { return b.raw }

// Text returns the response text ("{}" for an empty response).
func (b *Body) Text() string { return b.text }

// Value returns the parsed value, nil for raw bodies. Numbers are json.Number.
func (b *Body) Value() any { return b.value }

// Object returns the parsed value as a JSON object, or nil.
func (b *Body) Object() map[string]any {
	m, _ := b.value.(map[string]any)
	return m
}

// Field returns a top-level object field.
func (b *Body) Field(name string) (any, bool) {
	m := b.Object()
	if m == nil {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// Decode unmarshals the body into v.
func (b *Body) Decode(v any) error {
	if b.raw {
		return ErrNotJSON
	}
	if err := json.Unmarshal([]byte(b.text), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// firstText returns the first non-empty field among keys rendered as text.
// Empty strings, false, zero and null are skipped.
func (b *Body) firstText(keys ...string) string {
	for _, k := range keys {
		v, ok := b.Field(k)
		if !ok {
			continue
		}
		if s := textOf(v); s != "" {
			return s
		}
	}
	return ""
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
