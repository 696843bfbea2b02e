package lookup

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
)

// ID is a server identifier compared as text, so 7 and "7" are equal.
type ID string

// UnmarshalJSON accepts JSON strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	*id = ID(s)
	return err
}

// Text is a display field that some servers send as a number.
type Text string

// UnmarshalJSON accepts JSON strings and numbers.
func (t *Text) UnmarshalJSON(data []byte) error {
	s, err := flexString(data)
	*t = Text(s)
	return err
}

// flexString renders a JSON scalar as text. Integral numbers print without
// a fraction, so 7.0 becomes "7".
func flexString(data []byte) (string, error) {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		return "", nil
	case strings.HasPrefix(s, `"`):
		var str string
		err := json.Unmarshal(data, &str)
		return str, err
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return s, nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Route is a transport route.
type Route struct {
	ID        ID   `json:"id" yaml:"id"`
	RouteNo   Text `json:"route_no" yaml:"route_no"`
	RouteName Text `json:"route_name" yaml:"route_name"`
}

// Label renders the route for display, e.g. "R7 - Kandy".
func (r Route) Label() string {
	return output.RouteLabel(string(r.RouteNo), string(r.RouteName))
}

// SubRoute is a stop or area on a route. Fields other than id and route_id
// are kept verbatim in Extra.
type SubRoute struct {
	ID      ID             `json:"id" yaml:"id"`
	RouteID ID             `json:"route_id" yaml:"route_id"`
	Extra   map[string]any `json:"-" yaml:"extra,omitempty"`
}

// UnmarshalJSON keeps unknown fields in Extra.
func (s *SubRoute) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = SubRoute{}
	if v, ok := raw["id"]; ok {
		if err := s.ID.UnmarshalJSON(v); err != nil {
			return err
		}
		delete(raw, "id")
	}
	if v, ok := raw["route_id"]; ok {
		if err := s.RouteID.UnmarshalJSON(v); err != nil {
			return err
		}
		delete(raw, "route_id")
	}

	if len(raw) > 0 {
		s.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			dec := json.NewDecoder(strings.NewReader(string(v)))
			dec.UseNumber()
			var val any
			if err := dec.Decode(&val); err != nil {
				return err
			}
			s.Extra[k] = val
		}
	}
	return nil
}

// MarshalJSON writes Extra back alongside id and route_id.
func (s SubRoute) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Extra)+2)
	for k, v := range s.Extra {
		m[k] = v
	}
	m["id"] = s.ID
	m["route_id"] = s.RouteID
	return json.Marshal(m)
}

// Name returns the sub-route's display name, if the server sent one.
func (s SubRoute) Name() string {
	for _, k := range []string{"name", "sub_route_name", "subroute_name"} {
		if v, ok := s.Extra[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Tree is the /lookup/routes-tree payload. Both slices are never nil once
// normalised.
type Tree struct {
	Routes    []Route    `json:"routes" yaml:"routes"`
	SubRoutes []SubRoute `json:"sub_routes" yaml:"sub_routes"`
}

func (t *Tree) normalize() {
	if t.Routes == nil {
		t.Routes = []Route{}
	}
	if t.SubRoutes == nil {
		t.SubRoutes = []SubRoute{}
	}
}

// Route returns the route with id.
func (t *Tree) Route(id string) (Route, bool) {
	for _, r := range t.Routes {
		if string(r.ID) == id {
			return r, true
		}
	}
	return Route{}, false
}
