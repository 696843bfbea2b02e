package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Record is one loosely typed API object.
type Record map[string]any

// PendingHodRegistrations lists HOD sign-ups awaiting approval.
func (c *Client) PendingHodRegistrations(ctx context.Context) ([]Record, error) {
	body, err := c.Request(ctx, "/admin/hod-registrations", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return records(body, "registrations", "items", "data"), nil
}

// ApproveHodRegistration approves the registration with id.
func (c *Client) ApproveHodRegistration(ctx context.Context, id string) (*Body, error) {
	return c.Request(ctx, "/admin/hod-registrations/"+url.PathEscape(id)+"/approve", RequestOptions{Method: http.MethodPost})
}

// RejectHodRegistration rejects the registration with id.
func (c *Client) RejectHodRegistration(ctx context.Context, id string) (*Body, error) {
	return c.Request(ctx, "/admin/hod-registrations/"+url.PathEscape(id)+"/reject", RequestOptions{Method: http.MethodPost})
}

// BulkUpsertSubRoutes creates or updates the sub-routes of routeID, one per
// line. The route tree cache is invalidated on success.
func (c *Client) BulkUpsertSubRoutes(ctx context.Context, routeID string, lines []string) (*Body, error) {
	if lines == nil {
		lines = []string{}
	}
	body, err := c.Request(ctx, "/admin/routes/"+url.PathEscape(routeID)+"/subroutes/bulk", RequestOptions{
		Method: http.MethodPost,
		Body:   map[string][]string{"lines": lines},
	})
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	inv := c.routeCache
	c.mu.RUnlock()
	if inv != nil {
		inv.Invalidate()
	}
	return body, nil
}

// records extracts a list of objects from a body that is either an array
// or an object holding the array under one of keys.
func records(body *Body, keys ...string) []Record {
	list, ok := body.Value().([]any)
	if !ok {
		for _, k := range keys {
			if v, found := body.Field(k); found {
				if l, isList := v.([]any); isList {
					list = l
					break
				}
			}
		}
	}

	out := make([]Record, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// String returns field as text; numbers keep their JSON spelling.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}
