package command

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/lookup"
	"github.com/fleetdesk/fleetdesk-go/internal/cli/output"
	"github.com/fleetdesk/fleetdesk-go/internal/infra/buildinfo"
)

type profileView struct{ p *connection.Profile }

func (v profileView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"USERNAME", "NAME", "ROLE"}}
	t.AddRow(output.Cell(v.p.Username), output.Cell(v.p.FullName), output.Cell(v.p.Role))
	if wide {
		keys := make([]string, 0, len(v.p.Fields))
		for k := range v.p.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.Headers = append(t.Headers, upper(k))
			t.Rows[0] = append(t.Rows[0], output.Cell(v.p.Fields[k]))
		}
	}
	return t
}

type routeTreeView struct{ tree *lookup.Tree }

func (v routeTreeView) Table(wide bool) *output.Table {
	counts := make(map[lookup.ID]int)
	for _, s := range v.tree.SubRoutes {
		counts[s.RouteID]++
	}

	t := &output.Table{Headers: []string{"ID", "ROUTE", "SUB-ROUTES"}}
	if wide {
		t.Headers = []string{"ID", "ROUTE NO", "ROUTE NAME", "SUB-ROUTES"}
	}
	for _, r := range v.tree.Routes {
		n := strconv.Itoa(counts[r.ID])
		if wide {
			t.AddRow(output.Cell(string(r.ID)), output.Cell(string(r.RouteNo)), output.Cell(string(r.RouteName)), n)
			continue
		}
		t.AddRow(output.Cell(string(r.ID)), output.Cell(r.Label()), n)
	}
	return t
}

type subRoutesView []lookup.SubRoute

func (v subRoutesView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"ID", "ROUTE ID", "NAME"}}
	if wide {
		t.Headers = append(t.Headers, "DETAILS")
	}
	for _, s := range v {
		row := []string{output.Cell(string(s.ID)), output.Cell(string(s.RouteID)), output.Cell(s.Name())}
		if wide {
			extra, _ := json.Marshal(s.Extra)
			row = append(row, string(extra))
		}
		t.AddRow(row...)
	}
	return t
}

type registrationsView []connection.Record

func (v registrationsView) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"ID", "USERNAME", "NAME", "DEPARTMENT", "REQUESTED", "TIME"}}
	if wide {
		t.Headers = append(t.Headers, "EMAIL", "STATUS")
	}
	for _, r := range v {
		row := []string{
			output.Cell(r.String("id")),
			output.Cell(r.String("username")),
			output.Cell(r.String("full_name")),
			output.Cell(r.String("department")),
			output.Cell(output.FormatDate(r.String("created_at"))),
			output.Cell(output.FormatTime(r.String("created_at"))),
		}
		if wide {
			row = append(row, output.Cell(r.String("email")), output.Cell(output.StatusBadge(r.String("status")).Label))
		}
		t.AddRow(row...)
	}
	return t
}

type versionView buildinfo.Info

func (v versionView) Table(bool) *output.Table {
	return output.KeyValues(map[string]any{
		"version":    v.Version,
		"commit":     v.Commit,
		"build_time": v.BuildTime,
		"go_version": v.GoVersion,
	})
}

func upper(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "_", " "))
}
