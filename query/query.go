// Package query derives tables, rankings and chart series from a finished
// Analysis. Nothing in here mutates the analysis, so one Engine can serve
// concurrent readers.
package query

import (
	"errors"
	"fmt"
	"sort"

	"discord-analyzer/models"
)

var (
	ErrUnknownMetric  = errors.New("unknown metric")
	ErrUnknownSubject = errors.New("unknown subject")
	ErrNotChartable   = errors.New("metric cannot be charted")
)

// DefaultRoleFilter selects every member of the server.
var DefaultRoleFilter = []string{"@everyone"}

// Engine answers report queries over one analysis.
type Engine struct {
	a *models.Analysis
}

// New returns an engine reading a.
func New(a *models.Analysis) *Engine {
	return &Engine{a: a}
}

// Analysis returns the analysis the engine reads.
func (e *Engine) Analysis() *models.Analysis { return e.a }

// Users returns every user name in discovery order.
func (e *Engine) Users() []string { return e.a.Users.Keys() }

// Channels returns every channel name in scan order.
func (e *Engine) Channels() []string { return e.a.Channels.Keys() }

// Roles returns the role names.
func (e *Engine) Roles() []string {
	names := make([]string, len(e.a.Roles))
	for i, r := range e.a.Roles {
		names[i] = r.Name
	}
	return names
}

// Members returns the union of the members of the named roles, in role
// order then member order. Unknown role names are ignored.
func (e *Engine) Members(roles []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range roles {
		r, ok := e.a.Role(name)
		if !ok {
			continue
		}
		for _, m := range r.Members {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}

// Row is one subject of a pivot table.
type Row struct {
	Subject string
	Cells   []Value
}

// Table is a pivot table: one row per subject, one column per metric.
type Table struct {
	Subject string // column header of the subject names
	Metrics []Metric
	Rows    []Row
}

// Column returns the cells of metric m keyed by subject.
func (t *Table) Column(m Metric) []Point {
	idx := -1
	for i, mm := range t.Metrics {
		if mm == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var out []Point
	for _, r := range t.Rows {
		n, ok := r.Cells[idx].Number()
		if !ok {
			continue
		}
		out = append(out, Point{Label: r.Subject, Value: n})
	}
	return out
}

// UserTable builds a table of the members of roles. Members that never
// appear in the scan get an all-zero row.
func (e *Engine) UserTable(roles []string, metrics []Metric) (*Table, error) {
	fns := make([]userMetric, len(metrics))
	for i, m := range metrics {
		fn, ok := userCatalog[m]
		if !ok {
			return nil, fmt.Errorf("user table: %w: %q", ErrUnknownMetric, m)
		}
		fns[i] = fn
	}

	t := &Table{Subject: "User", Metrics: metrics}
	for _, name := range e.Members(roles) {
		u, ok := e.a.Users.Get(name)
		if !ok {
			u = models.NewUserStats()
		}
		row := Row{Subject: name, Cells: make([]Value, len(fns))}
		for i, fn := range fns {
			row.Cells[i] = fn(u)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ChannelTable builds a table of every channel.
func (e *Engine) ChannelTable(metrics []Metric) (*Table, error) {
	fns := make([]channelMetric, len(metrics))
	for i, m := range metrics {
		fn, ok := channelCatalog[m]
		if !ok {
			return nil, fmt.Errorf("channel table: %w: %q", ErrUnknownMetric, m)
		}
		fns[i] = fn
	}

	t := &Table{Subject: "Channel", Metrics: metrics}
	for _, name := range e.a.Channels.Keys() {
		c, _ := e.a.Channels.Get(name)
		row := Row{Subject: name, Cells: make([]Value, len(fns))}
		for i, fn := range fns {
			row.Cells[i] = fn(c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Point is one bar of a chart.
type Point struct {
	Label string
	Value float64
}

// UserSeries extracts one numeric user metric for charting. Users whose
// value is "no data" are left out.
func (e *Engine) UserSeries(roles []string, m Metric) ([]Point, error) {
	if !contains(UserChartMetrics, m) {
		return nil, fmt.Errorf("user series: %w: %q", ErrNotChartable, m)
	}
	t, err := e.UserTable(roles, []Metric{m})
	if err != nil {
		return nil, err
	}
	return t.Column(m), nil
}

// ChannelSeries extracts one numeric channel metric for charting.
func (e *Engine) ChannelSeries(m Metric) ([]Point, error) {
	if !contains(ChannelChartMetrics, m) {
		return nil, fmt.Errorf("channel series: %w: %q", ErrNotChartable, m)
	}
	t, err := e.ChannelTable([]Metric{m})
	if err != nil {
		return nil, err
	}
	return t.Column(m), nil
}

// SortDescending orders points by value, largest first, keeping the input
// order between equal values.
func SortDescending(points []Point) []Point {
	out := append([]Point(nil), points...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

func contains(metrics []Metric, m Metric) bool {
	for _, mm := range metrics {
		if mm == m {
			return true
		}
	}
	return false
}
