// Package catalog declares the tables of the dashboard.
package catalog

import (
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core/table"
	"github.com/trezcool/syllabus/core/view"
)

var ErrUnknownResource = errors.New("unknown resource")

// Resource is a backend collection displayed as a table.
type Resource struct {
	Name         string
	Endpoint     string
	StaticFilter map[string]string
	view.Layout
}

// FilterKeys returns every column key, hidden ones included.
func (r Resource) FilterKeys() []string {
	keys := make([]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		keys = append(keys, c.Key)
	}
	return keys
}

// InitialSearch holds the search key with an empty value.
func (r Resource) InitialSearch() map[string]string {
	if r.SearchKey == "" {
		return map[string]string{}
	}
	return map[string]string{r.SearchKey: ""}
}

// TableConfig returns the table.Config of the resource; callers fill in the runtime dependencies.
func (r Resource) TableConfig() table.Config {
	return table.Config{
		Endpoint:      r.Endpoint,
		FilterKeys:    r.FilterKeys(),
		InitialSearch: r.InitialSearch(),
		StaticFilter:  r.StaticFilter,
	}
}

// Registry indexes resources by name.
type Registry struct {
	byName map[string]Resource
	order  []string
}

func NewRegistry(resources ...Resource) *Registry {
	reg := &Registry{byName: make(map[string]Resource, len(resources))}
	for _, r := range resources {
		if _, dup := reg.byName[r.Name]; !dup {
			reg.order = append(reg.order, r.Name)
		}
		reg.byName[r.Name] = r
	}
	return reg
}

func (reg *Registry) Lookup(name string) (Resource, error) {
	r, ok := reg.byName[name]
	if !ok {
		return Resource{}, errors.Wrap(ErrUnknownResource, name)
	}
	return r, nil
}

// All returns the resources in registration order.
func (reg *Registry) All() []Resource {
	all := make([]Resource, 0, len(reg.order))
	for _, name := range reg.order {
		all = append(all, reg.byName[name])
	}
	return all
}

// Names returns the resource names sorted alphabetically.
func (reg *Registry) Names() []string {
	names := append([]string{}, reg.order...)
	sort.Strings(names)
	return names
}

func options(values ...string) []view.Option {
	opts := make([]view.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, view.Option{Value: v, Label: v})
	}
	return opts
}

func semesters(n int) []view.Option {
	opts := make([]view.Option, 0, n)
	for i := 1; i <= n; i++ {
		s := strconv.Itoa(i)
		opts = append(opts, view.Option{Value: s, Label: s})
	}
	return opts
}

// renderDate displays an ISO date (or timestamp) as dd/mm/yyyy; anything else is shown as is.
func renderDate(key string) func(table.Row) string {
	return func(row table.Row) string {
		raw := row.Text(key)
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("02/01/2006")
			}
		}
		return raw
	}
}
