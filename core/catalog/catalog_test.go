package catalog

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/syllabus/core/table"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := Default()

	tests := []struct {
		name         string
		wantEndpoint string
		wantErr      error
	}{
		{name: "courses", wantEndpoint: "/api/courses"},
		{name: "detailed-syllabus", wantEndpoint: "/api/study-guide"},
		{name: "group-plan", wantEndpoint: "/api/plan-group"},
		{name: "teaching-assignment", wantEndpoint: "/api/plan-group-teacher"},
		{name: "lol", wantErr: ErrUnknownResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := reg.Lookup(tt.name)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Lookup() error = %v; wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantEndpoint, r.Endpoint)
		})
	}
}

func TestRegistry_All(t *testing.T) {
	reg := NewRegistry(Teachers, Courses, Teachers)

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "teachers", all[0].Name)
	assert.Equal(t, "courses", all[1].Name)
	assert.Equal(t, []string{"courses", "teachers"}, reg.Names())
}

func TestResources_consistent(t *testing.T) {
	for _, r := range Default().All() {
		t.Run(r.Name, func(t *testing.T) {
			keys := r.FilterKeys()
			assert.Contains(t, keys, r.SearchKey, "search key must be a column")
			if r.SelectFilter != nil {
				assert.Contains(t, keys, r.SelectFilter.Key, "select filter must be a column")
			}
			assert.Equal(t, map[string]string{r.SearchKey: ""}, r.InitialSearch())

			conf := r.TableConfig()
			conf.Transport = table.TransportFunc(func(context.Context, table.Request) (table.Response, error) {
				return table.Response{}, nil
			})
			_, err := table.New(conf)
			assert.NoError(t, err)
		})
	}
}

func TestRenderDate(t *testing.T) {
	render := renderDate("namSinh")
	tests := []struct {
		raw  interface{}
		want string
	}{
		{raw: "1985-03-09", want: "09/03/1985"},
		{raw: "1985-03-09T00:00:00", want: "09/03/1985"},
		{raw: "1985-03-09T10:00:00Z", want: "09/03/1985"},
		{raw: "unknown", want: "unknown"},
		{raw: nil, want: ""},
	}
	for _, tt := range tests {
		if got := render(table.Row{"namSinh": tt.raw}); got != tt.want {
			t.Errorf("renderDate(%v) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTeachingPlan_semesters(t *testing.T) {
	opts := TeachingPlan.SelectFilter.Options
	require.Len(t, opts, 10)
	assert.Equal(t, "1", opts[0].Value)
	assert.Equal(t, "10", opts[9].Label)
}
