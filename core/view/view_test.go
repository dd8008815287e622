package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/syllabus/core/table"
)

var layout = Layout{
	Title:     "Courses",
	SearchKey: "tenHp",
	Columns: []Column{
		{Key: "maHp", Label: "Code"},
		{Key: "tenHp", Label: "Name", Style: "min-width: 200px"},
		{Key: "loaiHp", Label: "Type"},
		{Key: "secret", Label: "Secret", Hidden: true},
		{Key: "soTinChi", Label: "Credits", Render: func(row table.Row) string { return row.Text("soTinChi") + " cr" }},
	},
	SelectFilter: &SelectFilter{
		Key:     "loaiHp",
		Options: []Option{{Value: "BB", Label: "Required"}, {Value: "TC", Label: "Elective"}},
	},
}

func rows() []table.Row {
	return []table.Row{
		{"id": 1, "maHp": "MATH1", "tenHp": "Algebra", "loaiHp": "BB", "soTinChi": 3, "secret": "x"},
		{"id": 2, "maHp": "PHY1", "tenHp": "<b>Physics</b>", "loaiHp": nil, "soTinChi": 2},
	}
}

func TestBuild_status(t *testing.T) {
	tests := []struct {
		name    string
		st      table.State
		want    string
		wantMsg string
	}{
		{name: "loading wins over everything", st: table.State{Loading: true, HasError: true}, want: StatusLoading, wantMsg: MsgLoading},
		{name: "error wins over empty", st: table.State{HasError: true}, want: StatusError, wantMsg: MsgError},
		{name: "empty", st: table.State{Rows: []table.Row{}}, want: StatusEmpty, wantMsg: MsgEmpty},
		{name: "data", st: table.State{Rows: rows()}, want: StatusData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Build(layout, tt.st, Input{})
			assert.Equal(t, tt.want, m.Status)
			assert.Equal(t, tt.wantMsg, m.StatusMessage)
		})
	}
}

func TestBuild_header(t *testing.T) {
	st := table.State{Rows: rows(), SearchParams: map[string]string{"loaiHp": "TC"}}
	m := Build(layout, st, Input{})

	keys := make([]string, 0, len(m.Header))
	for _, h := range m.Header {
		keys = append(keys, h.Key)
	}
	assert.Equal(t, []string{"maHp", "tenHp", "loaiHp", "soTinChi"}, keys)
	assert.Nil(t, m.Header[0].Filter)
	assert.Equal(t, "min-width: 200px", m.Header[1].Style)

	filter := m.Header[2].Filter
	if assert.NotNil(t, filter) {
		assert.Equal(t, "loaiHp", filter.Key)
		assert.Equal(t, "TC", filter.Selected)
		assert.Equal(t, []Option{{Value: "", Label: "Type"}, {Value: "BB", Label: "Required"}, {Value: "TC", Label: "Elective"}}, filter.Options)
	}
}

func TestBuild_rows(t *testing.T) {
	st := table.State{Rows: rows(), Selected: []int64{2}}
	m := Build(layout, st, Input{})

	if assert.Len(t, m.Rows, 2) {
		r0, r1 := m.Rows[0], m.Rows[1]
		assert.Equal(t, int64(1), r0.ID)
		assert.True(t, r0.Selectable)
		assert.False(t, r0.Selected)
		assert.True(t, r1.Selected)

		values := func(rv RowView) []string {
			var vals []string
			for _, c := range rv.Cells {
				vals = append(vals, c.Value)
			}
			return vals
		}
		assert.Equal(t, []string{"MATH1", "Algebra", "BB", "3 cr"}, values(r0))
		assert.Equal(t, []string{"PHY1", "<b>Physics</b>", "", "2 cr"}, values(r1))
	}
}

func TestBuild_selection(t *testing.T) {
	tests := []struct {
		name        string
		selected    []int64
		canDelete   bool
		wantAll     bool
		wantCount   int
		wantEnabled bool
	}{
		{name: "nothing selected", canDelete: true},
		{name: "some selected", selected: []int64{1}, canDelete: true, wantCount: 1, wantEnabled: true},
		{name: "all selected", selected: []int64{1, 2}, canDelete: true, wantAll: true, wantCount: 2, wantEnabled: true},
		{name: "not allowed", selected: []int64{1, 2}, wantAll: true, wantCount: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Build(layout, table.State{Rows: rows(), Selected: tt.selected}, Input{CanDelete: tt.canDelete})
			assert.Equal(t, tt.wantAll, m.AllSelected)
			assert.Equal(t, tt.wantCount, m.SelectedCount)
			assert.Equal(t, tt.wantEnabled, m.DeleteEnabled)
		})
	}

	t.Run("no rows", func(t *testing.T) {
		m := Build(layout, table.State{Rows: []table.Row{}}, Input{CanDelete: true})
		assert.False(t, m.AllSelected)
	})
}

func TestBuild_pagination(t *testing.T) {
	m := Build(layout, table.State{Rows: rows(), Page: 5, PageSize: 20, TotalPages: 9}, Input{Resource: "courses"})

	assert.Equal(t, "courses", m.Resource)
	assert.Equal(t, "Courses", m.Title)
	assert.Equal(t, []int{4, 5, 6}, m.Pagination.Pages)
	assert.Equal(t, 20, m.Pagination.Size)
	assert.True(t, m.Pagination.HasPrev)
	assert.True(t, m.Pagination.HasNext)
}

func TestLayout_VisibleColumns(t *testing.T) {
	for _, c := range layout.VisibleColumns() {
		if strings.EqualFold(c.Key, "secret") {
			t.Errorf("VisibleColumns() returned hidden column %q", c.Key)
		}
	}
	assert.Len(t, layout.VisibleColumns(), 4)
}
