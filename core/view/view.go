// Package view builds the render model of a table page: header, rows, status panel,
// bulk-delete button, pagination footer and toast.
package view

import (
	"github.com/trezcool/syllabus/core/pagination"
	"github.com/trezcool/syllabus/core/table"
)

// Status of the table body. Only one is displayed, checked in this order.
const (
	StatusLoading = "loading"
	StatusError   = "error"
	StatusEmpty   = "empty"
	StatusData    = "data"
)

const (
	MsgLoading = "Loading..."
	MsgError   = "Failed to load data"
	MsgEmpty   = "No data found. Try searching with a different keyword."
)

type (
	// Column describes how a row field is displayed. Render overrides the raw value when set.
	Column struct {
		Key    string
		Label  string
		Style  string
		Render func(row table.Row) string
		Hidden bool
	}

	Option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	// SelectFilter replaces the header of column Key with a dropdown of Options.
	SelectFilter struct {
		Key     string
		Options []Option
	}

	// Layout is the declarative description of a table, owned by the caller.
	Layout struct {
		Title        string
		SearchKey    string
		Columns      []Column
		SelectFilter *SelectFilter
	}

	Model struct {
		Resource      string              `json:"resource"`
		Title         string              `json:"title"`
		Header        []HeaderCell        `json:"header"`
		Rows          []RowView           `json:"rows"`
		Status        string              `json:"status"`
		StatusMessage string              `json:"status_message,omitempty"`
		AllSelected   bool                `json:"all_selected"`
		SelectedCount int                 `json:"selected_count"`
		CanDelete     bool                `json:"can_delete"`
		DeleteEnabled bool                `json:"delete_enabled"`
		SearchKey     string              `json:"search_key,omitempty"`
		SearchValue   string              `json:"search_value"`
		Pagination    pagination.Controls `json:"pagination"`
		Toast         *Toast              `json:"toast,omitempty"`
	}

	HeaderCell struct {
		Key    string      `json:"key"`
		Label  string      `json:"label"`
		Style  string      `json:"style,omitempty"`
		Filter *FilterView `json:"filter,omitempty"`
	}

	// FilterView is a dropdown; its first option carries the column label and an empty value.
	FilterView struct {
		Key      string   `json:"key"`
		Selected string   `json:"selected"`
		Options  []Option `json:"options"`
	}

	RowView struct {
		ID         int64  `json:"id"`
		Selectable bool   `json:"selectable"`
		Selected   bool   `json:"selected"`
		Cells      []Cell `json:"cells"`
	}

	Cell struct {
		Key   string `json:"key"`
		Value string `json:"value"`
		Style string `json:"style,omitempty"`
	}

	// Input carries what the model needs besides the layout and the table state.
	Input struct {
		Resource    string
		SearchValue string
		Toast       *Toast
		// CanDelete is whether the viewer is allowed to bulk delete at all.
		CanDelete bool
	}
)

// VisibleColumns returns the columns that are not hidden.
func (l Layout) VisibleColumns() []Column {
	cols := make([]Column, 0, len(l.Columns))
	for _, c := range l.Columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}
	return cols
}

func Build(layout Layout, st table.State, in Input) Model {
	cols := layout.VisibleColumns()
	m := Model{
		Resource:      in.Resource,
		Title:         layout.Title,
		Header:        buildHeader(layout, cols, st),
		Rows:          buildRows(cols, st),
		AllSelected:   st.AllSelected(),
		SelectedCount: len(st.Selected),
		CanDelete:     in.CanDelete,
		DeleteEnabled: in.CanDelete && len(st.Selected) > 0,
		SearchKey:     layout.SearchKey,
		SearchValue:   in.SearchValue,
		Pagination:    pagination.NewControls(st.Page, st.TotalPages, st.PageSize),
		Toast:         in.Toast,
	}
	m.Status, m.StatusMessage = status(st)
	return m
}

func status(st table.State) (string, string) {
	switch {
	case st.Loading:
		return StatusLoading, MsgLoading
	case st.HasError:
		return StatusError, MsgError
	case len(st.Rows) == 0:
		return StatusEmpty, MsgEmpty
	default:
		return StatusData, ""
	}
}

func buildHeader(layout Layout, cols []Column, st table.State) []HeaderCell {
	header := make([]HeaderCell, 0, len(cols))
	for _, c := range cols {
		cell := HeaderCell{Key: c.Key, Label: c.Label, Style: c.Style}
		if sf := layout.SelectFilter; sf != nil && sf.Key == c.Key {
			opts := make([]Option, 0, len(sf.Options)+1)
			opts = append(opts, Option{Value: "", Label: c.Label})
			opts = append(opts, sf.Options...)
			cell.Filter = &FilterView{
				Key:      sf.Key,
				Selected: st.SearchParams[sf.Key],
				Options:  opts,
			}
		}
		header = append(header, cell)
	}
	return header
}

func buildRows(cols []Column, st table.State) []RowView {
	rows := make([]RowView, 0, len(st.Rows))
	for _, row := range st.Rows {
		rv := RowView{Cells: make([]Cell, 0, len(cols))}
		if id, ok := row.ID(); ok {
			rv.ID = id
			rv.Selectable = true
			rv.Selected = st.IsSelected(id)
		}
		for _, c := range cols {
			rv.Cells = append(rv.Cells, Cell{Key: c.Key, Value: cellValue(c, row), Style: c.Style})
		}
		rows = append(rows, rv)
	}
	return rows
}

func cellValue(c Column, row table.Row) string {
	if c.Render != nil {
		return c.Render(row)
	}
	return row.Text(c.Key)
}
