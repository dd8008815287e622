package table

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	q := Query{Page: 1, PageSize: 2}

	tests := []struct {
		name      string
		body      string
		wantIDs   []int64
		wantTotal int
		wantErr   bool
	}{
		{name: "paginated", body: `{"listContent":[{"id":7}],"pageableData":{"totalPage":3}}`, wantIDs: []int64{7}, wantTotal: 3},
		{name: "paginated without content", body: `{"listContent":null,"pageableData":{"totalPage":0}}`, wantIDs: []int64{}, wantTotal: 1},
		{name: "paginated without metadata", body: `{"listContent":[{"id":1},{"id":2}]}`, wantIDs: []int64{1, 2}, wantTotal: 1},
		{name: "flat", body: `{"result":[{"id":1},{"id":2},{"id":3}]}`, wantIDs: []int64{1, 2}, wantTotal: 2},
		{name: "flat empty", body: `{"result":[]}`, wantIDs: []int64{}, wantTotal: 1},
		{name: "array", body: `[{"id":1}]`, wantErr: true},
		{name: "empty object", body: `{}`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseResult([]byte(tt.body), q, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResult() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			assert.Equal(t, tt.wantIDs, rowIDs(res.Rows))
			assert.Equal(t, 1, res.Page)
			assert.Equal(t, tt.wantTotal, res.TotalPages)
		})
	}
}

func TestParseResult_keepsNumbers(t *testing.T) {
	res, err := parseResult([]byte(`{"listContent":[{"id":12345678901,"soTinChi":3.5}]}`), Query{Page: 1, PageSize: 10}, nil)
	require.NoError(t, err)

	id, ok := res.Rows[0].ID()
	assert.True(t, ok)
	assert.Equal(t, int64(12345678901), id)
	assert.Equal(t, json.Number("3.5"), res.Rows[0]["soTinChi"])
	assert.Equal(t, "3.5", res.Rows[0].Text("soTinChi"))
}

func TestPaginate(t *testing.T) {
	rows := []Row{{"id": 1}, {"id": 2}, {"id": 3}, {"id": 4}, {"id": 5}}

	tests := []struct {
		name      string
		page      int
		size      int
		wantIDs   []int64
		wantPage  int
		wantTotal int
	}{
		{name: "first page", page: 1, size: 2, wantIDs: []int64{1, 2}, wantPage: 1, wantTotal: 3},
		{name: "last partial page", page: 3, size: 2, wantIDs: []int64{5}, wantPage: 3, wantTotal: 3},
		{name: "past the end", page: 9, size: 2, wantIDs: []int64{5}, wantPage: 3, wantTotal: 3},
		{name: "exact fit", page: 1, size: 5, wantIDs: []int64{1, 2, 3, 4, 5}, wantPage: 1, wantTotal: 1},
		{name: "larger than data", page: 1, size: 50, wantIDs: []int64{1, 2, 3, 4, 5}, wantPage: 1, wantTotal: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := paginate(rows, tt.page, tt.size)
			assert.Equal(t, tt.wantIDs, rowIDs(res.Rows))
			assert.Equal(t, tt.wantPage, res.Page)
			assert.Equal(t, tt.wantTotal, res.TotalPages)
		})
	}
}

func TestQuery_Key(t *testing.T) {
	q1 := Query{Page: 1, PageSize: 10, SearchParams: map[string]string{"a": "1", "b": "2"}}
	q2 := Query{Page: 1, PageSize: 10, SearchParams: map[string]string{"b": "2", "a": "1"}}
	assert.Equal(t, q1.Key("/x"), q2.Key("/x"))
	assert.NotEqual(t, q1.Key("/x"), q1.Key("/y"))

	q3 := q1.clone()
	q3.Trigger = "1"
	assert.NotEqual(t, q1.Key("/x"), q3.Key("/x"))

	// search params and static filter are distinct even with the same values
	q4 := Query{Page: 1, PageSize: 10, StaticFilter: map[string]string{"a": "1", "b": "2"}}
	assert.NotEqual(t, q1.Key("/x"), q4.Key("/x"))
}

func TestQuery_IsBlank(t *testing.T) {
	assert.True(t, Query{}.IsBlank())
	assert.True(t, Query{SearchParams: map[string]string{"a": " ", "b": ""}}.IsBlank())
	assert.False(t, Query{SearchParams: map[string]string{"a": "x"}}.IsBlank())
	assert.False(t, Query{StaticFilter: map[string]string{"a": "x"}}.IsBlank())
}
