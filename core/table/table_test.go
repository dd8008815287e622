package table

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endpoint = "/api/courses"

// spyTransport records every request and answers with handle.
type spyTransport struct {
	mu       sync.Mutex
	requests []Request
	handle   func(ctx context.Context, req Request) (Response, error)
}

func (s *spyTransport) Do(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.handle == nil {
		return Response{StatusCode: http.StatusOK, Body: []byte(`{"listContent":[],"pageableData":{"totalPage":1}}`)}, nil
	}
	return s.handle(ctx, req)
}

func (s *spyTransport) calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request{}, s.requests...)
}

func (s *spyTransport) last(t *testing.T) Request {
	t.Helper()
	calls := s.calls()
	require.NotEmpty(t, calls)
	return calls[len(calls)-1]
}

func jsonResponse(code int, body string) func(context.Context, Request) (Response, error) {
	return func(context.Context, Request) (Response, error) {
		return Response{StatusCode: code, Body: []byte(body)}, nil
	}
}

type notification struct {
	message  string
	severity Severity
}

type notifySpy struct {
	mu  sync.Mutex
	got []notification
}

func (n *notifySpy) notify(msg string, sev Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, notification{msg, sev})
}

func (n *notifySpy) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification{}, n.got...)
}

func newTable(t *testing.T, tr Transport, conf ...func(*Config)) (*Table, *notifySpy) {
	t.Helper()
	spy := &notifySpy{}
	c := Config{
		Endpoint:   endpoint,
		FilterKeys: []string{"tenHp", "loaiHp"},
		Transport:  tr,
		Notify:     spy.notify,
	}
	for _, fn := range conf {
		fn(&c)
	}
	tbl, err := New(c)
	require.NoError(t, err)
	return tbl, spy
}

func rowIDs(rows []Row) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		id, _ := r.ID()
		ids = append(ids, id)
	}
	return ids
}

const twoRows = `{"listContent":[{"id":1,"tenHp":"Algebra"},{"id":2,"tenHp":"Physics"}],"pageableData":{"totalPage":4}}`

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		wantErr bool
	}{
		{name: "no endpoint", conf: Config{Transport: &spyTransport{}}, wantErr: true},
		{name: "no transport", conf: Config{Endpoint: endpoint}, wantErr: true},
		{name: "valid", conf: Config{Endpoint: endpoint, Transport: &spyTransport{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.conf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				st := tbl.State()
				assert.Equal(t, 1, st.Page)
				assert.Equal(t, DefaultPageSize, st.PageSize)
				assert.Equal(t, 1, st.TotalPages)
				assert.True(t, st.Loading)
			}
		})
	}
}

func TestTable_Fetch_getWhenBlank(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr, func(c *Config) {
		c.InitialSearch = map[string]string{"tenHp": "  ", "loaiHp": ""}
	})

	require.NoError(t, tbl.Fetch(context.Background()))

	req := tr.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, endpoint, req.Path)
	assert.Equal(t, map[string]string{"page": "1", "size": "10"}, req.Query)
	assert.Empty(t, req.Body)
}

func TestTable_Fetch_postWhenSearching(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr, func(c *Config) {
		c.InitialSearch = map[string]string{"tenHp": "alg", "loaiHp": ""}
	})

	require.NoError(t, tbl.Fetch(context.Background()))

	req := tr.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, endpoint+"/search", req.Path)
	assert.Empty(t, req.Query)
	assert.JSONEq(t, `{"paginationRequest":{"page":1,"size":10},"tenHp":"alg","loaiHp":""}`, string(req.Body))
}

func TestTable_Fetch_staticFilterSearches(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr, func(c *Config) {
		c.StaticFilter = map[string]string{"loaiHp": "BB"}
	})

	require.NoError(t, tbl.Fetch(context.Background()))

	req := tr.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"paginationRequest":{"page":1,"size":10},"loaiHp":"BB"}`, string(req.Body))
}

func TestTable_Fetch_paginatedShape(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)

	require.NoError(t, tbl.Fetch(context.Background()))

	st := tbl.State()
	assert.False(t, st.Loading)
	assert.False(t, st.HasError)
	assert.Len(t, st.Rows, 2)
	assert.Equal(t, []int64{1, 2}, rowIDs(st.Rows))
	assert.Equal(t, 4, st.TotalPages)
	assert.Equal(t, "Algebra", st.Rows[0].Text("tenHp"))
}

func TestTable_Fetch_flatShape(t *testing.T) {
	body := `{"result":[
		{"id":1,"tenHp":"Algebra I"},{"id":2,"tenHp":"Physics"},{"id":3,"tenHp":"Algebra II"},
		{"id":4,"tenHp":"Linear algebra"},{"id":5,"tenHp":"Chemistry"}
	]}`
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, body)}
	tbl, _ := newTable(t, tr, func(c *Config) { c.PageSize = 2 })

	require.NoError(t, tbl.Fetch(context.Background()))
	st := tbl.State()
	assert.Equal(t, []int64{1, 2}, rowIDs(st.Rows))
	assert.Equal(t, 3, st.TotalPages)

	tbl.SetPage(3)
	require.NoError(t, tbl.Fetch(context.Background()))
	assert.Equal(t, []int64{5}, rowIDs(tbl.State().Rows))

	tbl.MergeSearchParam("tenHp", "ALGEBRA")
	require.NoError(t, tbl.Fetch(context.Background()))
	st = tbl.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, []int64{1, 3}, rowIDs(st.Rows))
	assert.Equal(t, 2, st.TotalPages)

	// unknown keys are not filtered on
	tbl.MergeSearchParam("other", "zzz")
	require.NoError(t, tbl.Fetch(context.Background()))
	assert.Equal(t, []int64{1, 3}, rowIDs(tbl.State().Rows))
}

func TestTable_Fetch_errors(t *testing.T) {
	tests := []struct {
		name   string
		handle func(context.Context, Request) (Response, error)
	}{
		{name: "server error", handle: jsonResponse(http.StatusInternalServerError, `{"error":"boom"}`)},
		{name: "not found", handle: jsonResponse(http.StatusNotFound, ``)},
		{name: "transport error", handle: func(context.Context, Request) (Response, error) {
			return Response{}, errors.New("connection refused")
		}},
		{name: "invalid json", handle: jsonResponse(http.StatusOK, `{"listContent":`)},
		{name: "unknown shape", handle: jsonResponse(http.StatusOK, `{"items":[{"id":1}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
			tbl, _ := newTable(t, tr)

			require.NoError(t, tbl.Fetch(context.Background()))
			_, err := tbl.ToggleSelection(1)
			require.NoError(t, err)

			tr.handle = tt.handle
			tbl.Refresh(tt.name)
			assert.Error(t, tbl.Fetch(context.Background()))

			st := tbl.State()
			assert.True(t, st.HasError)
			assert.False(t, st.Loading)
			assert.Empty(t, st.Rows)
			assert.NotNil(t, st.Rows)
			assert.Equal(t, 1, st.TotalPages)
			assert.Empty(t, st.Selected)
		})
	}
}

func TestTable_Fetch_errorClearsOnSuccess(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusInternalServerError, ``)}
	tbl, _ := newTable(t, tr)

	assert.Error(t, tbl.Fetch(context.Background()))
	assert.True(t, tbl.State().HasError)

	tr.handle = jsonResponse(http.StatusOK, twoRows)
	require.NoError(t, tbl.Fetch(context.Background()))
	assert.False(t, tbl.State().HasError)
	assert.Len(t, tbl.State().Rows, 2)
}

func TestTable_Fetch_staleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	tr := &spyTransport{}
	tr.handle = func(ctx context.Context, req Request) (Response, error) {
		if req.Query["page"] == "1" {
			close(started)
			<-release // the slow page-1 fetch ignores cancellation on purpose
			return Response{StatusCode: http.StatusOK, Body: []byte(`{"listContent":[{"id":1}],"pageableData":{"totalPage":5}}`)}, nil
		}
		return Response{StatusCode: http.StatusOK, Body: []byte(`{"listContent":[{"id":11}],"pageableData":{"totalPage":5}}`)}, nil
	}
	tbl, _ := newTable(t, tr)
	tbl.totalPages = 5

	slow := make(chan error, 1)
	go func() { slow <- tbl.Fetch(context.Background()) }()
	<-started

	tbl.SetPage(2)
	require.NoError(t, tbl.Fetch(context.Background()))
	close(release)

	select {
	case err := <-slow:
		assert.Equal(t, ErrStale, err)
	case <-time.After(time.Second):
		t.Fatal("slow fetch never returned")
	}

	st := tbl.State()
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, []int64{11}, rowIDs(st.Rows))
	assert.False(t, st.Loading)
}

func TestTable_Fetch_cancelsPrevious(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})
	tr := &spyTransport{}
	tr.handle = func(ctx context.Context, req Request) (Response, error) {
		if req.Query["page"] == "1" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return Response{}, ctx.Err()
		}
		return Response{StatusCode: http.StatusOK, Body: []byte(twoRows)}, nil
	}
	tbl, _ := newTable(t, tr)
	tbl.totalPages = 4

	slow := make(chan error, 1)
	go func() { slow <- tbl.Fetch(context.Background()) }()
	<-started

	tbl.SetPage(2)
	require.NoError(t, tbl.Fetch(context.Background()))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("previous fetch was not cancelled")
	}
	assert.Equal(t, ErrStale, <-slow)
	assert.False(t, tbl.State().HasError)
}

func TestTable_Sync(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)
	ctx := context.Background()

	fetched, err := tbl.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, fetched, "first sync always fetches")

	fetched, _ = tbl.Sync(ctx)
	assert.False(t, fetched, "unchanged query")

	tbl.SetPage(3)
	fetched, _ = tbl.Sync(ctx)
	assert.True(t, fetched, "page changed")

	tbl.Refresh(1)
	fetched, _ = tbl.Sync(ctx)
	assert.True(t, fetched, "trigger changed")

	tbl.Refresh(1)
	fetched, _ = tbl.Sync(ctx)
	assert.False(t, fetched, "same trigger")

	tbl.MergeSearchParam("tenHp", "")
	fetched, _ = tbl.Sync(ctx)
	assert.True(t, fetched, "search params changed")

	assert.Len(t, tr.calls(), 4)
}

func TestTable_Sync_retriesCancelledFetch(t *testing.T) {
	tr := &spyTransport{}
	tr.handle = func(ctx context.Context, req Request) (Response, error) {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		return Response{StatusCode: http.StatusOK, Body: []byte(twoRows)}, nil
	}
	tbl, _ := newTable(t, tr)

	gone, cancel := context.WithCancel(context.Background())
	cancel()

	fetched, err := tbl.Sync(gone)
	assert.True(t, fetched)
	assert.Equal(t, context.Canceled, errors.Cause(err))
	st := tbl.State()
	assert.False(t, st.HasError)
	assert.True(t, st.Loading, "nothing was ever loaded")

	fetched, err = tbl.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched, "a cancelled fetch is retried")
	assert.Equal(t, []int64{1, 2}, rowIDs(tbl.State().Rows))

	// a cancelled refresh keeps the page already shown
	tbl.Refresh(1)
	_, err = tbl.Sync(gone)
	assert.Error(t, err)
	st = tbl.State()
	assert.False(t, st.HasError)
	assert.False(t, st.Loading)
	assert.Equal(t, []int64{1, 2}, rowIDs(st.Rows))

	fetched, err = tbl.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Len(t, tr.calls(), 4)
}

func TestTable_Fetch_flatShapeClampsPage(t *testing.T) {
	many := `{"result":[` + strings.TrimSuffix(strings.Repeat(`{"id":1},`, 25), ",") + `]}`
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, many)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))
	assert.Equal(t, 3, tbl.SetPage(3))

	tr.handle = jsonResponse(http.StatusOK, `{"result":[{"id":1},{"id":2},{"id":3}]}`)
	tbl.Refresh("shrunk")
	require.NoError(t, tbl.Fetch(context.Background()))

	st := tbl.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 1, st.TotalPages)
	assert.Equal(t, []int64{1, 2, 3}, rowIDs(st.Rows))

	fetched, err := tbl.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, fetched, "the clamped page is the fetched one")
	assert.Len(t, tr.calls(), 2)
}

func TestTable_SetPageSize_resetsPage(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))

	assert.Equal(t, 3, tbl.SetPage(3))
	require.NoError(t, tbl.SetPageSize(20))

	st := tbl.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 20, st.PageSize)
	assert.Equal(t, ErrInvalidPageSize, tbl.SetPageSize(0))

	require.NoError(t, tbl.Fetch(context.Background()))
	assert.Equal(t, map[string]string{"page": "1", "size": "20"}, tr.last(t).Query)
}

func TestTable_SetPage_clamps(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))

	assert.Equal(t, 1, tbl.SetPage(0))
	assert.Equal(t, 4, tbl.SetPage(9))
	assert.Equal(t, 2, tbl.SetPage(2))
}

func TestTable_MergeSearchParam(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr, func(c *Config) {
		c.InitialSearch = map[string]string{"tenHp": "", "loaiHp": ""}
	})
	require.NoError(t, tbl.Fetch(context.Background()))
	tbl.SetPage(3)

	tbl.MergeSearchParam("tenHp", "alg")
	st := tbl.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, map[string]string{"tenHp": "alg", "loaiHp": ""}, st.SearchParams)

	tbl.SetPage(2)
	tbl.MergeSearchParam("loaiHp", "BB")
	st = tbl.State()
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, map[string]string{"tenHp": "alg", "loaiHp": "BB"}, st.SearchParams)

	tbl.SetSearchParams(map[string]string{"tenHp": "x"})
	assert.Equal(t, map[string]string{"tenHp": "x"}, tbl.State().SearchParams)
}

func TestTable_ToggleSelection(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))

	_, err := tbl.ToggleSelection(99)
	assert.Equal(t, ErrNotOnPage, err)

	before := tbl.Selected()
	selected, err := tbl.ToggleSelection(2)
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, []int64{2}, tbl.Selected())

	selected, err = tbl.ToggleSelection(2)
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, before, tbl.Selected())
}

func TestTable_SelectAll(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))

	_, _ = tbl.ToggleSelection(1)
	assert.True(t, tbl.SelectAll())
	assert.Equal(t, []int64{1, 2}, tbl.Selected())
	assert.True(t, tbl.State().AllSelected())

	assert.False(t, tbl.SelectAll())
	assert.Empty(t, tbl.Selected())
	assert.False(t, tbl.State().AllSelected())
}

func TestTable_selectionPrunedOnRefetch(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, twoRows)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))
	tbl.SelectAll()

	// the same ids come back in another order plus a new one: selection follows ids, not positions
	tr.handle = jsonResponse(http.StatusOK, `{"listContent":[{"id":3},{"id":2}],"pageableData":{"totalPage":4}}`)
	require.NoError(t, tbl.Fetch(context.Background()))

	assert.Equal(t, []int64{2}, tbl.Selected())
}

func TestTable_rowsWithoutIDAreNotSelectable(t *testing.T) {
	tr := &spyTransport{handle: jsonResponse(http.StatusOK, `{"listContent":[{"name":"x"},{"id":"abc"}],"pageableData":{"totalPage":1}}`)}
	tbl, _ := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))

	assert.Len(t, tbl.State().Rows, 2)
	assert.False(t, tbl.SelectAll())
	assert.False(t, tbl.State().AllSelected())
}

func deleteHandler(failing ...int64) func(context.Context, Request) (Response, error) {
	return func(ctx context.Context, req Request) (Response, error) {
		if req.Method != http.MethodDelete {
			return Response{StatusCode: http.StatusOK, Body: []byte(twoRows)}, nil
		}
		for _, id := range failing {
			if strings.HasSuffix(req.Path, "/"+strconv.FormatInt(id, 10)) {
				return Response{StatusCode: http.StatusConflict}, nil
			}
		}
		return Response{StatusCode: http.StatusNoContent}, nil
	}
}

func deleteCalls(tr *spyTransport) []string {
	var paths []string
	for _, req := range tr.calls() {
		if req.Method == http.MethodDelete {
			paths = append(paths, req.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

func TestTable_DeleteSelected(t *testing.T) {
	var (
		mu       sync.Mutex
		inflight int
		maxIn    int
	)
	tr := &spyTransport{}
	tr.handle = func(ctx context.Context, req Request) (Response, error) {
		if req.Method != http.MethodDelete {
			return Response{StatusCode: http.StatusOK, Body: []byte(twoRows)}, nil
		}
		mu.Lock()
		inflight++
		if inflight > maxIn {
			maxIn = inflight
		}
		mu.Unlock()

		// wait until both deletes are in flight
		deadline := time.After(time.Second)
		for {
			mu.Lock()
			n := maxIn
			mu.Unlock()
			if n >= 2 {
				break
			}
			select {
			case <-deadline:
				return Response{StatusCode: http.StatusGatewayTimeout}, nil
			case <-time.After(time.Millisecond):
			}
		}
		mu.Lock()
		inflight--
		mu.Unlock()
		return Response{StatusCode: http.StatusOK}, nil
	}
	tbl, spy := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))
	_, _ = tbl.ToggleSelection(1)
	_, _ = tbl.ToggleSelection(2)

	report, err := tbl.DeleteSelected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{endpoint + "/1", endpoint + "/2"}, deleteCalls(tr))
	assert.Equal(t, 2, maxIn, "deletes must run concurrently")
	assert.Equal(t, []int64{1, 2}, report.Succeeded())
	assert.Empty(t, report.Failed())
	assert.Empty(t, tbl.Selected())
	assert.Empty(t, tbl.State().Rows)
	assert.Equal(t, []notification{{"Deleted 2 items successfully", SeveritySuccess}}, spy.all())
}

func TestTable_DeleteSelected_partialFailure(t *testing.T) {
	tr := &spyTransport{handle: deleteHandler(2)}
	tbl, spy := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))
	tbl.SelectAll()

	report, err := tbl.DeleteSelected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, report.Succeeded())
	assert.Equal(t, []int64{2}, report.Failed())
	assert.Equal(t, http.StatusConflict, report.Outcomes[1].StatusCode)
	assert.Equal(t, SeverityWarning, report.Severity())

	st := tbl.State()
	assert.Equal(t, []int64{2}, rowIDs(st.Rows))
	assert.Equal(t, []int64{2}, st.Selected)
	assert.Equal(t, []notification{{"Deleted 1 of 2 items, 1 failed", SeverityWarning}}, spy.all())
}

func TestTable_DeleteSelected_allFail(t *testing.T) {
	tr := &spyTransport{handle: deleteHandler(1, 2)}
	tbl, spy := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))
	tbl.SelectAll()

	report, err := tbl.DeleteSelected(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Succeeded())
	assert.Equal(t, SeverityError, report.Severity())
	assert.Len(t, tbl.State().Rows, 2)
	assert.Equal(t, []int64{1, 2}, tbl.Selected())
	assert.Equal(t, []notification{{"An error occurred while deleting", SeverityError}}, spy.all())
}

func TestTable_DeleteSelected_nothingSelected(t *testing.T) {
	tr := &spyTransport{handle: deleteHandler()}
	tbl, spy := newTable(t, tr)
	require.NoError(t, tbl.Fetch(context.Background()))

	report, err := tbl.DeleteSelected(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Outcomes)
	assert.Empty(t, deleteCalls(tr))
	assert.Empty(t, spy.all())
}

type rejectingPool struct{}

func (rejectingPool) Submit(func()) error { return errors.New("pool closed") }

func TestTable_DeleteSelected_poolRejects(t *testing.T) {
	tr := &spyTransport{handle: deleteHandler()}
	tbl, spy := newTable(t, tr, func(c *Config) { c.Pool = rejectingPool{} })
	require.NoError(t, tbl.Fetch(context.Background()))
	tbl.SelectAll()

	report, err := tbl.DeleteSelected(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, report.Failed())
	assert.Empty(t, deleteCalls(tr))
	assert.Len(t, spy.all(), 1)
}
