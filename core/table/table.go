// Package table implements a paginated, searchable and selectable view over a REST collection.
package table

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core"
	"github.com/trezcool/syllabus/core/pagination"
)

const (
	DefaultPageSize = 10

	defaultDeleteConcurrency = 8
)

var (
	// errors
	ErrNotOnPage       = errors.New("row is not on the current page")
	ErrInvalidPageSize = errors.New("page size must be positive")
	ErrStale           = errors.New("fetch superseded by a newer one")
)

type (
	// Submitter runs tasks on a bounded set of workers (eg. *ants.Pool).
	Submitter interface {
		Submit(task func()) error
	}

	Config struct {
		Endpoint      string
		FilterKeys    []string
		InitialSearch map[string]string
		StaticFilter  map[string]string
		PageSize      int
		Notify        Notifier
		Transport     Transport
		Logger        core.Logger
		// Pool runs bulk deletes. A pool of DeleteConcurrency workers is created per delete when nil.
		Pool              Submitter
		DeleteConcurrency int
	}

	Table struct {
		endpoint          string
		filterKeys        []string
		transport         Transport
		logger            core.Logger
		notify            Notifier
		pool              Submitter
		deleteConcurrency int

		mu         sync.Mutex
		query      Query
		rows       []Row
		totalPages int
		selected   map[int64]struct{}
		loading    bool
		hasError   bool
		gen        uint64 // generation of the latest issued fetch
		cancel     context.CancelFunc
		lastKey    string
		fetched    bool
	}

	// State is a snapshot of a Table.
	State struct {
		Endpoint     string            `json:"endpoint"`
		Rows         []Row             `json:"rows"`
		Page         int               `json:"page"`
		PageSize     int               `json:"page_size"`
		TotalPages   int               `json:"total_pages"`
		SearchParams map[string]string `json:"search_params"`
		StaticFilter map[string]string `json:"static_filter"`
		Selected     []int64           `json:"selected"`
		Loading      bool              `json:"loading"`
		HasError     bool              `json:"has_error"`
	}
)

func New(conf Config) (*Table, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.Endpoint, "Endpoint"),
		vala.IsNotNil(conf.Transport, "Transport"),
	).Check(); err != nil {
		return nil, err
	}

	pageSize := conf.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	concurrency := conf.DeleteConcurrency
	if concurrency < 1 {
		concurrency = defaultDeleteConcurrency
	}
	notify := conf.Notify
	if notify == nil {
		notify = nopNotifier
	}
	var logger core.Logger = core.NopLogger{}
	if conf.Logger != nil {
		logger = conf.Logger
	}

	return &Table{
		endpoint:          conf.Endpoint,
		filterKeys:        append([]string{}, conf.FilterKeys...),
		transport:         conf.Transport,
		logger:            logger,
		notify:            notify,
		pool:              conf.Pool,
		deleteConcurrency: concurrency,
		query: Query{
			Page:         1,
			PageSize:     pageSize,
			SearchParams: copyParams(conf.InitialSearch),
			StaticFilter: copyParams(conf.StaticFilter),
		},
		rows:       []Row{},
		totalPages: 1,
		selected:   make(map[int64]struct{}),
		loading:    true,
	}, nil
}

func (t *Table) Endpoint() string { return t.endpoint }

// Fetch loads the page described by the current query.
// It cancels any fetch still in flight; a fetch superseded by a newer one returns ErrStale
// and leaves the table untouched. A fetch whose ctx is done also leaves the rows untouched
// and is retried by the next Sync. Any other failure empties the rows and sets the error flag.
func (t *Table) Fetch(ctx context.Context) error {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.gen++
	gen := t.gen
	q := t.query.clone()
	t.lastKey = q.Key(t.endpoint)
	t.fetched = true
	wasLoading, hadError := t.loading, t.hasError
	t.loading = true
	t.hasError = false
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()
	defer cancel()

	method, res, err := t.load(ctx, q)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.gen {
		fetchTotal.WithLabelValues(t.endpoint, method, "stale").Inc()
		return ErrStale
	}
	t.cancel = nil
	t.loading = false

	if err != nil && ctx.Err() != nil {
		// the caller went away: keep the previous page and retry on the next Sync
		fetchTotal.WithLabelValues(t.endpoint, method, "cancelled").Inc()
		t.fetched = false
		t.loading = wasLoading
		t.hasError = hadError
		return err
	}
	if err != nil {
		fetchTotal.WithLabelValues(t.endpoint, method, "error").Inc()
		t.logger.Error(fmt.Sprintf("table.Fetch(%s)", t.endpoint), err)
		t.rows = []Row{}
		t.totalPages = 1
		t.hasError = true
		t.pruneSelectionLocked()
		return err
	}

	fetchTotal.WithLabelValues(t.endpoint, method, "ok").Inc()
	if res.Page != q.Page && t.query.Key(t.endpoint) == t.lastKey {
		t.query.Page = res.Page
		t.lastKey = t.query.Key(t.endpoint)
	}
	t.rows = res.Rows
	t.totalPages = res.TotalPages
	t.pruneSelectionLocked()
	return nil
}

// Sync fetches only if the query changed since the last issued fetch.
// It reports whether a fetch was made.
func (t *Table) Sync(ctx context.Context) (bool, error) {
	t.mu.Lock()
	changed := !t.fetched || t.query.Key(t.endpoint) != t.lastKey
	t.mu.Unlock()

	if !changed {
		return false, nil
	}
	return true, t.Fetch(ctx)
}

func (t *Table) load(ctx context.Context, q Query) (string, Result, error) {
	req, err := t.buildRequest(q)
	if err != nil {
		return http.MethodGet, Result{}, err
	}

	start := time.Now()
	resp, err := t.transport.Do(ctx, req)
	fetchDuration.WithLabelValues(t.endpoint, req.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		return req.Method, Result{}, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	if !resp.OK() {
		return req.Method, Result{}, errors.Errorf("%s %s: unexpected status %d", req.Method, req.Path, resp.StatusCode)
	}

	res, err := parseResult(resp.Body, q, t.filterKeys)
	if err != nil {
		return req.Method, Result{}, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	return req.Method, res, nil
}

// buildRequest lists with GET when every param is blank, otherwise searches with POST <endpoint>/search.
func (t *Table) buildRequest(q Query) (Request, error) {
	if q.IsBlank() {
		return Request{
			Method: http.MethodGet,
			Path:   t.endpoint,
			Query: map[string]string{
				"page": strconv.Itoa(q.Page),
				"size": strconv.Itoa(q.PageSize),
			},
		}, nil
	}

	body := map[string]interface{}{
		"paginationRequest": map[string]int{
			"page": q.Page,
			"size": q.PageSize,
		},
	}
	for k, v := range q.Params() {
		body[k] = v
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Request{}, errors.Wrap(err, "encoding search body")
	}
	return Request{
		Method: http.MethodPost,
		Path:   t.endpoint + "/search",
		Body:   data,
	}, nil
}

// Refresh changes the refresh trigger; the next Sync refetches if trigger differs from the current one.
func (t *Table) Refresh(trigger interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.Trigger = fmt.Sprint(trigger)
}

// SetSearchParams replaces the search params and goes back to the first page.
func (t *Table) SetSearchParams(params map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.SearchParams = copyParams(params)
	t.query.Page = 1
}

// MergeSearchParam sets a single search param, keeping the others, and goes back to the first page.
func (t *Table) MergeSearchParam(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.query.SearchParams == nil {
		t.query.SearchParams = make(map[string]string)
	}
	t.query.SearchParams[key] = value
	t.query.Page = 1
}

func (t *Table) SetStaticFilter(filter map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.StaticFilter = copyParams(filter)
	t.query.Page = 1
}

// SetPage moves to page n, clamped to the known page range.
func (t *Table) SetPage(n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.Page = pagination.Clamp(n, t.totalPages)
	return t.query.Page
}

func (t *Table) SetPageSize(n int) error {
	if n < 1 {
		return ErrInvalidPageSize
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query.PageSize = n
	t.query.Page = 1
	return nil
}

// ToggleSelection adds or removes id from the selection and reports whether it is now selected.
func (t *Table) ToggleSelection(id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.onPageLocked(id) {
		return false, ErrNotOnPage
	}
	if _, ok := t.selected[id]; ok {
		delete(t.selected, id)
		return false, nil
	}
	t.selected[id] = struct{}{}
	return true, nil
}

// SelectAll selects every row of the page, or clears the selection if they all are already selected.
// It reports whether the rows are now all selected.
func (t *Table) SelectAll() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := t.pageIDsLocked()
	if len(ids) == 0 {
		return false
	}
	if t.allSelectedLocked(ids) {
		t.selected = make(map[int64]struct{})
		return false
	}
	for _, id := range ids {
		t.selected[id] = struct{}{}
	}
	return true
}

// ClearSelection empties the selection.
func (t *Table) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selected = make(map[int64]struct{})
}

// Selected returns the selected ids in ascending order.
func (t *Table) Selected() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selectedLocked()
}

func (t *Table) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return State{
		Endpoint:     t.endpoint,
		Rows:         append([]Row{}, t.rows...),
		Page:         t.query.Page,
		PageSize:     t.query.PageSize,
		TotalPages:   t.totalPages,
		SearchParams: copyParams(t.query.SearchParams),
		StaticFilter: copyParams(t.query.StaticFilter),
		Selected:     t.selectedLocked(),
		Loading:      t.loading,
		HasError:     t.hasError,
	}
}

func (t *Table) selectedLocked() []int64 {
	ids := make([]int64, 0, len(t.selected))
	for id := range t.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (t *Table) pageIDsLocked() []int64 {
	ids := make([]int64, 0, len(t.rows))
	for _, row := range t.rows {
		if id, ok := row.ID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Table) onPageLocked(id int64) bool {
	for _, pid := range t.pageIDsLocked() {
		if pid == id {
			return true
		}
	}
	return false
}

func (t *Table) allSelectedLocked(ids []int64) bool {
	for _, id := range ids {
		if _, ok := t.selected[id]; !ok {
			return false
		}
	}
	return true
}

// pruneSelectionLocked drops selected ids that are no longer on the page.
func (t *Table) pruneSelectionLocked() {
	onPage := make(map[int64]struct{}, len(t.rows))
	for _, id := range t.pageIDsLocked() {
		onPage[id] = struct{}{}
	}
	for id := range t.selected {
		if _, ok := onPage[id]; !ok {
			delete(t.selected, id)
		}
	}
}

// IsSelected reports whether id is part of the selection.
func (s State) IsSelected(id int64) bool {
	for _, sid := range s.Selected {
		if sid == id {
			return true
		}
	}
	return false
}

// AllSelected reports whether the page has selectable rows and all of them are selected.
func (s State) AllSelected() bool {
	n := 0
	for _, row := range s.Rows {
		id, ok := row.ID()
		if !ok {
			continue
		}
		if !s.IsSelected(id) {
			return false
		}
		n++
	}
	return n > 0
}
