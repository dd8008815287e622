package table

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
)

type (
	// DeleteOutcome is the result of deleting a single row.
	DeleteOutcome struct {
		ID         int64
		StatusCode int
		Err        error
	}

	// DeleteReport collects one outcome per requested id, in ascending id order.
	DeleteReport struct {
		Outcomes []DeleteOutcome
	}
)

func (o DeleteOutcome) OK() bool { return o.Err == nil }

func (r DeleteReport) Succeeded() []int64 {
	ids := make([]int64, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func (r DeleteReport) Failed() []int64 {
	ids := make([]int64, 0)
	for _, o := range r.Outcomes {
		if !o.OK() {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Severity is success when every delete succeeded, error when none did and warning otherwise.
func (r DeleteReport) Severity() Severity {
	ok := len(r.Succeeded())
	switch {
	case len(r.Outcomes) == 0:
		return SeverityInfo
	case ok == len(r.Outcomes):
		return SeveritySuccess
	case ok == 0:
		return SeverityError
	default:
		return SeverityWarning
	}
}

func (r DeleteReport) Message() string {
	total := len(r.Outcomes)
	ok := len(r.Succeeded())
	switch r.Severity() {
	case SeveritySuccess:
		if total == 1 {
			return "Deleted 1 item successfully"
		}
		return fmt.Sprintf("Deleted %d items successfully", total)
	case SeverityWarning:
		return fmt.Sprintf("Deleted %d of %d items, %d failed", ok, total, total-ok)
	case SeverityError:
		return "An error occurred while deleting"
	default:
		return "Nothing to delete"
	}
}

// DeleteSelected deletes every selected row concurrently and waits for all outcomes.
// Only the rows whose delete succeeded leave the page and the selection.
// Nothing is sent and nobody is notified when the selection is empty.
func (t *Table) DeleteSelected(ctx context.Context) (DeleteReport, error) {
	ids := t.Selected()
	if len(ids) == 0 {
		return DeleteReport{}, nil
	}

	pool := t.pool
	if pool == nil {
		size := t.deleteConcurrency
		if len(ids) < size {
			size = len(ids)
		}
		p, err := ants.NewPool(size)
		if err != nil {
			return DeleteReport{}, errors.Wrap(err, "creating delete pool")
		}
		defer p.Release()
		pool = p
	}

	outcomes := make([]DeleteOutcome, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = t.deleteOne(ctx, id)
		}
		if err := pool.Submit(task); err != nil {
			outcomes[i] = DeleteOutcome{ID: id, Err: errors.Wrap(err, "submitting delete")}
			wg.Done()
		}
	}
	wg.Wait()

	report := DeleteReport{Outcomes: outcomes}
	t.applyDeletes(report.Succeeded())

	for _, o := range outcomes {
		if o.OK() {
			deleteTotal.WithLabelValues(t.endpoint, "ok").Inc()
			continue
		}
		deleteTotal.WithLabelValues(t.endpoint, "error").Inc()
		t.logger.Warn(fmt.Sprintf("table.DeleteSelected(%s): id %d", t.endpoint, o.ID), o.Err)
	}

	t.notify(report.Message(), report.Severity())
	return report, nil
}

func (t *Table) deleteOne(ctx context.Context, id int64) DeleteOutcome {
	req := Request{
		Method: http.MethodDelete,
		Path:   t.endpoint + "/" + strconv.FormatInt(id, 10),
	}
	resp, err := t.transport.Do(ctx, req)
	if err != nil {
		return DeleteOutcome{ID: id, Err: errors.Wrapf(err, "DELETE %s", req.Path)}
	}
	if !resp.OK() {
		return DeleteOutcome{
			ID:         id,
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("DELETE %s: unexpected status %d", req.Path, resp.StatusCode),
		}
	}
	return DeleteOutcome{ID: id, StatusCode: resp.StatusCode}
}

func (t *Table) applyDeletes(ids []int64) {
	if len(ids) == 0 {
		return
	}
	deleted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		deleted[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		if id, ok := row.ID(); ok {
			if _, gone := deleted[id]; gone {
				continue
			}
		}
		remaining = append(remaining, row)
	}
	t.rows = remaining
	for id := range deleted {
		delete(t.selected, id)
	}
}
