package table

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core"
)

var ErrMalformedResponse = errors.New("unexpected response shape")

// Result is one page of rows.
// Page is the page actually served; it differs from the requested one when that was out of range.
type Result struct {
	Rows       []Row
	Page       int
	TotalPages int
}

type (
	pageableData struct {
		TotalPage int `json:"totalPage"`
	}

	// envelope accepts both backend shapes:
	// paginated {listContent, pageableData{totalPage}} and flat {result}.
	envelope struct {
		ListContent  *[]Row        `json:"listContent"`
		PageableData *pageableData `json:"pageableData"`
		Result       *[]Row        `json:"result"`
	}
)

// parseResult decodes body into the page described by q.
// A flat response is filtered on filterKeys and paginated locally.
func parseResult(body []byte, q Query, filterKeys []string) (Result, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var env envelope
	if err := dec.Decode(&env); err != nil {
		return Result{}, errors.Wrap(err, "decoding response")
	}

	switch {
	case env.ListContent != nil || env.PageableData != nil:
		res := Result{Page: q.Page, TotalPages: 1}
		if env.ListContent != nil {
			res.Rows = *env.ListContent
		}
		if env.PageableData != nil && env.PageableData.TotalPage > 1 {
			res.TotalPages = env.PageableData.TotalPage
		}
		if res.Rows == nil {
			res.Rows = []Row{}
		}
		return res, nil
	case env.Result != nil:
		return paginate(filterRows(*env.Result, q.Params(), filterKeys), q.Page, q.PageSize), nil
	default:
		return Result{}, ErrMalformedResponse
	}
}

// filterRows keeps rows matching every non-blank param.
// Only params named in filterKeys are applied, unless filterKeys is empty.
func filterRows(rows []Row, params map[string]string, filterKeys []string) []Row {
	active := make(map[string]string, len(params))
	for k, v := range params {
		if core.IsBlank(v) || (len(filterKeys) > 0 && !contains(filterKeys, k)) {
			continue
		}
		active[k] = v
	}
	if len(active) == 0 {
		return rows
	}

	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		keep := true
		for k, v := range active {
			if !row.matches(k, v) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func paginate(rows []Row, page, size int) Result {
	if size < 1 {
		size = len(rows)
	}
	total := 1
	if size > 0 && len(rows) > size {
		total = (len(rows) + size - 1) / size
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * size
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	if start > end {
		start = end
	}
	return Result{Rows: append([]Row{}, rows[start:end]...), Page: page, TotalPages: total}
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
