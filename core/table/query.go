package table

import (
	"sort"
	"strconv"
	"strings"

	"github.com/trezcool/syllabus/core"
)

// Query is the state a fetch is computed from.
type Query struct {
	Page         int
	PageSize     int
	SearchParams map[string]string
	StaticFilter map[string]string
	Trigger      string
}

// Params returns the search params overlaid with the static filter.
func (q Query) Params() map[string]string {
	params := make(map[string]string, len(q.SearchParams)+len(q.StaticFilter))
	for k, v := range q.SearchParams {
		params[k] = v
	}
	for k, v := range q.StaticFilter {
		params[k] = v
	}
	return params
}

// IsBlank reports whether every search and filter value is blank.
func (q Query) IsBlank() bool {
	for _, v := range q.Params() {
		if !core.IsBlank(v) {
			return false
		}
	}
	return true
}

// Key renders the query canonically, prefixed with endpoint.
// Two queries share a key iff they would issue the same fetch.
func (q Query) Key(endpoint string) string {
	var sb strings.Builder
	sb.WriteString(endpoint)
	sb.WriteString("|page=")
	sb.WriteString(strconv.Itoa(q.Page))
	sb.WriteString("|size=")
	sb.WriteString(strconv.Itoa(q.PageSize))
	writeMap(&sb, "|search", q.SearchParams)
	writeMap(&sb, "|filter", q.StaticFilter)
	sb.WriteString("|trigger=")
	sb.WriteString(strconv.Quote(q.Trigger))
	return sb.String()
}

func writeMap(sb *strings.Builder, prefix string, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString(prefix)
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(":")
		sb.WriteString(strconv.Quote(m[k]))
	}
	sb.WriteString("}")
}

func (q Query) clone() Query {
	q.SearchParams = copyParams(q.SearchParams)
	q.StaticFilter = copyParams(q.StaticFilter)
	return q
}

func copyParams(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
