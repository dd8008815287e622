package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDKey is the row field holding the unique numeric identifier.
const IDKey = "id"

// Row maps column keys to the JSON values returned by the backend.
// Numbers are kept as json.Number.
type Row map[string]interface{}

// ID returns the row identifier and whether the row has a usable one.
func (r Row) ID() (int64, bool) {
	switch v := r[IDKey].(type) {
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

// Text renders the value under key for display; missing and null values render empty.
func (r Row) Text(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func (r Row) matches(key, value string) bool {
	return strings.Contains(strings.ToLower(r.Text(key)), strings.ToLower(strings.TrimSpace(value)))
}
