package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Query maps Costlocker resource names to their query parameters, e.g.
// {"Simple_Projects": {"state": "running"}}.
type Query map[string]map[string]any

// Response maps resource names to the returned rows.
type Response map[string]Rows

// Row is one raw API row.
type Row map[string]any

// Rows is a list of raw API rows.
type Rows []Row

// Company identifies a tenant. The zero value is the null-company sentinel.
type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// IsNull reports whether the company is the null-company sentinel.
func (c Company) IsNull() bool {
	return c.ID == 0 && c.Name == ""
}

// Clone returns a copy of the query that can be modified safely.
func (q Query) Clone() Query {
	out := make(Query, len(q))
	for resource, params := range q {
		cp := make(map[string]any, len(params))
		for k, v := range params {
			cp[k] = v
		}
		out[resource] = cp
	}
	return out
}

// Map groups rows by the string value of key. Keys are not unique, rows
// sharing a key accumulate in order.
func (r Rows) Map(key string) map[string]Rows {
	out := make(map[string]Rows)
	for _, row := range r {
		k := row.String(key)
		out[k] = append(out[k], row)
	}
	return out
}

// Sum adds up the numeric field of all rows.
func (r Rows) Sum(field string) float64 {
	var total float64
	for _, row := range r {
		total += row.Float(field)
	}
	return total
}

// Get returns the value at a dotted path, e.g. "client.name".
func (r Row) Get(path string) any {
	var current any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		switch m := current.(type) {
		case map[string]any:
			current = m[part]
		case Row:
			current = m[part]
		default:
			return nil
		}
	}
	return current
}

// String returns the value at path formatted as a string.
func (r Row) String(path string) string {
	switch v := r.Get(path).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the value at path as a number, 0 when it is not numeric.
func (r Row) Float(path string) float64 {
	switch v := r.Get(path).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

// ID returns the value at path as an integer id.
func (r Row) ID(path string) (int64, bool) {
	return ToID(r.Get(path))
}

// ToID converts JSON decoded ids (numbers or numeric strings) to int64.
func ToID(v any) (int64, bool) {
	switch id := v.(type) {
	case int:
		return int64(id), true
	case int64:
		return id, true
	case float64:
		return int64(id), id == float64(int64(id))
	case json.Number:
		n, err := id.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	}
	return 0, false
}
