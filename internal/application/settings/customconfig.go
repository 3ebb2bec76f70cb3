package settings

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/shared/types"
)

// Custom config value formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatNumber = "number"
	FormatBool   = "bool"
	FormatCSV    = "csv"
)

// mergeCustomConfig overlays the configured entries on the report defaults.
// Order follows the defaults, new keys are appended.
func mergeCustomConfig(defaults, configured []entity.CustomConfigEntry) []entity.CustomConfigEntry {
	merged := make([]entity.CustomConfigEntry, 0, len(defaults)+len(configured))
	index := map[string]int{}
	for _, e := range append(append([]entity.CustomConfigEntry{}, defaults...), configured...) {
		if i, ok := index[e.Key]; ok {
			merged[i] = e
			continue
		}
		index[e.Key] = len(merged)
		merged = append(merged, e)
	}
	return merged
}

// normalizeCustomConfig converts entries into typed values. CSV entries
// become lookup tables and are returned separately.
func normalizeCustomConfig(entries []entity.CustomConfigEntry) (map[string]any, map[string]entity.LookupTable, error) {
	values := make(map[string]any, len(entries))
	lookups := map[string]entity.LookupTable{}

	for _, e := range entries {
		field := "customConfig." + e.Key
		switch e.Format {
		case FormatJSON:
			v, err := canonicalJSON(e.Value)
			if err != nil {
				return nil, nil, &types.ConfigLogicError{Field: field, Reason: "invalid json value", Err: err}
			}
			values[e.Key] = v

		case FormatCSV:
			table, err := parseLookup(fmt.Sprint(lookupSource(e.Value)))
			if err != nil {
				return nil, nil, &types.ConfigLogicError{Field: field, Reason: "invalid csv value", Err: err}
			}
			lookups[e.Key] = table

		case FormatNumber:
			n, err := toNumber(e.Value)
			if err != nil {
				return nil, nil, &types.ConfigLogicError{Field: field, Reason: "not a number", Err: err}
			}
			values[e.Key] = n

		case FormatBool:
			b, err := toBool(e.Value)
			if err != nil {
				return nil, nil, &types.ConfigLogicError{Field: field, Reason: "not a boolean", Err: err}
			}
			values[e.Key] = b

		default:
			values[e.Key] = e.Value
		}
	}
	return values, lookups, nil
}

// canonicalJSON parses strings and round-trips anything else so that the
// value always has the shape produced by encoding/json.
func canonicalJSON(value any) (any, error) {
	raw, ok := value.(string)
	if !ok {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		raw = string(data)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func lookupSource(value any) any {
	if value == nil {
		return ""
	}
	return value
}

// parseLookup reads CSV rows into a table keyed by the first column.
func parseLookup(data string) (entity.LookupTable, error) {
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	table := entity.LookupTable{}
	for _, row := range records {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if _, ok := table[row[0]]; ok {
			continue
		}
		table[row[0]] = row[1:]
	}
	return table, nil
}

func toNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("unsupported value %v", value)
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	return false, fmt.Errorf("unsupported value %v", value)
}
