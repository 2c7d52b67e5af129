// Package normalize resolves loosely-typed snapshot fields into typed values.
// None of these helpers fail: absent, null or wrongly-typed values yield the
// neutral default for the requested type.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is one decoded JSON object from the snapshot.
type Record map[string]interface{}

// SectionStatus describes how a top-level section was found in the snapshot
type SectionStatus string

const (
	SectionMissing   SectionStatus = "missing"
	SectionPresent   SectionStatus = "present"
	SectionMalformed SectionStatus = "malformed"
)

// Membership returns the group-membership list stored under field.
// A missing, null or non-sequence value is an empty list. Non-string entries are
// dropped and distinguished-name entries are reduced to the group name.
func Membership(record Record, field string) []string {
	var items []interface{}
	switch v := record[field].(type) {
	case []interface{}:
		items = v
	case []string:
		items = make([]interface{}, 0, len(v))
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return []string{}
	}

	groups := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			continue
		}
		groups = append(groups, GroupName(name))
	}
	return groups
}

// Strings returns the string list stored under field. A bare string is lifted
// into a one-element list, since collectors serialize single-item arrays as scalars.
func Strings(record Record, field string) []string {
	switch v := record[field].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}
		}
		return []string{v}
	case []string:
		return v
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return []string{}
	}
}

// String returns the string stored under field, or "" when absent or not a scalar.
func String(record Record, field string) string {
	switch v := record[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// StringOr returns String(record, field), or def when that is empty.
func StringOr(record Record, field, def string) string {
	if s := String(record, field); s != "" {
		return s
	}
	return def
}

// Bool returns the boolean stored under field. Strings are parsed with
// strconv.ParseBool and numbers are true when non-zero; anything else is false.
func Bool(record Record, field string) bool {
	switch v := record[field].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

// Number returns the numeric value stored under field, or 0.
func Number(record Record, field string) float64 {
	var f float64
	switch v := record[field].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Int returns Number truncated toward zero, saturated to the int range.
func Int(record Record, field string) int {
	f := Number(record, field)
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	default:
		return int(f)
	}
}

// Object returns the nested object stored under field.
func Object(record Record, field string) (Record, bool) {
	if m, ok := record[field].(map[string]interface{}); ok {
		return Record(m), true
	}
	return nil, false
}

// Records returns the objects of the list stored under field. Entries that are not
// objects are skipped and counted. A value that is not a list yields SectionMalformed.
func Records(record Record, field string) ([]Record, int, SectionStatus) {
	raw, exists := record[field]
	if !exists || raw == nil {
		return []Record{}, 0, SectionMissing
	}
	items, ok := raw.([]interface{})
	if !ok {
		return []Record{}, 0, SectionMalformed
	}

	records := make([]Record, 0, len(items))
	skipped := 0
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			skipped++
			continue
		}
		records = append(records, Record(m))
	}
	return records, skipped, SectionPresent
}

// FirstPresent returns the first of fields that exists on record, or "" when none do.
func FirstPresent(record Record, fields ...string) string {
	for _, f := range fields {
		if v, ok := record[f]; ok && v != nil {
			return f
		}
	}
	return ""
}
