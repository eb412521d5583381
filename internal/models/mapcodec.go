package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Helpers shared by the record types for the ToMap/FromMap boundary.
// Records cross to the persistence and HTTP layers as plain maps, so
// numeric and timestamp values may arrive in whatever form a JSON
// decoder produced.

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// parseTimestamp accepts ISO-8601 with an explicit zone ("Z" or an
// offset) or without one, in which case UTC is assumed.
func parseTimestamp(key, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: field %q is not a valid ISO-8601 timestamp: %q", ErrInvalidFormat, key, value)
}

func timestampField(data map[string]any, key string) (time.Time, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return time.Time{}, nil
	}

	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTimestamp(key, v)
	default:
		return time.Time{}, fmt.Errorf("%w: field %q must be an ISO-8601 string", ErrInvalidFormat, key)
	}
}

func stringField(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", nil
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string", ErrInvalidFormat, key)
	}
	return s, nil
}

// toFloat coerces the numeric types a JSON decoder can produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyScores(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
