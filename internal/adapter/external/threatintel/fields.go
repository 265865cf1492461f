package threatintel

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Provider payloads are kept weakly typed: only a handful of fields are read
// and upstream schemas change without notice. Every accessor returns the
// zero value when the key is missing or holds an unexpected type.

func objectField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func listField(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func boolField(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// intField reads an integer, truncating fractions toward zero. Values
// outside the int32 range saturate at its bounds.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return saturate(float64(i))
		}
		if f, ok := parseFloat(string(v)); ok {
			return saturate(f)
		}
	case float64:
		return saturate(v)
	case int:
		return saturate(float64(v))
	case string:
		if f, ok := parseFloat(strings.TrimSpace(v)); ok {
			return saturate(f)
		}
	}
	return 0
}

// floatField reads a number without truncation
func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case json.Number:
		if f, ok := parseFloat(string(v)); ok {
			return f
		}
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, ok := parseFloat(strings.TrimSpace(v)); ok {
			return f
		}
	}
	return 0
}

// parseFloat accepts overflowing literals as infinities
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func saturate(f float64) int {
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
