// Package coerce holds the loose value conversions shared by the conditional
// evaluator, the field handlers and the orchestrators.
package coerce

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Truthy follows the usual dynamic-language rules: nil, false, zero, blank
// strings and empty collections are false.
func Truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Bool converts value to a boolean. Strings accepted by strconv.ParseBool
// ("true", "0", "F", ...) are parsed, other strings fall back to Truthy.
func Bool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err == nil {
			return parsed
		}
		return strings.TrimSpace(v) != ""
	default:
		return Truthy(value)
	}
}

// Number reports value as a float64. The second result is false when value is
// nil, a non-numeric string or a non-numeric type.
func Number(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, finite(v)
	case float32:
		return float64(v), finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsNumeric reports whether value holds a Go numeric type (strings excluded).
func IsNumeric(value any) bool {
	switch value.(type) {
	case float64, float32, int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		return true
	}
	return false
}

// String renders value for comparisons and form controls. Whole floats are
// printed without a fractional part.
func String(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(value)
	}
}

// Slice returns the elements of value when it is a slice or array.
func Slice(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	if v, ok := value.([]any); ok {
		return v, true
	}
	if v, ok := value.([]string); ok {
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Map returns value as a map[string]any when it is any string-keyed map.
func Map(value any) (map[string]any, bool) {
	if value == nil {
		return nil, false
	}
	if v, ok := value.(map[string]any); ok {
		return v, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Empty reports nil, blank strings, empty slices and empty maps. Zero and
// false are values, not emptiness.
func Empty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	if items, ok := Slice(value); ok {
		return len(items) == 0
	}
	if m, ok := Map(value); ok {
		return len(m) == 0
	}
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return true
	}
	return false
}
