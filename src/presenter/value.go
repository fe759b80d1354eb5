package presenter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Value is a loosely typed JSON value. The metadata service emits numbers,
// strings, arrays and nulls for the same field depending on the capture
// device, so decoding never fails on a type mismatch.
type Value struct {
	raw any
	set bool
}

// V wraps a Go value (string, float64, int, bool, []any, map[string]any).
func V(x any) Value {
	switch n := x.(type) {
	case int:
		x = float64(n)
	case int64:
		x = float64(n)
	case []string:
		items := make([]any, len(n))
		for i, s := range n {
			items[i] = s
		}
		x = items
	}
	return Value{raw: x, set: true}
}

// UnmarshalJSON keeps whatever JSON value arrives; null marks the field set
// but falsy.
func (v *Value) UnmarshalJSON(b []byte) error {
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	v.raw = x
	v.set = true
	return nil
}

// MarshalJSON writes the raw value back unchanged.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// Present reports whether the field was sent with a non-null value.
func (v Value) Present() bool {
	return v.set && v.raw != nil
}

// Text returns the display form of a truthy value. Absent, null, "", 0,
// false, empty arrays and objects are not truthy.
func (v Value) Text() (string, bool) {
	if !v.Present() {
		return "", false
	}
	s := textOf(v.raw)
	return s, s != ""
}

// Int returns an integer code carried either as a JSON number or a numeric
// string.
func (v Value) Int() (int, bool) {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Float parses numbers and numeric strings. NaN and infinities are rejected.
func (v Value) Float() (float64, bool) {
	if !v.Present() {
		return 0, false
	}
	var f float64
	switch x := v.raw.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Map returns the value as a JSON object.
func (v Value) Map() (map[string]any, bool) {
	m, ok := v.raw.(map[string]any)
	return m, ok && len(m) > 0
}

func textOf(x any) string {
	switch t := x.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return formatNumber(t)
	case bool:
		if t {
			return "true"
		}
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			switch e := item.(type) {
			case string:
				parts = append(parts, e)
			case float64:
				parts = append(parts, formatNumber(e))
			case bool:
				parts = append(parts, strconv.FormatBool(e))
			case nil:
				parts = append(parts, "")
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
