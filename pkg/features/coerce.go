package features

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToFloat is the single numeric coercion used for measurement values and
// passthrough fields. It reports false instead of failing so every discard is
// an explicit branch at the call site. Booleans and non-finite numbers are
// not treated as clinical values.
func ToFloat(value interface{}) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
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

// isNumber is stricter than ToFloat: strings do not count. Used for fields
// the schema declares numeric.
func isNumber(value interface{}) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, json.Number:
		_, ok := ToFloat(value)
		return ok
	default:
		return false
	}
}
