package features

import (
	"fmt"
	"sort"
	"strings"
)

// Record is a feature vector keyed by the closed Name set. A missing key means
// the feature is absent; zero is a legitimate clinical value.
type Record map[Name]float64

func (r Record) Get(n Name) (float64, bool) {
	v, ok := r[n]
	return v, ok
}

// Missing lists the expected names without a value, in model column order.
func (r Record) Missing() []Name {
	missing := make([]Name, 0)
	for _, n := range expectedNames {
		if _, ok := r[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dense returns the vector in model column order; ok is false when any feature is absent.
func (r Record) Dense() ([]float64, bool) {
	out := make([]float64, len(expectedNames))
	for i, n := range expectedNames {
		v, ok := r[n]
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// ToMap is the storage/wire form. Absent features are omitted.
func (r Record) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}

// ParseRecord converts a stored or submitted map. Unknown keys are reported
// together in one input error; null values mean absent.
func ParseRecord(raw map[string]interface{}) (Record, error) {
	rec := make(Record, len(raw))
	var unknown, invalid []string
	for key, value := range raw {
		name, ok := ParseName(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if value == nil {
			continue
		}
		v, ok := ToFloat(value)
		if !ok {
			invalid = append(invalid, key)
			continue
		}
		rec[name] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, inputErrorf("unknown feature names: %s", strings.Join(unknown, ", "))
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, inputErrorf("non-numeric values for features: %s", strings.Join(invalid, ", "))
	}
	return rec, nil
}

// NamesToStrings is a convenience for JSON and logging.
func NamesToStrings(names []Name) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

func (r Record) String() string {
	return fmt.Sprintf("Record(%d/%d features)", len(r), len(expectedNames))
}
