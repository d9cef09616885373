package features

import "time"

// WindowLength is the fixed observation period after admission.
const WindowLength = 48 * time.Hour

const timestampKey = "timestamp"

// Measurement is one multi-channel reading: a timestamp plus any number of
// parameter values keyed by raw parameter name.
type Measurement struct {
	Timestamp Timestamp
	Values    map[string]interface{}
}

// Has reports whether the reading carries the key at all, even with a null value.
func (m Measurement) Has(param string) bool {
	_, ok := m.Values[param]
	return ok
}

func (m Measurement) Value(param string) (interface{}, bool) {
	v, ok := m.Values[param]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Series is in arrival order, which need not be chronological.
type Series []Measurement

// ParseSeries converts raw JSON readings. Every timestamp must be present,
// parseable and of the same naive/aware kind as reference.
func ParseSeries(raw []map[string]interface{}, reference Timestamp) (Series, error) {
	series := make(Series, 0, len(raw))
	for i, item := range raw {
		if item == nil {
			return nil, inputErrorf("measurement %d is not an object", i)
		}
		rawTS, ok := item[timestampKey]
		if !ok || rawTS == nil {
			return nil, inputErrorf("measurement %d is missing timestamp", i)
		}
		tsString, ok := rawTS.(string)
		if !ok {
			return nil, inputErrorf("measurement %d timestamp must be a string", i)
		}
		ts, err := ParseTimestamp(tsString)
		if err != nil {
			return nil, err
		}
		if err := reference.Comparable(ts); err != nil {
			return nil, err
		}
		values := make(map[string]interface{}, len(item))
		for k, v := range item {
			if k == timestampKey {
				continue
			}
			values[k] = v
		}
		series = append(series, Measurement{Timestamp: ts, Values: values})
	}
	return series, nil
}

// Window is the closed interval [Start, End].
type Window struct {
	Start Timestamp
	End   Timestamp
}

func NewWindow(admission Timestamp) Window {
	return Window{Start: admission, End: admission.Add(WindowLength)}
}

func (w Window) Contains(ts Timestamp) bool {
	return !ts.Time.Before(w.Start.Time) && !ts.Time.After(w.End.Time)
}

// InWindow returns the readings inside w, preserving arrival order.
func (s Series) InWindow(w Window) Series {
	out := make(Series, 0, len(s))
	for _, m := range s {
		if w.Contains(m.Timestamp) {
			out = append(out, m)
		}
	}
	return out
}
