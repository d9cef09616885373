package features

// Extract collects the usable readings of param inside w. Readings without the
// parameter, with a null or non-numeric value, or outside the plausibility
// range are dropped.
func Extract(series Series, param string, w Window) []float64 {
	values := make([]float64, 0)
	for _, m := range series {
		if !w.Contains(m.Timestamp) {
			continue
		}
		raw, ok := m.Value(param)
		if !ok {
			continue
		}
		v, ok := ToFloat(raw)
		if !ok {
			continue
		}
		if !IsPlausible(param, v) {
			continue
		}
		values = append(values, v)
	}
	return values
}
