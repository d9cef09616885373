package features

import "fmt"

const (
	minVitalReadings = 6
	minLabReadings   = 2
)

var (
	vitalMarkers = []string{ParamHeartRate, ParamSystolicBP}
	labMarkers   = []string{ParamGCS, ParamLactate, ParamBUN}
)

// IsPlausible accepts any value for parameters without a registered range.
func IsPlausible(param string, value float64) bool {
	spec, ok := specsByParam[param]
	if !ok || spec.Plausible == nil {
		return true
	}
	return spec.Plausible.Contains(value)
}

// CheckCoverage decides whether the series is dense enough over the first 48h
// after admission. The caller guarantees current is after admission and that
// series timestamps are comparable with admission.
func CheckCoverage(series Series, admission, current Timestamp) (bool, string) {
	if len(series) == 0 {
		return false, "No measurements provided"
	}

	elapsed := current.Sub(admission).Hours()
	if current.Sub(admission) < WindowLength {
		return false, fmt.Sprintf("Insufficient time since admission: %.1f hours (need ≥48 hours)", elapsed)
	}

	inWindow := series.InWindow(NewWindow(admission))
	if len(inWindow) == 0 {
		return false, "No measurements within the 48-hour window after admission"
	}

	first, last := inWindow[0].Timestamp, inWindow[0].Timestamp
	vitals, labs := 0, 0
	for _, m := range inWindow {
		if m.Timestamp.Before(first.Time) {
			first = m.Timestamp
		}
		if m.Timestamp.After(last.Time) {
			last = m.Timestamp
		}
		if hasAny(m, vitalMarkers) {
			vitals++
		}
		if hasAny(m, labMarkers) {
			labs++
		}
	}

	if vitals < minVitalReadings {
		return false, fmt.Sprintf("Insufficient vital sign measurements: %d (need ≥%d)", vitals, minVitalReadings)
	}
	if labs < minLabReadings {
		return false, fmt.Sprintf("Insufficient lab measurements: %d (need ≥%d)", labs, minLabReadings)
	}

	coverage := last.Sub(first).Hours()
	return true, fmt.Sprintf(
		"Valid: %.1fh since admission, %.1fh measurement coverage, %d measurements in 48h window",
		elapsed, coverage, len(inWindow),
	)
}

func hasAny(m Measurement, keys []string) bool {
	for _, k := range keys {
		if m.Has(k) {
			return true
		}
	}
	return false
}
