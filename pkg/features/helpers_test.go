package features

import (
	"time"
)

var admissionBase = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func isoAt(hours float64) string {
	return admissionBase.Add(time.Duration(hours * float64(time.Hour))).Format("2006-01-02T15:04:05")
}

func naiveAt(hours float64) Timestamp {
	return Timestamp{Time: admissionBase.Add(time.Duration(hours * float64(time.Hour))), Naive: true}
}

func strPtr(s string) *string {
	return &s
}

func reading(hours float64, values map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"timestamp": isoAt(hours)}
	for k, v := range values {
		out[k] = v
	}
	return out
}

func mustSeries(raw []map[string]interface{}) Series {
	s, err := ParseSeries(raw, naiveAt(0))
	if err != nil {
		panic(err)
	}
	return s
}

// minimalCoverage is six heart-rate readings and two lactate readings spread
// over the window.
func minimalCoverage() []map[string]interface{} {
	return []map[string]interface{}{
		reading(0, map[string]interface{}{"heart_rate": 80.0}),
		reading(4, map[string]interface{}{"lactate": 1.5}),
		reading(8, map[string]interface{}{"heart_rate": 90.0}),
		reading(16, map[string]interface{}{"heart_rate": 100.0}),
		reading(24, map[string]interface{}{"heart_rate": 110.0}),
		reading(32, map[string]interface{}{"heart_rate": 120.0}),
		reading(40, map[string]interface{}{"heart_rate": 130.0}),
		reading(44, map[string]interface{}{"lactate": 2.5}),
	}
}

type fakeDataset map[Name][]float64

func (f fakeDataset) Column(n Name) ([]float64, bool) {
	c, ok := f[n]
	return c, ok
}

type fakeSource struct {
	ds    ReferenceDataset
	panic bool
}

func (f fakeSource) Dataset() (ReferenceDataset, bool) {
	if f.panic {
		panic("reference store corrupted")
	}
	return f.ds, f.ds != nil
}
