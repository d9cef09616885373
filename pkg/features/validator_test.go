package features

import (
	"strings"
	"testing"
	"time"
)

func TestIsPlausibleOpenInterval(t *testing.T) {
	cases := []struct {
		param string
		value float64
		want  bool
	}{
		{ParamHeartRate, 0, false},
		{ParamHeartRate, 350, false},
		{ParamHeartRate, 0.1, true},
		{ParamHeartRate, 349.9, true},
		{ParamTemperature, 26, false},
		{ParamTemperature, 36.6, true},
		{ParamTemperature, 45, false},
		{ParamAnionGap, 5, false},
		{ParamAnionGap, 12, true},
		{ParamGCS, -100, true},
		{"unknown_param", 1e9, true},
	}
	for _, tc := range cases {
		if got := IsPlausible(tc.param, tc.value); got != tc.want {
			t.Errorf("IsPlausible(%s, %v) = %v, want %v", tc.param, tc.value, got, tc.want)
		}
	}
}

func TestCheckCoverageEmpty(t *testing.T) {
	ok, msg := CheckCoverage(nil, naiveAt(0), naiveAt(60))
	if ok || msg != "No measurements provided" {
		t.Fatalf("unexpected result %v %q", ok, msg)
	}
}

func TestCheckCoverageTimeNotElapsed(t *testing.T) {
	series := mustSeries(minimalCoverage())
	current := naiveAt(0).Add(47*time.Hour + 59*time.Minute)
	ok, msg := CheckCoverage(series, naiveAt(0), current)
	if ok {
		t.Fatal("expected coverage failure before 48h")
	}
	if !strings.HasPrefix(msg, "Insufficient time since admission: 48.0 hours") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCheckCoverageExactly48h(t *testing.T) {
	series := mustSeries(minimalCoverage())
	ok, msg := CheckCoverage(series, naiveAt(0), naiveAt(48))
	if !ok {
		t.Fatalf("expected success, got %q", msg)
	}
	want := "Valid: 48.0h since admission, 44.0h measurement coverage, 8 measurements in 48h window"
	if msg != want {
		t.Fatalf("got %q, want %q", msg, want)
	}
}

func TestCheckCoverageWindowIsInclusive(t *testing.T) {
	raw := minimalCoverage()
	raw = append(raw, reading(48, map[string]interface{}{"heart_rate": 85.0}))
	raw = append(raw, reading(48.5, map[string]interface{}{"heart_rate": 85.0}))
	ok, msg := CheckCoverage(mustSeries(raw), naiveAt(0), naiveAt(72))
	if !ok {
		t.Fatalf("expected success, got %q", msg)
	}
	if !strings.Contains(msg, "48.0h measurement coverage, 9 measurements") {
		t.Fatalf("expected the 48h reading inside the window, got %q", msg)
	}
}

func TestCheckCoverageNothingInWindow(t *testing.T) {
	raw := []map[string]interface{}{
		reading(50, map[string]interface{}{"heart_rate": 80.0}),
		reading(-1, map[string]interface{}{"heart_rate": 80.0}),
	}
	ok, msg := CheckCoverage(mustSeries(raw), naiveAt(0), naiveAt(60))
	if ok || msg != "No measurements within the 48-hour window after admission" {
		t.Fatalf("unexpected result %v %q", ok, msg)
	}
}

func TestCheckCoverageInsufficientVitals(t *testing.T) {
	raw := []map[string]interface{}{
		reading(0, map[string]interface{}{"heart_rate": 80.0}),
		reading(8, map[string]interface{}{"heart_rate": 90.0}),
		reading(16, map[string]interface{}{"systolic_bp": 120.0}),
		reading(24, map[string]interface{}{"heart_rate": 110.0}),
		reading(32, map[string]interface{}{"heart_rate": 120.0}),
		reading(40, map[string]interface{}{"bun": 20.0}),
		reading(44, map[string]interface{}{"gcs": 14.0}),
	}
	ok, msg := CheckCoverage(mustSeries(raw), naiveAt(0), naiveAt(48))
	if ok {
		t.Fatal("expected failure")
	}
	if msg != "Insufficient vital sign measurements: 5 (need ≥6)" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCheckCoverageInsufficientLabs(t *testing.T) {
	raw := minimalCoverage()[:7]
	ok, msg := CheckCoverage(mustSeries(raw), naiveAt(0), naiveAt(48))
	if ok {
		t.Fatal("expected failure")
	}
	if msg != "Insufficient lab measurements: 1 (need ≥2)" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCheckCoverageMarkerPresenceCountsWithNull(t *testing.T) {
	raw := []map[string]interface{}{
		reading(0, map[string]interface{}{"heart_rate": 80.0}),
		reading(8, map[string]interface{}{"heart_rate": 90.0}),
		reading(16, map[string]interface{}{"heart_rate": 100.0}),
		reading(24, map[string]interface{}{"heart_rate": 110.0}),
		reading(32, map[string]interface{}{"heart_rate": 120.0}),
		reading(40, map[string]interface{}{"systolic_bp": nil}),
		reading(44, map[string]interface{}{"lactate": 2.5}),
		reading(46, map[string]interface{}{"gcs": nil}),
	}
	ok, msg := CheckCoverage(mustSeries(raw), naiveAt(0), naiveAt(48))
	if !ok {
		t.Fatalf("marker keys with null values should still count, got %q", msg)
	}
}
