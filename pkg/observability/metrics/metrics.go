package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	assembliesSucceeded atomic.Int64
	assembliesFailed    atomic.Int64
	featuresImputed     atomic.Int64
	featuresMissing     atomic.Int64
	eventsDeadLettered  atomic.Int64
	assessmentsLow      atomic.Int64
	assessmentsMedium   atomic.Int64
	assessmentsHigh     atomic.Int64

	failuresByKind = map[string]*atomic.Int64{
		"input_error":      new(atomic.Int64),
		"temporal_error":   new(atomic.Int64),
		"coverage_error":   new(atomic.Int64),
		"validation_error": new(atomic.Int64),
		"internal_error":   new(atomic.Int64),
	}
)

// ObserveAssembly records one feature assembly outcome. kind is empty on success.
func ObserveAssembly(success bool, kind string, missing, imputed int) {
	if !success {
		assembliesFailed.Add(1)
		if c, ok := failuresByKind[kind]; ok {
			c.Add(1)
		}
		return
	}
	assembliesSucceeded.Add(1)
	featuresMissing.Add(int64(missing))
	featuresImputed.Add(int64(imputed))
}

func ObserveDeadLetter() {
	eventsDeadLettered.Add(1)
}

func ObserveAssessment(band string) {
	switch band {
	case "LOW":
		assessmentsLow.Add(1)
	case "MEDIUM":
		assessmentsMedium.Add(1)
	case "HIGH":
		assessmentsHigh.Add(1)
	}
}

// Reset zeroes every counter. Tests only.
func Reset() {
	for _, c := range []*atomic.Int64{
		&assembliesSucceeded, &assembliesFailed, &featuresImputed, &featuresMissing,
		&eventsDeadLettered, &assessmentsLow, &assessmentsMedium, &assessmentsHigh,
	} {
		c.Store(0)
	}
	for _, c := range failuresByKind {
		c.Store(0)
	}
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP icu_risk_feature_assemblies_total Feature assemblies by outcome.\n")
	fmt.Fprintf(w, "# TYPE icu_risk_feature_assemblies_total counter\n")
	fmt.Fprintf(w, "icu_risk_feature_assemblies_total{outcome=\"success\"} %d\n", assembliesSucceeded.Load())
	fmt.Fprintf(w, "icu_risk_feature_assemblies_total{outcome=\"failure\"} %d\n", assembliesFailed.Load())

	fmt.Fprintf(w, "# HELP icu_risk_feature_assembly_failures_total Failed assemblies by error kind.\n")
	fmt.Fprintf(w, "# TYPE icu_risk_feature_assembly_failures_total counter\n")
	for _, kind := range []string{"input_error", "temporal_error", "coverage_error", "validation_error", "internal_error"} {
		fmt.Fprintf(w, "icu_risk_feature_assembly_failures_total{kind=%q} %d\n", kind, failuresByKind[kind].Load())
	}

	fmt.Fprintf(w, "# HELP icu_risk_features_imputed_total Features filled from the reference population.\n")
	fmt.Fprintf(w, "# TYPE icu_risk_features_imputed_total counter\n")
	fmt.Fprintf(w, "icu_risk_features_imputed_total %d\n", featuresImputed.Load())

	fmt.Fprintf(w, "# HELP icu_risk_features_missing_total Features still missing after assembly.\n")
	fmt.Fprintf(w, "# TYPE icu_risk_features_missing_total counter\n")
	fmt.Fprintf(w, "icu_risk_features_missing_total %d\n", featuresMissing.Load())

	fmt.Fprintf(w, "# HELP icu_risk_events_dead_lettered_total Measurement events routed to the DLQ.\n")
	fmt.Fprintf(w, "# TYPE icu_risk_events_dead_lettered_total counter\n")
	fmt.Fprintf(w, "icu_risk_events_dead_lettered_total %d\n", eventsDeadLettered.Load())

	fmt.Fprintf(w, "# HELP icu_risk_assessments_total Risk assessments by band.\n")
	fmt.Fprintf(w, "# TYPE icu_risk_assessments_total counter\n")
	fmt.Fprintf(w, "icu_risk_assessments_total{band=\"LOW\"} %d\n", assessmentsLow.Load())
	fmt.Fprintf(w, "icu_risk_assessments_total{band=\"MEDIUM\"} %d\n", assessmentsMedium.Load())
	fmt.Fprintf(w, "icu_risk_assessments_total{band=\"HIGH\"} %d\n", assessmentsHigh.Load())
}
