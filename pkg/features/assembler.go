package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
)

const (
	minComorbidityScore = -19
	maxComorbidityScore = 89
)

// PatientData is the assembly input for one encounter.
type PatientData struct {
	PatientID              interface{}              `json:"patient_id"`
	AdmissionTime          *string                  `json:"admission_time"`
	CurrentTime            *string                  `json:"current_time"`
	Age                    interface{}              `json:"age"`
	AgeAdjComorbidityScore interface{}              `json:"age_adj_comorbidity_score"`
	Measurements           []map[string]interface{} `json:"measurements"`
}

// DecodePatientData parses a JSON payload. Numbers are kept as json.Number so
// integers survive unchanged.
func DecodePatientData(payload []byte) (PatientData, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return PatientData{}, inputErrorf("payload must be a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var p PatientData
	if err := dec.Decode(&p); err != nil {
		return PatientData{}, inputErrorf("malformed patient payload: %v", err)
	}
	return p, nil
}

// Result is the success/failure union returned by Assemble. On failure only
// the error fields and the echoed identifiers are set.
type Result struct {
	Success           bool        `json:"success"`
	Features          Record      `json:"features,omitempty"`
	ValidationMessage string      `json:"validation_message,omitempty"`
	MissingFeatures   []Name      `json:"missing_features"`
	ImputedFeatures   []Name      `json:"imputed_features"`
	TotalMeasurements int         `json:"total_measurements"`
	PatientID         interface{} `json:"patient_id"`

	Kind         Kind   `json:"kind,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
	Details      string `json:"details,omitempty"`
	Err          *Error `json:"-"`
}

type Assembler struct {
	reference ReferenceSource
}

// NewAssembler takes the reference provider used for imputation; nil disables
// imputation regardless of the per-call switch.
func NewAssembler(reference ReferenceSource) *Assembler {
	return &Assembler{reference: reference}
}

// Assemble never panics and never returns a bare error: every failure is
// reported through Result.
func (a *Assembler) Assemble(p PatientData, impute bool) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().WithField("panic", r).Error("feature assembly panicked")
			result = failed(p, newError(KindInternal, fmt.Sprint(r), "Error during feature engineering"))
		}
	}()

	record, message, ferr := a.build(p)
	if ferr != nil {
		logger.WithFields(logrus.Fields{
			"patient_id": p.PatientID,
			"kind":       ferr.Kind,
			"details":    ferr.Details,
		}).Info("feature assembly rejected")
		return failed(p, ferr)
	}

	missing := record.Missing()
	imputed := make([]Name, 0)
	if impute && a.reference != nil && len(missing) > 0 {
		if ds, ok := a.reference.Dataset(); ok {
			imputed = Impute(record, missing, ds)
		}
	}

	result = Result{
		Success:           true,
		Features:          record,
		ValidationMessage: message,
		MissingFeatures:   record.Missing(),
		ImputedFeatures:   imputed,
		TotalMeasurements: len(p.Measurements),
		PatientID:         p.PatientID,
	}

	logger.WithFields(logrus.Fields{
		"patient_id": p.PatientID,
		"features":   len(record),
		"missing":    len(result.MissingFeatures),
		"imputed":    len(imputed),
	}).Debug("feature assembly complete")
	return result
}

func (a *Assembler) build(p PatientData) (Record, string, *Error) {
	if p.AdmissionTime == nil {
		return nil, "", newError(KindInput, "Missing admission_time field", "admission_time must be provided")
	}
	admission, err := ParseTimestamp(*p.AdmissionTime)
	if err != nil {
		return nil, "", asError(err)
	}

	if p.CurrentTime == nil || *p.CurrentTime == "" {
		return nil, "", newError(KindInput, "Missing current_time field",
			"current_time must be provided to validate 48-hour requirement")
	}
	current, err := ParseTimestamp(*p.CurrentTime)
	if err != nil {
		return nil, "", asError(err)
	}
	if err := admission.Comparable(current); err != nil {
		return nil, "", asError(err)
	}
	if !current.After(admission.Time) {
		return nil, "", temporalErrorf("current_time (%s) must be after admission_time (%s)", current, admission)
	}

	series, err := ParseSeries(p.Measurements, admission)
	if err != nil {
		return nil, "", asError(err)
	}
	ok, message := CheckCoverage(series, admission, current)
	if !ok {
		return nil, "", newError(KindCoverage, "Insufficient data coverage", message)
	}

	record := make(Record, len(expectedNames))

	if p.Age != nil {
		age, ok := ToFloat(p.Age)
		if !ok {
			return nil, "", newError(KindValidation, "Invalid age", fmt.Sprintf("age must be numeric, got: %v", p.Age))
		}
		record[Age] = age
	}

	if p.AgeAdjComorbidityScore != nil {
		score, ok := ToFloat(p.AgeAdjComorbidityScore)
		if !isNumber(p.AgeAdjComorbidityScore) || !ok || score < minComorbidityScore || score > maxComorbidityScore {
			return nil, "", newError(KindValidation, "Invalid age_adj_comorbidity_score",
				fmt.Sprintf("Score must be between %d and %d, got: %v", minComorbidityScore, maxComorbidityScore, p.AgeAdjComorbidityScore))
		}
		record[AgeAdjComorbidityScore] = math.Trunc(score)
	}

	window := NewWindow(admission)
	for _, spec := range parameterSpecs {
		summary := Summarize(Extract(series, spec.Param, window))
		for _, st := range spec.Stats {
			if v, ok := summary.Value(st); ok {
				record[spec.FeatureName(st)] = v
			}
		}
	}

	return record, message, nil
}

func failed(p PatientData, ferr *Error) Result {
	return Result{
		Success:           false,
		MissingFeatures:   []Name{},
		ImputedFeatures:   []Name{},
		TotalMeasurements: len(p.Measurements),
		PatientID:         p.PatientID,
		Kind:              ferr.Kind,
		ErrorMessage:      ferr.Message,
		Details:           ferr.Details,
		Err:               ferr,
	}
}

func asError(err error) *Error {
	if fe, ok := err.(*Error); ok {
		return fe
	}
	return newError(KindInternal, err.Error(), "Error during feature engineering")
}
