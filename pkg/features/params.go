package features

import "fmt"

type Stat int

const (
	StatMin Stat = iota
	StatMax
	StatMean
	StatStd
)

func (s Stat) String() string {
	switch s {
	case StatMin:
		return "min"
	case StatMax:
		return "max"
	case StatMean:
		return "mean"
	case StatStd:
		return "std"
	default:
		return fmt.Sprintf("stat(%d)", int(s))
	}
}

// PlausibleRange is an open interval; readings on or outside a bound are discarded.
type PlausibleRange struct {
	MinExclusive float64
	MaxExclusive float64
}

func (r PlausibleRange) Contains(v float64) bool {
	return r.MinExclusive < v && v < r.MaxExclusive
}

// ParameterSpec ties a raw measurement key to the features derived from it.
// Stats lists the only statistics the model consumes for this parameter.
type ParameterSpec struct {
	Param     string
	Prefix    string
	Plausible *PlausibleRange
	Stats     []Stat
}

func (p ParameterSpec) FeatureName(s Stat) Name {
	return Name(p.Prefix + "_" + s.String())
}

// Raw measurement keys.
const (
	ParamGCS             = "gcs"
	ParamLactate         = "lactate"
	ParamBUN             = "bun"
	ParamBilirubin       = "bilirubin"
	ParamAlbumin         = "albumin"
	ParamAlkPhos         = "alk_phos"
	ParamPT              = "pt"
	ParamINR             = "inr"
	ParamPhosphate       = "phosphate"
	ParamPaO2            = "pao2"
	ParamAPTT            = "aptt"
	ParamAnionGap        = "anion_gap"
	ParamSystolicBP      = "systolic_bp"
	ParamDiastolicBP     = "diastolic_bp"
	ParamMeanBP          = "mean_bp"
	ParamRespiratoryRate = "respiratory_rate"
	ParamTemperature     = "temperature"
	ParamHeartRate       = "heart_rate"
	ParamRDW             = "rdw"
)

func plausible(min, max float64) *PlausibleRange {
	return &PlausibleRange{MinExclusive: min, MaxExclusive: max}
}

// parameterSpecs is versioned with the model artifact. Changing a Stats entry
// changes the feature schema.
var parameterSpecs = []ParameterSpec{
	{Param: ParamGCS, Prefix: "GCS", Stats: []Stat{StatMax, StatMean}},
	{Param: ParamLactate, Prefix: "Lactate", Stats: []Stat{StatMin, StatMax, StatMean}},
	{Param: ParamBUN, Prefix: "BUN", Stats: []Stat{StatMin, StatMax, StatMean}},
	{Param: ParamBilirubin, Prefix: "Bilirubin", Stats: []Stat{StatMax, StatMean}},
	{Param: ParamAlbumin, Prefix: "Albumin", Stats: []Stat{StatMin, StatMax, StatMean}},
	{Param: ParamAlkPhos, Prefix: "AlkPhos", Stats: []Stat{StatMin, StatMax, StatMean}},
	{Param: ParamPT, Prefix: "PT", Stats: []Stat{StatMean, StatMin}},
	{Param: ParamINR, Prefix: "INR", Stats: []Stat{StatMean, StatMin}},
	{Param: ParamPhosphate, Prefix: "Phosphate", Stats: []Stat{StatMean, StatMax}},
	{Param: ParamPaO2, Prefix: "PaO2", Stats: []Stat{StatMean, StatMax}},
	{Param: ParamAPTT, Prefix: "aPTT", Stats: []Stat{StatMean, StatMin}},
	{Param: ParamAnionGap, Prefix: "AG", Plausible: plausible(5, 50), Stats: []Stat{StatMin, StatMax, StatMean, StatStd}},
	{Param: ParamSystolicBP, Prefix: "SYSBP", Plausible: plausible(0, 375), Stats: []Stat{StatMin, StatMean, StatStd}},
	{Param: ParamDiastolicBP, Prefix: "DIASBP", Plausible: plausible(0, 375), Stats: []Stat{StatMin, StatMean}},
	{Param: ParamMeanBP, Prefix: "MEANBP", Plausible: plausible(0, 300), Stats: []Stat{StatMin, StatMean}},
	{Param: ParamRespiratoryRate, Prefix: "RR", Plausible: plausible(0, 300), Stats: []Stat{StatMin, StatMax, StatMean}},
	{Param: ParamTemperature, Prefix: "TEMP", Plausible: plausible(26, 45), Stats: []Stat{StatMin, StatStd}},
	{Param: ParamHeartRate, Prefix: "HR", Plausible: plausible(0, 350), Stats: []Stat{StatMean, StatMax, StatStd}},
	{Param: ParamRDW, Prefix: "RDW", Stats: []Stat{StatMin, StatMax, StatMean, StatStd}},
}

var specsByParam = func() map[string]ParameterSpec {
	m := make(map[string]ParameterSpec, len(parameterSpecs))
	for _, s := range parameterSpecs {
		m[s.Param] = s
	}
	return m
}()

// ParameterSpecs returns the 19 recognised measurement parameters.
func ParameterSpecs() []ParameterSpec {
	out := make([]ParameterSpec, len(parameterSpecs))
	copy(out, parameterSpecs)
	return out
}

func LookupParameter(param string) (ParameterSpec, bool) {
	s, ok := specsByParam[param]
	return s, ok
}
