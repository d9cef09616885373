package drivers

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/synaptica-ai/icu-risk/pkg/features"
	"gopkg.in/yaml.v3"
)

// DefaultExtremeThreshold is the fraction of the normal interval's width past
// which a deviation is extreme rather than mild.
const DefaultExtremeThreshold = 0.50

// ClinicalRange is the closed interval considered normal for one feature.
type ClinicalRange struct {
	Low   float64 `yaml:"low" json:"low"`
	High  float64 `yaml:"high" json:"high"`
	Unit  string  `yaml:"unit" json:"unit"`
	Label string  `yaml:"label" json:"label"`
}

// Table is everything the ranker needs: ranges, the curated driver list and
// the severity thresholds.
type Table struct {
	Ranges     map[features.Name]ClinicalRange
	Features   []features.Name
	Default    float64
	Thresholds map[string]float64
}

// Threshold returns the per-feature override, matched exactly first and then
// case-insensitively, or the table default.
func (t Table) Threshold(name features.Name) float64 {
	if v, ok := t.Thresholds[string(name)]; ok {
		return v
	}
	for k, v := range t.Thresholds {
		if strings.EqualFold(k, string(name)) {
			return v
		}
	}
	if t.Default > 0 {
		return t.Default
	}
	return DefaultExtremeThreshold
}

// WithoutDemographics drops age and the comorbidity score from the driver list.
func (t Table) WithoutDemographics() Table {
	out := t
	out.Features = make([]features.Name, 0, len(t.Features))
	for _, n := range t.Features {
		if n == features.Age || n == features.AgeAdjComorbidityScore {
			continue
		}
		out.Features = append(out.Features, n)
	}
	return out
}

var defaultRanges = map[features.Name]ClinicalRange{
	features.GCSMax:  {15, 15, "", "Maximum Glasgow Coma Scale"},
	features.GCSMean: {13, 15, "", "Mean Glasgow Coma Scale"},

	features.LactateMin:  {0.5, 2.0, "mmol/L", "Minimum lactate"},
	features.LactateMean: {0.5, 2.0, "mmol/L", "Mean lactate"},
	features.LactateMax:  {0.5, 4.0, "mmol/L", "Maximum lactate"},

	features.BUNMin:  {7, 20, "mg/dL", "Minimum BUN"},
	features.BUNMean: {7, 20, "mg/dL", "Mean BUN"},
	features.BUNMax:  {7, 25, "mg/dL", "Maximum BUN"},

	features.BilirubinMean: {0.2, 1.2, "mg/dL", "Mean bilirubin"},
	features.BilirubinMax:  {0.2, 1.2, "mg/dL", "Maximum bilirubin"},

	features.AlbuminMin:  {3.5, 5.0, "g/dL", "Minimum albumin"},
	features.AlbuminMean: {3.5, 5.0, "g/dL", "Mean albumin"},
	features.AlbuminMax:  {3.5, 5.0, "g/dL", "Maximum albumin"},

	features.AlkPhosMin:  {40, 130, "U/L", "Minimum alkaline phosphatase"},
	features.AlkPhosMean: {40, 130, "U/L", "Mean alkaline phosphatase"},
	features.AlkPhosMax:  {40, 130, "U/L", "Maximum alkaline phosphatase"},

	features.PTMin:  {11, 14, "s", "Minimum prothrombin time (PT)"},
	features.PTMean: {11, 14, "s", "Mean prothrombin time (PT)"},

	features.INRMin:  {0.8, 1.2, "", "Minimum INR"},
	features.INRMean: {0.8, 1.2, "", "Mean INR"},

	features.APTTMin:  {25, 35, "s", "Minimum activated PTT (aPTT)"},
	features.APTTMean: {25, 35, "s", "Mean activated PTT (aPTT)"},

	features.PhosphateMean: {2.5, 4.5, "mg/dL", "Mean phosphate"},
	features.PhosphateMax:  {2.5, 4.5, "mg/dL", "Maximum phosphate"},

	features.AGMean: {8, 16, "mEq/L", "Mean anion gap"},
	features.AGMin:  {8, 16, "mEq/L", "Minimum anion gap"},
	features.AGMax:  {8, 16, "mEq/L", "Maximum anion gap"},
	features.AGStd:  {0, 6, "mEq/L", "Anion gap variability"},

	features.PaO2Mean: {80, 120, "mmHg", "Mean PaO₂"},
	features.PaO2Max:  {80, 200, "mmHg", "Maximum PaO₂"},

	features.RRMin:  {8, 12, "breaths/min", "Minimum respiratory rate"},
	features.RRMean: {12, 20, "breaths/min", "Mean respiratory rate"},
	features.RRMax:  {12, 30, "breaths/min", "Maximum respiratory rate"},

	features.TEMPMin: {36.0, 37.5, "°C", "Minimum temperature"},
	features.TEMPStd: {0.0, 1.0, "°C", "Temperature variability"},

	features.HRMean: {60, 100, "bpm", "Mean heart rate"},
	features.HRMax:  {60, 140, "bpm", "Maximum heart rate"},
	features.HRStd:  {0, 20, "bpm", "Heart rate variability"},

	features.SYSBPMin:  {90, 120, "mmHg", "Minimum systolic BP"},
	features.SYSBPMean: {90, 140, "mmHg", "Mean systolic BP"},
	features.SYSBPStd:  {0, 25, "mmHg", "Systolic BP variability"},

	features.DIASBPMin:  {60, 80, "mmHg", "Minimum diastolic BP"},
	features.DIASBPMean: {60, 90, "mmHg", "Mean diastolic BP"},

	features.MEANBPMin:  {65, 105, "mmHg", "Minimum MAP"},
	features.MEANBPMean: {65, 105, "mmHg", "Mean arterial pressure (MAP)"},

	features.RDWMin:  {11.0, 14.5, "%", "Minimum RDW"},
	features.RDWMean: {11.5, 14.5, "%", "Mean RDW"},
	features.RDWMax:  {11.5, 14.5, "%", "Maximum RDW"},
	features.RDWStd:  {0, 3, "%", "RDW variability"},

	features.Age:                    {18, 90, "years", "Patient age"},
	features.AgeAdjComorbidityScore: {0, 20, "", "Age-adjusted comorbidity score"},
}

// defaultFeatures is the clinically curated subset shown as drivers. Order
// breaks ties between equal scores.
var defaultFeatures = []features.Name{
	features.GCSMax, features.GCSMean,
	features.LactateMin, features.LactateMean, features.LactateMax,
	features.BUNMin, features.BUNMean, features.BUNMax,
	features.BilirubinMean, features.BilirubinMax,
	features.AlbuminMin, features.AlbuminMean,
	features.PTMean, features.INRMean, features.APTTMean,
	features.AGMean, features.AGMax, features.AGMin,
	features.PhosphateMean, features.PaO2Mean,
	features.RRMean, features.RRMax, features.RRMin,
	features.TEMPMin,
	features.HRMean, features.HRMax,
	features.SYSBPMin, features.SYSBPMean,
	features.MEANBPMin, features.MEANBPMean,
	features.DIASBPMin, features.DIASBPMean,
	features.RDWMean, features.RDWMax,
	features.Age, features.AgeAdjComorbidityScore,
}

// DefaultTable returns a fresh copy of the built-in ranges.
func DefaultTable() Table {
	ranges := make(map[features.Name]ClinicalRange, len(defaultRanges))
	for k, v := range defaultRanges {
		ranges[k] = v
	}
	list := make([]features.Name, len(defaultFeatures))
	copy(list, defaultFeatures)
	return Table{
		Ranges:     ranges,
		Features:   list,
		Default:    DefaultExtremeThreshold,
		Thresholds: map[string]float64{},
	}
}

type rangesFile struct {
	DefaultThreshold float64                  `yaml:"default_threshold"`
	Thresholds       map[string]float64       `yaml:"thresholds"`
	Features         []string                 `yaml:"features"`
	Ranges           map[string]ClinicalRange `yaml:"ranges"`
}

// LoadTable reads a YAML override on top of the defaults. An empty path means
// the built-in table. Ranges in the file replace the matching defaults, a
// features list replaces the curated list.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}
	content, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return table, err
	}

	var file rangesFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return Table{}, err
	}

	for raw, r := range file.Ranges {
		name, ok := features.ParseName(raw)
		if !ok {
			return Table{}, fmt.Errorf("clinical range for unknown feature %q", raw)
		}
		if r.High < r.Low {
			return Table{}, fmt.Errorf("clinical range for %s has high %v below low %v", raw, r.High, r.Low)
		}
		table.Ranges[name] = r
	}

	if len(file.Features) > 0 {
		list := make([]features.Name, 0, len(file.Features))
		for _, raw := range file.Features {
			name, ok := features.ParseName(raw)
			if !ok {
				return Table{}, fmt.Errorf("driver list names unknown feature %q", raw)
			}
			list = append(list, name)
		}
		table.Features = list
	}

	if file.DefaultThreshold < 0 {
		return Table{}, errors.New("default_threshold must not be negative")
	}
	if file.DefaultThreshold > 0 {
		table.Default = file.DefaultThreshold
	}
	for k, v := range file.Thresholds {
		table.Thresholds[k] = v
	}
	return table, nil
}
