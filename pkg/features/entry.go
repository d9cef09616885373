package features

import (
	"fmt"
	"strconv"
)

// Bounds is a closed interval accepted when a clinician types a feature value
// in by hand.
type Bounds struct {
	Min float64
	Max float64
}

var entryBounds = map[Name]Bounds{
	GCSMax:  {0, 8},
	GCSMean: {0, 8},

	LactateMin:  {0, 25},
	LactateMax:  {0, 35},
	LactateMean: {0, 30},

	BUNMin:  {0, 200},
	BUNMean: {0, 220},
	BUNMax:  {0, 250},

	BilirubinMax:  {0, 85},
	BilirubinMean: {0, 75},

	AlbuminMean: {0, 6},
	AlbuminMin:  {0, 6},
	AlbuminMax:  {0, 6},

	AlkPhosMean: {0, 2000},
	AlkPhosMax:  {0, 3000},
	AlkPhosMin:  {0, 2000},

	PTMean: {0, 60},
	PTMin:  {0, 60},

	INRMean: {0, 10},
	INRMin:  {0, 10},

	PhosphateMean: {0, 20},
	PhosphateMax:  {0, 25},

	PaO2Mean: {0, 500},
	PaO2Max:  {0, 600},

	APTTMean: {0, 200},
	APTTMin:  {0, 200},

	AGMean: {0, 45},
	AGMax:  {0, 55},
	AGMin:  {0, 40},
	AGStd:  {0, 20},

	SYSBPMin:  {0, 160},
	SYSBPMean: {0, 190},
	SYSBPStd:  {0, 55},

	DIASBPMin:  {0, 90},
	DIASBPMean: {0, 115},

	Age: {18, 90},

	RRMean: {0, 45},
	RRMax:  {0, 65},
	RRMin:  {0, 45},

	TEMPStd: {0, 5},
	TEMPMin: {0, 45},

	HRMean: {0, 160},
	HRMax:  {0, 250},
	HRStd:  {0, 80},

	RDWMax:  {0, 30},
	RDWMean: {0, 30},
	RDWMin:  {0, 30},
	RDWStd:  {0, 15},

	AgeAdjComorbidityScore: {0, 65},

	MEANBPMin:  {0, 140},
	MEANBPMean: {0, 160},
}

func EntryBoundsFor(n Name) (Bounds, bool) {
	b, ok := entryBounds[n]
	return b, ok
}

type FieldError struct {
	Feature Name   `json:"feature"`
	Message string `json:"message"`
}

// ValidateEntry checks a hand-entered record against the entry bounds. Absent
// features are not checked. Errors come back in model column order.
func ValidateEntry(r Record) []FieldError {
	var errs []FieldError
	for _, n := range expectedNames {
		v, ok := r[n]
		if !ok {
			continue
		}
		b, ok := entryBounds[n]
		if !ok {
			continue
		}
		if v < b.Min || v > b.Max {
			errs = append(errs, FieldError{
				Feature: n,
				Message: fmt.Sprintf("Value must be between %s and %s.", formatBound(b.Min), formatBound(b.Max)),
			})
		}
	}
	return errs
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
