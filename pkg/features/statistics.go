package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds window statistics rounded to one decimal. A Summary computed
// from no values is empty and every statistic is absent.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
}

func (s Summary) Empty() bool {
	return s.Count == 0
}

func (s Summary) Value(st Stat) (float64, bool) {
	if s.Empty() {
		return 0, false
	}
	switch st {
	case StatMin:
		return s.Min, true
	case StatMax:
		return s.Max, true
	case StatMean:
		return s.Mean, true
	case StatStd:
		return s.Std, true
	default:
		return 0, false
	}
}

// Summarize uses the sample standard deviation (N-1); a single value has std 0.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{
		Count: len(values),
		Min:   round1(floats.Min(values)),
		Max:   round1(floats.Max(values)),
		Mean:  round1(stat.Mean(values, nil)),
	}
	if len(values) > 1 {
		s.Std = round1(stat.StdDev(values, nil))
	}
	return s
}

// round1 rounds half to even at one decimal, matching how the training
// pipeline rounded its features.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
