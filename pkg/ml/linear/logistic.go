package linear

import (
	"fmt"
	"math"
)

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

// Validate checks the weights against the width of the samples they will score.
func (w Weights) Validate(featureCount int) error {
	if len(w.Coefficients) != featureCount {
		return fmt.Errorf("weights have %d coefficients for %d features", len(w.Coefficients), featureCount)
	}
	for i, c := range w.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(w.Bias) || math.IsInf(w.Bias, 0) {
		return fmt.Errorf("bias is not finite")
	}
	return nil
}

// Predict returns the logistic probability for sample.
func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights) && i < len(sample); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
