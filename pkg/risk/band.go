package risk

import "fmt"

type Band string

const (
	BandLow    Band = "LOW"
	BandMedium Band = "MEDIUM"
	BandHigh   Band = "HIGH"
)

// Bander buckets a probability with two thresholds: p >= medium is HIGH,
// p >= low is MEDIUM, anything lower is LOW.
type Bander struct {
	low    float64
	medium float64
}

func NewBander(low, medium float64) (Bander, error) {
	if low < 0 || medium > 1 || low > medium {
		return Bander{}, fmt.Errorf("invalid risk band thresholds low=%v medium=%v", low, medium)
	}
	return Bander{low: low, medium: medium}, nil
}

func (b Bander) Band(p float64) Band {
	if p >= b.medium {
		return BandHigh
	}
	if p >= b.low {
		return BandMedium
	}
	return BandLow
}
