package features

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ReferenceDataset exposes the reference population column by column. Column
// returns false when the dataset has no such column.
type ReferenceDataset interface {
	Column(name Name) ([]float64, bool)
}

// ReferenceSource hands out the shared dataset; ok is false when none is loaded.
type ReferenceSource interface {
	Dataset() (ReferenceDataset, bool)
}

// Impute fills each missing name with the median of its reference column and
// returns the names it filled. Columns that are absent, empty or all-NaN leave
// the feature missing. record is modified in place.
func Impute(record Record, missing []Name, ref ReferenceDataset) []Name {
	imputed := make([]Name, 0)
	if ref == nil || record == nil {
		return imputed
	}
	for _, name := range missing {
		if _, present := record[name]; present {
			continue
		}
		column, ok := ref.Column(name)
		if !ok {
			continue
		}
		median, ok := columnMedian(column)
		if !ok {
			continue
		}
		record[name] = median
		imputed = append(imputed, name)
	}
	return imputed
}

func columnMedian(column []float64) (float64, bool) {
	values := make([]float64, 0, len(column))
	for _, v := range column {
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return 0, false
	}
	median, err := stats.Median(values)
	if err != nil || math.IsNaN(median) {
		return 0, false
	}
	return median, true
}
