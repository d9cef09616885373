package reference

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/synaptica-ai/icu-risk/pkg/features"
)

// Row mirrors the Parquet schema of the reference population. Every column is
// optional; a null cell is a missing value.
type Row struct {
	GCSMax                 *float64 `parquet:"GCS_max,optional"`
	GCSMean                *float64 `parquet:"GCS_mean,optional"`
	LactateMin             *float64 `parquet:"Lactate_min,optional"`
	LactateMax             *float64 `parquet:"Lactate_max,optional"`
	LactateMean            *float64 `parquet:"Lactate_mean,optional"`
	BUNMin                 *float64 `parquet:"BUN_min,optional"`
	BUNMean                *float64 `parquet:"BUN_mean,optional"`
	BUNMax                 *float64 `parquet:"BUN_max,optional"`
	BilirubinMax           *float64 `parquet:"Bilirubin_max,optional"`
	BilirubinMean          *float64 `parquet:"Bilirubin_mean,optional"`
	AlbuminMean            *float64 `parquet:"Albumin_mean,optional"`
	AlbuminMin             *float64 `parquet:"Albumin_min,optional"`
	AlbuminMax             *float64 `parquet:"Albumin_max,optional"`
	AlkPhosMean            *float64 `parquet:"AlkPhos_mean,optional"`
	AlkPhosMax             *float64 `parquet:"AlkPhos_max,optional"`
	AlkPhosMin             *float64 `parquet:"AlkPhos_min,optional"`
	PTMean                 *float64 `parquet:"PT_mean,optional"`
	PTMin                  *float64 `parquet:"PT_min,optional"`
	INRMean                *float64 `parquet:"INR_mean,optional"`
	INRMin                 *float64 `parquet:"INR_min,optional"`
	PhosphateMean          *float64 `parquet:"Phosphate_mean,optional"`
	PhosphateMax           *float64 `parquet:"Phosphate_max,optional"`
	PaO2Mean               *float64 `parquet:"PaO2_mean,optional"`
	PaO2Max                *float64 `parquet:"PaO2_max,optional"`
	APTTMean               *float64 `parquet:"aPTT_mean,optional"`
	APTTMin                *float64 `parquet:"aPTT_min,optional"`
	AGMean                 *float64 `parquet:"AG_mean,optional"`
	AGMax                  *float64 `parquet:"AG_max,optional"`
	AGMin                  *float64 `parquet:"AG_min,optional"`
	AGStd                  *float64 `parquet:"AG_std,optional"`
	SYSBPMin               *float64 `parquet:"SYSBP_min,optional"`
	SYSBPMean              *float64 `parquet:"SYSBP_mean,optional"`
	SYSBPStd               *float64 `parquet:"SYSBP_std,optional"`
	DIASBPMin              *float64 `parquet:"DIASBP_min,optional"`
	DIASBPMean             *float64 `parquet:"DIASBP_mean,optional"`
	Age                    *float64 `parquet:"age,optional"`
	RRMean                 *float64 `parquet:"RR_mean,optional"`
	RRMax                  *float64 `parquet:"RR_max,optional"`
	RRMin                  *float64 `parquet:"RR_min,optional"`
	TEMPStd                *float64 `parquet:"TEMP_std,optional"`
	TEMPMin                *float64 `parquet:"TEMP_min,optional"`
	HRMean                 *float64 `parquet:"HR_mean,optional"`
	HRMax                  *float64 `parquet:"HR_max,optional"`
	HRStd                  *float64 `parquet:"HR_std,optional"`
	RDWMax                 *float64 `parquet:"RDW_max,optional"`
	RDWMean                *float64 `parquet:"RDW_mean,optional"`
	RDWMin                 *float64 `parquet:"RDW_min,optional"`
	RDWStd                 *float64 `parquet:"RDW_std,optional"`
	AgeAdjComorbidityScore *float64 `parquet:"age_adj_comorbidity_score,optional"`
	MEANBPMin              *float64 `parquet:"MEANBP_min,optional"`
	MEANBPMean             *float64 `parquet:"MEANBP_mean,optional"`
}

// LoadParquet reads the whole file into memory. Columns absent from the file
// read back as null and are dropped.
func LoadParquet(path string) (*Dataset, error) {
	rows, err := parquet.ReadFile[Row](filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read reference parquet: %w", err)
	}

	columns := make(map[features.Name][]float64, len(features.ExpectedNames()))
	for i := range rows {
		row := &rows[i]
		for name, cell := range row.pointers() {
			v := math.NaN()
			if *cell != nil {
				v = **cell
			}
			columns[name] = append(columns[name], v)
		}
	}
	return newDataset(columns, len(rows)), nil
}

// WriteParquet stores rows with Snappy compression. Used to snapshot a
// reference population exported from the warehouse.
func WriteParquet(path string, rows []Row) error {
	if err := parquet.WriteFile(filepath.Clean(path), rows, parquet.Compression(&parquet.Snappy)); err != nil {
		return fmt.Errorf("write reference parquet: %w", err)
	}
	return nil
}

// RowFromRecord converts a feature record into a reference row.
func RowFromRecord(rec features.Record) Row {
	var r Row
	for name, cell := range r.pointers() {
		if v, ok := rec.Get(name); ok {
			value := v
			*cell = &value
		}
	}
	return r
}

func (r *Row) pointers() map[features.Name]**float64 {
	return map[features.Name]**float64{
		features.GCSMax:                 &r.GCSMax,
		features.GCSMean:                &r.GCSMean,
		features.LactateMin:             &r.LactateMin,
		features.LactateMax:             &r.LactateMax,
		features.LactateMean:            &r.LactateMean,
		features.BUNMin:                 &r.BUNMin,
		features.BUNMean:                &r.BUNMean,
		features.BUNMax:                 &r.BUNMax,
		features.BilirubinMax:           &r.BilirubinMax,
		features.BilirubinMean:          &r.BilirubinMean,
		features.AlbuminMean:            &r.AlbuminMean,
		features.AlbuminMin:             &r.AlbuminMin,
		features.AlbuminMax:             &r.AlbuminMax,
		features.AlkPhosMean:            &r.AlkPhosMean,
		features.AlkPhosMax:             &r.AlkPhosMax,
		features.AlkPhosMin:             &r.AlkPhosMin,
		features.PTMean:                 &r.PTMean,
		features.PTMin:                  &r.PTMin,
		features.INRMean:                &r.INRMean,
		features.INRMin:                 &r.INRMin,
		features.PhosphateMean:          &r.PhosphateMean,
		features.PhosphateMax:           &r.PhosphateMax,
		features.PaO2Mean:               &r.PaO2Mean,
		features.PaO2Max:                &r.PaO2Max,
		features.APTTMean:               &r.APTTMean,
		features.APTTMin:                &r.APTTMin,
		features.AGMean:                 &r.AGMean,
		features.AGMax:                  &r.AGMax,
		features.AGMin:                  &r.AGMin,
		features.AGStd:                  &r.AGStd,
		features.SYSBPMin:               &r.SYSBPMin,
		features.SYSBPMean:              &r.SYSBPMean,
		features.SYSBPStd:               &r.SYSBPStd,
		features.DIASBPMin:              &r.DIASBPMin,
		features.DIASBPMean:             &r.DIASBPMean,
		features.Age:                    &r.Age,
		features.RRMean:                 &r.RRMean,
		features.RRMax:                  &r.RRMax,
		features.RRMin:                  &r.RRMin,
		features.TEMPStd:                &r.TEMPStd,
		features.TEMPMin:                &r.TEMPMin,
		features.HRMean:                 &r.HRMean,
		features.HRMax:                  &r.HRMax,
		features.HRStd:                  &r.HRStd,
		features.RDWMax:                 &r.RDWMax,
		features.RDWMean:                &r.RDWMean,
		features.RDWMin:                 &r.RDWMin,
		features.RDWStd:                 &r.RDWStd,
		features.AgeAdjComorbidityScore: &r.AgeAdjComorbidityScore,
		features.MEANBPMin:              &r.MEANBPMin,
		features.MEANBPMean:             &r.MEANBPMean,
	}
}
