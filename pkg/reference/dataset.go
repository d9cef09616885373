package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/synaptica-ai/icu-risk/pkg/features"
)

var ErrUnsupportedFormat = errors.New("reference dataset must be .csv or .parquet")

// Dataset is an in-memory reference population, one float column per
// feature. Missing cells are NaN. It is never modified after loading.
type Dataset struct {
	columns map[features.Name][]float64
	rows    int
}

// Column returns false when the file had no such column or every cell in it
// was empty.
func (d *Dataset) Column(name features.Name) ([]float64, bool) {
	col, ok := d.columns[name]
	return col, ok
}

func (d *Dataset) Rows() int {
	return d.rows
}

func (d *Dataset) Columns() int {
	return len(d.columns)
}

// Records rebuilds one feature record per row; NaN cells are left out.
func (d *Dataset) Records() []features.Record {
	out := make([]features.Record, d.rows)
	for i := range out {
		out[i] = make(features.Record, len(d.columns))
	}
	for name, col := range d.columns {
		for i, v := range col {
			if !math.IsNaN(v) {
				out[i][name] = v
			}
		}
	}
	return out
}

// Load picks the reader from the file extension.
func Load(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".parquet":
		return LoadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadCSV reads a headered CSV. Columns that are not model features (outcome
// labels, identifiers) are ignored. Empty, NA and unparseable cells are NaN.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open reference csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}

	index := make(map[int]features.Name)
	for i, col := range header {
		if name, ok := features.ParseName(strings.TrimSpace(col)); ok {
			index[i] = name
		}
	}
	if len(index) == 0 {
		return nil, errors.New("reference csv has no feature columns")
	}

	columns := make(map[features.Name][]float64, len(index))
	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference row %d: %w", rows+1, err)
		}
		for i, name := range index {
			v := math.NaN()
			if i < len(record) {
				v = parseCell(record[i])
			}
			columns[name] = append(columns[name], v)
		}
		rows++
	}
	return newDataset(columns, rows), nil
}

func parseCell(raw string) float64 {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// newDataset drops columns with no usable value.
func newDataset(columns map[features.Name][]float64, rows int) *Dataset {
	ds := &Dataset{columns: make(map[features.Name][]float64, len(columns)), rows: rows}
	for name, col := range columns {
		for _, v := range col {
			if !math.IsNaN(v) {
				ds.columns[name] = col
				break
			}
		}
	}
	return ds
}
