// Command engineer-features runs feature assembly offline against a patient
// JSON file, or converts a CSV reference population to Parquet.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/drivers"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/reference"
)

func main() {
	patientFile := flag.String("patient", "", "Patient JSON file to assemble features for")
	referencePath := flag.String("reference", "", "Reference population (.csv or .parquet) used for imputation")
	noImpute := flag.Bool("no-impute", false, "Disable median imputation")
	showDrivers := flag.Bool("drivers", false, "Print ranked clinical drivers after assembly")
	showAll := flag.Bool("all", false, "With -drivers, print every abnormal driver")
	rangesPath := flag.String("ranges", "", "Optional clinical ranges YAML")
	convertFile := flag.String("convert", "", "CSV reference population to convert to Parquet")
	outputFile := flag.String("out", "", "Output Parquet file for -convert")
	flag.Parse()

	logger.Init()

	switch {
	case *convertFile != "":
		if *outputFile == "" {
			base := strings.TrimSuffix(filepath.Base(*convertFile), filepath.Ext(*convertFile))
			*outputFile = base + ".parquet"
		}
		if err := convert(*convertFile, *outputFile); err != nil {
			logger.Log.WithError(err).Fatal("conversion failed")
		}
	case *patientFile != "":
		if err := assemble(*patientFile, *referencePath, *rangesPath, !*noImpute, *showDrivers, *showAll); err != nil {
			logger.Log.WithError(err).Fatal("assembly failed")
		}
	default:
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  engineer-features -patient patient.json [-reference ref.parquet] [-no-impute] [-drivers [-all]] [-ranges ranges.yaml]\n")
		fmt.Fprintf(os.Stderr, "  engineer-features -convert reference.csv [-out reference.parquet]\n")
		os.Exit(1)
	}
}

func assemble(path, referencePath, rangesPath string, impute, showDrivers, showAll bool) error {
	payload, err := ioutil.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	patient, err := features.DecodePatientData(payload)
	if err != nil {
		return err
	}

	res := features.NewAssembler(reference.NewProvider(referencePath)).Assemble(patient, impute)
	out := map[string]interface{}{"result": res}
	if res.Success && showDrivers {
		table, err := drivers.LoadTable(rangesPath)
		if err != nil {
			return fmt.Errorf("load clinical ranges: %w", err)
		}
		out["drivers"] = drivers.NewRanker(table).Rank(res.Features, showAll)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	if !res.Success {
		return res.Err
	}
	return nil
}

func convert(inputPath, outputPath string) error {
	start := time.Now()
	ds, err := reference.LoadCSV(inputPath)
	if err != nil {
		return err
	}
	records := ds.Records()
	rows := make([]reference.Row, len(records))
	for i, rec := range records {
		rows[i] = reference.RowFromRecord(rec)
	}
	if err := reference.WriteParquet(outputPath, rows); err != nil {
		return err
	}
	logger.Log.WithFields(map[string]interface{}{
		"input":    inputPath,
		"output":   outputPath,
		"rows":     len(rows),
		"columns":  ds.Columns(),
		"duration": time.Since(start).String(),
	}).Info("reference population converted")
	return nil
}
