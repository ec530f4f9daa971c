// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export flattens trials and phase-date rows into CSV and JSON files
// and computes summary statistics over a batch. Files are named
// {prefix}_{YYYYMMDD_HHMMSS}.{ext} under the output directory; interventional
// and phase-date exports go to their own subdirectories.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

// ErrNoData is returned when an export or aggregate receives an empty batch.
var ErrNoData = errors.New("no data")

const (
	// InterventionalDir holds interventional exports under the output directory.
	InterventionalDir = "interventional_trials"

	// PhaseDatesDir holds phase-date exports under the output directory.
	PhaseDatesDir = "phase_dates"

	timestampLayout = "20060102_150405"
)

// Default filename prefixes.
const (
	TrialsPrefix         = "clinical_trials"
	InterventionalPrefix = "interventional_trials"
	PhaseDatesPrefix     = "phase_dates"
	PhaseAnalysisPrefix  = "phase_analysis"
	SummaryPrefix        = "summary"
)

// ParseFormat validates an export format name.
func ParseFormat(s string) (types.ExportFormat, error) {
	switch f := types.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case types.FormatCSV, types.FormatJSON, types.FormatBoth:
		return f, nil
	case "":
		return types.FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json, or both)", s)
	}
}

// Exporter writes export files beneath Dir.
type Exporter struct {
	Dir string

	now func() time.Time
}

// NewExporter returns an Exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{Dir: dir, now: time.Now}
}

// ExportTrials writes the general export of trials to Dir and returns the
// paths written.
func (e *Exporter) ExportTrials(trials []types.Trial, format types.ExportFormat, prefix string) ([]string, error) {
	if len(trials) == 0 {
		return nil, ErrNoData
	}
	records := make([]TrialRecord, len(trials))
	rows := make([][]string, len(trials))
	for i, t := range trials {
		records[i] = NewTrialRecord(t)
		rows[i] = records[i].csvRow()
	}
	return e.write(e.Dir, orDefault(prefix, TrialsPrefix), format, records, trialHeader, rows)
}

// ExportInterventional writes the extended interventional export of trials
// to Dir/interventional_trials. Callers filter the batch beforehand.
func (e *Exporter) ExportInterventional(trials []types.Trial, format types.ExportFormat, prefix string) ([]string, error) {
	if len(trials) == 0 {
		return nil, ErrNoData
	}
	records := make([]InterventionalRecord, len(trials))
	rows := make([][]string, len(trials))
	for i, t := range trials {
		records[i] = NewInterventionalRecord(t)
		rows[i] = records[i].csvRow()
	}
	dir := filepath.Join(e.Dir, InterventionalDir)
	return e.write(dir, orDefault(prefix, InterventionalPrefix), format, records, interventionalHeader, rows)
}

// ExportPhaseDates writes phase-date rows to Dir/phase_dates.
func (e *Exporter) ExportPhaseDates(rows []types.PhaseDateRow, format types.ExportFormat, prefix string) ([]string, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = phaseDateRow(r)
	}
	dir := filepath.Join(e.Dir, PhaseDatesDir)
	return e.write(dir, orDefault(prefix, PhaseDatesPrefix), format, rows, phaseDateHeader, cells)
}

// write emits the CSV and/or JSON files sharing one timestamp.
func (e *Exporter) write(dir, prefix string, format types.ExportFormat, records any, header []string, rows [][]string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	stamp := e.timestamp()

	var paths []string
	if format == types.FormatCSV || format == types.FormatBoth {
		path := filepath.Join(dir, prefix+"_"+stamp+".csv")
		if err := writeCSV(path, header, rows); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if format == types.FormatJSON || format == types.FormatBoth {
		path := filepath.Join(dir, prefix+"_"+stamp+".json")
		if err := writeJSON(path, records); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	return paths, nil
}

func (e *Exporter) timestamp() string {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	return now().Format(timestampLayout)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing CSV rows: %w", err)
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
