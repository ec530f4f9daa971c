// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clinical-trials/internal/classify"
	"github.com/pdiddy/clinical-trials/internal/export"
	"github.com/pdiddy/clinical-trials/internal/phasedates"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

// phaseItemsShown bounds the conditions and sponsors printed per phase.
const phaseItemsShown = 3

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Analyze interventional trials by phase",
}

var phasesAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Break interventional trials down by phase",
	Long: `Analyze counts interventional trials per phase label with their status
distribution and most common conditions and sponsors, and exports the
analyzed trials with the phase_analysis prefix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, filters, maxResults, err := searchInputs(cmd)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		return s.analyzePhases(contextOf(cmd), s.query(query), filters, maxResults)
	},
}

var phasesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export per-product Phase 1 / Phase 3 dates and success flags",
	Long: `Export derives one row per product of each interventional trial with
Company, Product, Disorder/Condition, NCT ID, and start, end, and success
columns for Phase 1 and Phase 3.

The registry does not publish per-phase dates. The study start date stands in
for the phase start and the primary completion date (or the completion date)
for the phase end. A reached phase counts as failed only when the study was
terminated, withdrawn, or suspended without listing a later phase.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, filters, maxResults, err := searchInputs(cmd)
		if err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		return s.exportPhaseDates(contextOf(cmd), s.query(query), filters, maxResults)
	},
}

func init() {
	addSearchFlags(phasesAnalyzeCmd, types.DefaultSearchFilters())
	addSearchFlags(phasesExportCmd, types.DefaultSearchFilters())

	phasesCmd.AddCommand(phasesAnalyzeCmd)
	phasesCmd.AddCommand(phasesExportCmd)
	rootCmd.AddCommand(phasesCmd)
}

func (s *session) analyzePhases(ctx context.Context, query string, filters types.SearchFilters, maxResults int) error {
	trials, err := s.fetch(ctx, query, filters, maxResults)
	if err != nil {
		return err
	}
	kept := classify.FilterInterventional(trials)
	if len(kept) == 0 {
		fmt.Fprintln(s.out, "No interventional trials found")
		return nil
	}

	reports, err := export.PhaseAnalysis(kept)
	if err != nil {
		return err
	}
	files, err := s.exporter.ExportInterventional(kept, s.format, export.PhaseAnalysisPrefix)
	if err != nil {
		return fmt.Errorf("exporting phase analysis: %w", err)
	}

	fmt.Fprintf(s.out, "Interventional trials analyzed: %d\n", len(kept))
	for _, r := range reports {
		fmt.Fprintf(s.out, "%s:\n", r.Phase)
		fmt.Fprintf(s.out, "  Count: %d\n", r.Count)
		fmt.Fprintf(s.out, "  Percentage: %.1f%%\n", r.Percentage)
		fmt.Fprintf(s.out, "  Common conditions: %s\n", strings.Join(head(r.TopConditions, phaseItemsShown), ", "))
		fmt.Fprintf(s.out, "  Common sponsors: %s\n", strings.Join(head(r.TopSponsors, phaseItemsShown), ", "))
	}
	s.printFiles(files)

	return s.writeReport(query, files, reports, export.PhaseAnalysisPrefix+"_summary")
}

func (s *session) exportPhaseDates(ctx context.Context, query string, filters types.SearchFilters, maxResults int) error {
	trials, err := s.fetch(ctx, query, filters, maxResults)
	if err != nil {
		return err
	}
	kept := classify.FilterInterventional(trials)
	if len(kept) == 0 {
		fmt.Fprintln(s.out, "No interventional trials found for the given query")
		return nil
	}

	rows := phasedates.RowsForTrials(kept)
	files, err := s.exporter.ExportPhaseDates(rows, s.format, export.PhaseDatesPrefix)
	if err != nil {
		return fmt.Errorf("exporting phase dates: %w", err)
	}
	fmt.Fprintf(s.out, "Phase dates exported: %d row(s) from %d trial(s)\n", len(rows), len(kept))
	s.printFiles(files)
	return nil
}

func head(vals []string, n int) []string {
	if len(vals) > n {
		return vals[:n]
	}
	return vals
}
