// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clinical-trials/internal/export"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

// topSponsorsShown bounds the sponsors printed to the terminal.
const topSponsorsShown = 5

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the registry and export matching trials",
	Long: `Search pages through ClinicalTrials.gov studies matching a query and
filters, exports them as CSV or JSON, and writes a YAML summary report with
status, phase, and sponsor distributions.`,
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd, types.SearchFilters{})
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, filters, maxResults, err := searchInputs(cmd)
	if err != nil {
		return err
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	return s.search(contextOf(cmd), s.query(query), filters, maxResults)
}

func (s *session) search(ctx context.Context, query string, filters types.SearchFilters, maxResults int) error {
	trials, err := s.fetch(ctx, query, filters, maxResults)
	if err != nil {
		return err
	}
	if len(trials) == 0 {
		fmt.Fprintln(s.out, "No trials found matching the search criteria")
		return nil
	}
	fmt.Fprintf(s.out, "Found %d trials\n", len(trials))

	files, err := s.exporter.ExportTrials(trials, s.format, export.TrialsPrefix)
	if err != nil {
		return fmt.Errorf("exporting trials: %w", err)
	}
	s.printFiles(files)

	summary, err := export.Summarize(trials)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Total trials: %d\n", summary.TotalTrials)
	fmt.Fprintf(s.out, "Status distribution: %v\n", summary.StatusDistribution)
	fmt.Fprintf(s.out, "Phase distribution: %v\n", summary.PhaseDistribution)
	printTopSponsors(s, summary.TopSponsors)

	return s.writeReport(query, files, summary, export.SummaryPrefix)
}

func printTopSponsors(s *session, top []export.NameCount) {
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(s.out, "Top sponsors:")
	for i, nc := range top {
		if i == topSponsorsShown {
			break
		}
		fmt.Fprintf(s.out, "  %s: %d\n", nc.Name, nc.Count)
	}
}
