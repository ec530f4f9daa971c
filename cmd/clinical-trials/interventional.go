// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/clinical-trials/internal/classify"
	"github.com/pdiddy/clinical-trials/internal/export"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

var interventionalCmd = &cobra.Command{
	Use:   "interventional",
	Short: "Search and export interventional trials",
	Long: `Interventional commands keep only studies classified as interventional
and export the extended record: phase details, intervention breakdowns, and
category, phase, and status flags. Exports go to the interventional_trials
subdirectory of the output directory.`,
}

var interventionalSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for interventional trials and export them",
	RunE:  runInterventionalSearch,
}

var interventionalGetCmd = &cobra.Command{
	Use:   "get <nct-id>",
	Short: "Retrieve one trial by NCT ID and export its interventional record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession()
		if err != nil {
			return err
		}
		return s.interventionalGet(contextOf(cmd), args[0])
	},
}

func init() {
	addSearchFlags(interventionalSearchCmd, types.DefaultSearchFilters())
	interventionalSearchCmd.Flags().String("intervention-type", "", "keep trials with an intervention of this category (drug, device, procedure, behavioral, biological, radiation)")

	interventionalCmd.AddCommand(interventionalSearchCmd)
	interventionalCmd.AddCommand(interventionalGetCmd)
	rootCmd.AddCommand(interventionalCmd)
}

func runInterventionalSearch(cmd *cobra.Command, args []string) error {
	query, filters, maxResults, err := searchInputs(cmd)
	if err != nil {
		return err
	}
	var category classify.Category
	if name, _ := cmd.Flags().GetString("intervention-type"); name != "" {
		if category, err = classify.ParseCategory(name); err != nil {
			return err
		}
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	return s.interventionalSearch(contextOf(cmd), s.query(query), filters, maxResults, category)
}

// interventionalSearch fetches, filters, and exports interventional trials.
// An empty category keeps every interventional trial.
func (s *session) interventionalSearch(ctx context.Context, query string, filters types.SearchFilters, maxResults int, category classify.Category) error {
	trials, err := s.fetch(ctx, query, filters, maxResults)
	if err != nil {
		return err
	}

	kept := classify.FilterInterventional(trials)
	if category != "" {
		kept = classify.FilterByCategory(kept, category)
		s.log.WithField("category", category).Debug("filtered by intervention category")
	}
	if len(kept) == 0 {
		fmt.Fprintln(s.out, "No interventional trials found")
		return nil
	}
	fmt.Fprintf(s.out, "Found %d interventional trials out of %d\n", len(kept), len(trials))

	files, err := s.exporter.ExportInterventional(kept, s.format, export.InterventionalPrefix)
	if err != nil {
		return fmt.Errorf("exporting interventional trials: %w", err)
	}
	s.printFiles(files)

	// Percentages are relative to everything the search returned.
	summary, err := export.SummarizeInterventional(withCategory(trials, category))
	if err != nil {
		return err
	}
	stats, err := export.Statistics(kept)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Interventional trials: %d (%.2f%% of all)\n", summary.TotalInterventional, summary.InterventionalPercentage)
	fmt.Fprintf(s.out, "Status distribution: %v\n", summary.StatusDistribution)
	fmt.Fprintf(s.out, "Phase distribution: %v\n", summary.PhaseDistribution)
	fmt.Fprintln(s.out, "Intervention categories:")
	for _, c := range classify.AllCategories() {
		key := c.Label() + " Interventions"
		fmt.Fprintf(s.out, "  %s: %d\n", key, summary.InterventionCategories[key])
	}
	printTopSponsors(s, summary.TopSponsors)
	fmt.Fprintf(s.out, "Recruiting: %d, completed: %d\n", stats.Recruiting, stats.Completed)
	fmt.Fprintf(s.out, "Phase 1: %d, Phase 2: %d, Phase 3: %d, Phase 4: %d\n", stats.Phase1, stats.Phase2, stats.Phase3, stats.Phase4)

	return s.writeReport(query, files, struct {
		Summary    export.InterventionalSummary `yaml:"interventional"`
		Statistics export.Stats                 `yaml:"statistics"`
	}{summary, stats}, export.InterventionalPrefix+"_summary")
}

// withCategory drops interventional trials outside category so the
// interventional share reflects the category filter.
func withCategory(all []types.Trial, category classify.Category) []types.Trial {
	if category == "" {
		return all
	}
	var out []types.Trial
	for _, t := range all {
		if !classify.IsInterventional(t) || classify.HasCategory(t, category) {
			out = append(out, t)
		}
	}
	return out
}

func (s *session) interventionalGet(ctx context.Context, nctID string) error {
	t, err := s.lookup(ctx, nctID)
	if err != nil {
		return err
	}
	if !classify.IsInterventional(t) {
		fmt.Fprintf(s.out, "Trial %s does not appear to be interventional\n", t.NCTID)
	}
	files, err := s.exporter.ExportInterventional([]types.Trial{t}, s.format, "interventional_trial_"+fileSafe(t.NCTID))
	if err != nil {
		return fmt.Errorf("exporting trial: %w", err)
	}
	printTrial(s, t)
	if cats := classify.Categories(t); len(cats) > 0 {
		fmt.Fprintf(s.out, "  Categories: %v\n", cats)
	}
	s.printFiles(files)
	return nil
}
