// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/clinical-trials/internal/export"
	"github.com/pdiddy/clinical-trials/internal/registry"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

// session bundles what a command needs once configuration is loaded.
type session struct {
	client   *registry.Client
	exporter *export.Exporter
	log      *logrus.Logger
	out      io.Writer
	runID    string
	format   types.ExportFormat
	terms    []string
}

// newSession builds a session from the loaded configuration.
func newSession() (*session, error) {
	client, err := registry.NewClient(cfg.Fetch, logger)
	if err != nil {
		return nil, err
	}
	return &session{
		client:   client,
		exporter: export.NewExporter(cfg.Export.OutputDir),
		log:      logger,
		out:      os.Stdout,
		runID:    runID,
		format:   cfg.Export.Format,
		terms:    cfg.DefaultSearchTerms,
	}, nil
}

// query returns q, or the default search terms joined with spaces when q is
// blank.
func (s *session) query(q string) string {
	if q = strings.TrimSpace(q); q != "" {
		return q
	}
	q = strings.Join(s.terms, " ")
	s.log.WithField("query", q).Info("using default search terms")
	return q
}

// fetch runs a registry search and reports what came back. It fails only
// when the search collected nothing because of a request failure.
func (s *session) fetch(ctx context.Context, query string, filters types.SearchFilters, maxResults int) ([]types.Trial, error) {
	s.log.WithFields(logrus.Fields{
		"query":       query,
		"max_results": maxResults,
		"study_type":  filters.StudyType,
		"phases":      filters.Phases,
		"statuses":    filters.Statuses,
		"conditions":  filters.Conditions,
		"start_from":  filters.StartDateFrom.ISO(),
		"start_to":    filters.StartDateTo.ISO(),
	}).Info("searching registry")

	out := s.client.Search(ctx, query, filters, maxResults)
	if out.Skipped > 0 {
		fmt.Fprintf(s.out, "Skipped %d malformed record(s)\n", out.Skipped)
	}
	if len(out.Errors) > 0 {
		if len(out.Trials) == 0 {
			return nil, fmt.Errorf("search failed: %s", out.Errors[0])
		}
		fmt.Fprintf(s.out, "Search stopped early after %d page(s): %s\n", out.Pages, out.Errors[0])
	}
	return out.Trials, nil
}

// writeReport stores summary as a YAML report and prints its path.
func (s *session) writeReport(query string, files []string, summary any, prefix string) error {
	path, err := s.exporter.WriteSummary(export.Report{
		RunID:       s.runID,
		GeneratedAt: time.Now().UTC(),
		Query:       query,
		Files:       files,
		Summary:     summary,
	}, prefix)
	if err != nil {
		return fmt.Errorf("writing summary report: %w", err)
	}
	fmt.Fprintf(s.out, "Summary report: %s\n", path)
	return nil
}

func (s *session) printFiles(files []string) {
	fmt.Fprintf(s.out, "Files created: %s\n", strings.Join(files, ", "))
}

// addSearchFlags registers the filter and limit flags shared by search
// commands. defaults seeds the --study-type flag.
func addSearchFlags(cmd *cobra.Command, defaults types.SearchFilters) {
	f := cmd.Flags()
	f.StringP("query", "q", "", "search query (default: the configured default search terms)")
	f.IntP("max-results", "m", 0, "maximum number of trials to retrieve (default from config, 1000)")
	f.String("study-type", defaults.StudyType, "restrict to a study type (e.g. INTERVENTIONAL); empty for any")
	f.StringSliceP("phase", "p", nil, "filter by phase (e.g. PHASE1,PHASE2)")
	f.StringSliceP("status", "s", nil, "filter by overall status (e.g. RECRUITING)")
	f.StringSliceP("condition", "c", nil, "filter by condition")
	f.StringSlice("intervention", nil, "filter by intervention name")
	f.StringSlice("sponsor", nil, "filter by sponsor name")
	f.StringSlice("country", nil, "filter by country")
	f.String("start-from", "", "earliest study start date (YYYY, YYYY-MM, or YYYY-MM-DD)")
	f.String("start-to", "", "latest study start date (YYYY, YYYY-MM, or YYYY-MM-DD)")
}

// searchInputs reads the flags registered by addSearchFlags.
func searchInputs(cmd *cobra.Command) (query string, filters types.SearchFilters, maxResults int, err error) {
	f := cmd.Flags()
	query, _ = f.GetString("query")
	maxResults, _ = f.GetInt("max-results")
	if maxResults <= 0 {
		maxResults = cfg.MaxResults
	}

	filters.StudyType, _ = f.GetString("study-type")
	filters.Phases, _ = f.GetStringSlice("phase")
	filters.Statuses, _ = f.GetStringSlice("status")
	filters.Conditions, _ = f.GetStringSlice("condition")
	filters.Interventions, _ = f.GetStringSlice("intervention")
	filters.Sponsors, _ = f.GetStringSlice("sponsor")
	filters.Countries, _ = f.GetStringSlice("country")

	if filters.StartDateFrom, err = dateFlag(cmd, "start-from"); err != nil {
		return "", types.SearchFilters{}, 0, err
	}
	if filters.StartDateTo, err = dateFlag(cmd, "start-to"); err != nil {
		return "", types.SearchFilters{}, 0, err
	}
	return query, filters, maxResults, nil
}

func dateFlag(cmd *cobra.Command, name string) (*types.Date, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}
	d := types.ParseDate(s)
	if d == nil {
		return nil, fmt.Errorf("--%s: invalid date %q (want YYYY, YYYY-MM, or YYYY-MM-DD)", name, s)
	}
	return d, nil
}

// fileSafe makes an NCT ID usable in a filename prefix.
func fileSafe(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

// contextOf returns the command context, or a background context for
// commands run without Execute.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
