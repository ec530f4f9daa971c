// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/clinical-trials/internal/classify"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

// topSponsorLimit bounds Summary.TopSponsors.
const topSponsorLimit = 10

// NameCount pairs a name with its frequency.
type NameCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// DateRange holds the earliest and latest value of each trial date field.
// Empty strings mean no trial carried the date.
type DateRange struct {
	EarliestStart             string `json:"earliest_start,omitempty" yaml:"earliest_start,omitempty"`
	LatestStart               string `json:"latest_start,omitempty" yaml:"latest_start,omitempty"`
	EarliestCompletion        string `json:"earliest_completion,omitempty" yaml:"earliest_completion,omitempty"`
	LatestCompletion          string `json:"latest_completion,omitempty" yaml:"latest_completion,omitempty"`
	EarliestPrimaryCompletion string `json:"earliest_primary_completion,omitempty" yaml:"earliest_primary_completion,omitempty"`
	LatestPrimaryCompletion   string `json:"latest_primary_completion,omitempty" yaml:"latest_primary_completion,omitempty"`
}

// Summary aggregates a batch of trials.
type Summary struct {
	TotalTrials        int            `json:"total_trials" yaml:"total_trials"`
	StatusDistribution map[string]int `json:"status_distribution" yaml:"status_distribution"`
	PhaseDistribution  map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
	TopSponsors        []NameCount    `json:"top_sponsors" yaml:"top_sponsors"`
	DateRange          DateRange      `json:"date_range" yaml:"date_range"`
}

// InterventionalSummary aggregates the interventional subset of a batch.
type InterventionalSummary struct {
	TotalInterventional          int            `json:"total_interventional_trials" yaml:"total_interventional_trials"`
	TotalAll                     int            `json:"total_all_trials" yaml:"total_all_trials"`
	InterventionalPercentage     float64        `json:"interventional_percentage" yaml:"interventional_percentage"`
	StatusDistribution           map[string]int `json:"status_distribution" yaml:"status_distribution"`
	PhaseDistribution            map[string]int `json:"phase_distribution" yaml:"phase_distribution"`
	InterventionTypeDistribution map[string]int `json:"intervention_type_distribution" yaml:"intervention_type_distribution"`

	// InterventionCategories counts trials per category, keyed
	// "Drug Interventions", "Device Interventions", and so on.
	InterventionCategories map[string]int `json:"intervention_categories" yaml:"intervention_categories"`

	TopSponsors []NameCount `json:"top_sponsors" yaml:"top_sponsors"`
	DateRange   DateRange   `json:"date_range" yaml:"date_range"`
}

// Stats holds headline counts over the interventional subset of a batch.
type Stats struct {
	TotalInterventional int `json:"total_interventional_trials" yaml:"total_interventional_trials"`
	Recruiting          int `json:"recruiting_trials" yaml:"recruiting_trials"`
	Completed           int `json:"completed_trials" yaml:"completed_trials"`
	Phase1              int `json:"phase_1_trials" yaml:"phase_1_trials"`
	Phase2              int `json:"phase_2_trials" yaml:"phase_2_trials"`
	Phase3              int `json:"phase_3_trials" yaml:"phase_3_trials"`
	Phase4              int `json:"phase_4_trials" yaml:"phase_4_trials"`
	Drug                int `json:"drug_trials" yaml:"drug_trials"`
	Device              int `json:"device_trials" yaml:"device_trials"`
	Behavioral          int `json:"behavioral_trials" yaml:"behavioral_trials"`
}

// PhaseReport describes the interventional trials listing one phase.
type PhaseReport struct {
	Phase              string         `json:"phase" yaml:"phase"`
	Count              int            `json:"count" yaml:"count"`
	Percentage         float64        `json:"percentage" yaml:"percentage"`
	StatusDistribution map[string]int `json:"status_distribution" yaml:"status_distribution"`

	// TopConditions and TopSponsors are ordered by descending frequency.
	TopConditions []string `json:"top_conditions" yaml:"top_conditions"`
	TopSponsors   []string `json:"top_sponsors" yaml:"top_sponsors"`
}

// Summarize aggregates trials. An empty batch returns ErrNoData.
func Summarize(trials []types.Trial) (Summary, error) {
	if len(trials) == 0 {
		return Summary{}, ErrNoData
	}
	return Summary{
		TotalTrials:        len(trials),
		StatusDistribution: statusCounts(trials),
		PhaseDistribution:  phaseCounts(trials),
		TopSponsors:        topSponsors(trials),
		DateRange:          dateRange(trials),
	}, nil
}

// SummarizeInterventional aggregates the interventional subset of trials.
// It returns ErrNoData when no trial is interventional.
func SummarizeInterventional(trials []types.Trial) (InterventionalSummary, error) {
	subset := classify.FilterInterventional(trials)
	if len(subset) == 0 {
		return InterventionalSummary{}, ErrNoData
	}

	ivTypes := make(map[string]int)
	for _, t := range subset {
		for _, iv := range t.Interventions {
			ivTypes[iv.Type]++
		}
	}

	categories := make(map[string]int)
	for _, c := range classify.AllCategories() {
		key := c.Label() + " Interventions"
		categories[key] = len(classify.FilterByCategory(subset, c))
	}

	return InterventionalSummary{
		TotalInterventional:          len(subset),
		TotalAll:                     len(trials),
		InterventionalPercentage:     round2(float64(len(subset)) / float64(len(trials)) * 100),
		StatusDistribution:           statusCounts(subset),
		PhaseDistribution:            phaseCounts(subset),
		InterventionTypeDistribution: ivTypes,
		InterventionCategories:       categories,
		TopSponsors:                  topSponsors(subset),
		DateRange:                    dateRange(subset),
	}, nil
}

// Statistics counts statuses, phases, and key categories over the
// interventional subset of trials.
func Statistics(trials []types.Trial) (Stats, error) {
	subset := classify.FilterInterventional(trials)
	if len(subset) == 0 {
		return Stats{}, ErrNoData
	}
	s := Stats{TotalInterventional: len(subset)}
	for _, t := range subset {
		switch t.Status {
		case types.StatusRecruiting:
			s.Recruiting++
		case types.StatusCompleted:
			s.Completed++
		}
		s.Phase1 += b2i(classify.HasPhase(t, "PHASE1"))
		s.Phase2 += b2i(classify.HasPhase(t, "PHASE2"))
		s.Phase3 += b2i(classify.HasPhase(t, "PHASE3"))
		s.Phase4 += b2i(classify.HasPhase(t, "PHASE4"))
		s.Drug += b2i(classify.HasCategory(t, classify.Drug))
		s.Device += b2i(classify.HasCategory(t, classify.Device))
		s.Behavioral += b2i(classify.HasCategory(t, classify.Behavioral))
	}
	return s, nil
}

// PhaseAnalysis breaks the interventional subset of trials down by phase
// label, in order of first appearance. Trials without a phase are counted in
// the denominator only.
func PhaseAnalysis(trials []types.Trial) ([]PhaseReport, error) {
	subset := classify.FilterInterventional(trials)
	if len(subset) == 0 {
		return nil, ErrNoData
	}

	type acc struct {
		report     PhaseReport
		conditions counter
		sponsors   counter
	}
	var order []string
	byPhase := make(map[string]*acc)

	for _, t := range subset {
		for _, phase := range t.Phases() {
			a, ok := byPhase[phase]
			if !ok {
				a = &acc{report: PhaseReport{Phase: phase, StatusDistribution: make(map[string]int)}}
				byPhase[phase] = a
				order = append(order, phase)
			}
			a.report.Count++
			a.report.StatusDistribution[string(t.Status)]++
			for _, c := range t.Conditions {
				a.conditions.add(c.Name)
			}
			for _, s := range t.Sponsors {
				a.sponsors.add(s.Name)
			}
		}
	}

	reports := make([]PhaseReport, len(order))
	for i, phase := range order {
		a := byPhase[phase]
		a.report.Percentage = round2(float64(a.report.Count) / float64(len(subset)) * 100)
		a.report.TopConditions = a.conditions.names(0)
		a.report.TopSponsors = a.sponsors.names(0)
		reports[i] = a.report
	}
	return reports, nil
}

// Report is the YAML document written next to an export.
type Report struct {
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Query       string    `yaml:"query,omitempty"`
	Files       []string  `yaml:"files,omitempty"`
	Summary     any       `yaml:"summary"`
}

// WriteSummary writes report as YAML to Dir and returns the path.
func (e *Exporter) WriteSummary(report Report, prefix string) (string, error) {
	if report.Summary == nil {
		return "", ErrNoData
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(e.Dir, orDefault(prefix, SummaryPrefix)+"_"+e.timestamp()+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// counter tallies names and remembers first appearance for stable ordering.
type counter struct {
	order  []string
	counts map[string]int
}

func (c *counter) add(name string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// top returns the limit most frequent names, ties in first-appearance
// order. A limit of zero returns all names.
func (c *counter) top(limit int) []NameCount {
	out := make([]NameCount, len(c.order))
	for i, name := range c.order {
		out[i] = NameCount{Name: name, Count: c.counts[name]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *counter) names(limit int) []string {
	top := c.top(limit)
	names := make([]string, len(top))
	for i, nc := range top {
		names[i] = nc.Name
	}
	return names
}

func statusCounts(trials []types.Trial) map[string]int {
	counts := make(map[string]int)
	for _, t := range trials {
		counts[string(t.Status)]++
	}
	return counts
}

func phaseCounts(trials []types.Trial) map[string]int {
	counts := make(map[string]int)
	for _, t := range trials {
		for _, p := range t.Phases() {
			counts[p]++
		}
	}
	return counts
}

func topSponsors(trials []types.Trial) []NameCount {
	var c counter
	for _, t := range trials {
		for _, s := range t.Sponsors {
			c.add(s.Name)
		}
	}
	return c.top(topSponsorLimit)
}

func dateRange(trials []types.Trial) DateRange {
	var r DateRange
	r.EarliestStart, r.LatestStart = span(trials, func(t types.Trial) *types.Date { return t.StartDate })
	r.EarliestCompletion, r.LatestCompletion = span(trials, func(t types.Trial) *types.Date { return t.CompletionDate })
	r.EarliestPrimaryCompletion, r.LatestPrimaryCompletion = span(trials, func(t types.Trial) *types.Date { return t.PrimaryCompletionDate })
	return r
}

// span returns the ISO forms of the earliest and latest non-nil date.
func span(trials []types.Trial, field func(types.Trial) *types.Date) (string, string) {
	var lo, hi *types.Date
	for _, t := range trials {
		d := field(t)
		if d == nil {
			continue
		}
		if lo == nil || d.Time.Before(lo.Time) {
			lo = d
		}
		if hi == nil || d.Time.After(hi.Time) {
			hi = d
		}
	}
	return lo.ISO(), hi.ISO()
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
