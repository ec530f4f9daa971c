// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clinical-trials/internal/classify"
	"github.com/pdiddy/clinical-trials/internal/export"
	"github.com/pdiddy/clinical-trials/internal/registry"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

const studiesPage = `{"studies": [
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT00000001", "briefTitle": "Phase 3 Drug Trial"},
    "statusModule": {"overallStatus": "COMPLETED", "startDateStruct": {"date": "2020-01-01"}, "primaryCompletionDateStruct": {"date": "2022-06-15"}},
    "sponsorCollaboratorsModule": {"leadSponsor": {"name": "Acme Pharma", "class": "INDUSTRY"}},
    "conditionsModule": {"conditions": ["Asthma"]},
    "designModule": {"studyType": "INTERVENTIONAL", "phases": ["PHASE3"]},
    "armsInterventionsModule": {"interventions": [{"name": "DrugX", "type": "DRUG"}, {"name": "Placebo", "type": "OTHER"}]}
  }},
  {"protocolSection": {
    "identificationModule": {"nctId": "NCT00000002", "briefTitle": "Asthma Registry"},
    "statusModule": {"overallStatus": "RECRUITING"},
    "designModule": {"studyType": "OBSERVATIONAL"}
  }}
]}`

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	c, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultBaseURL, c.Fetch.BaseURL)
	assert.Equal(t, 1000, c.Fetch.PageSize)
	assert.Equal(t, time.Second, c.Fetch.RequestDelay)
	assert.Equal(t, 60*time.Second, c.Fetch.Timeout)
	assert.Equal(t, registry.DefaultUserAgent, c.Fetch.UserAgent)
	assert.Equal(t, "./data", c.Export.OutputDir)
	assert.Equal(t, types.FormatCSV, c.Export.Format)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, 1000, c.MaxResults)
	assert.Equal(t, defaultSearchTerms, c.DefaultSearchTerms)
}

func TestDecodeConfigFromYAML(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
fetch:
  page_size: 200
  request_delay: 250ms
  user_agent: test-agent/1.0
export:
  output_dir: /tmp/trials
  format: both
logging:
  format: json
max_results: 50
`)))

	c, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 200, c.Fetch.PageSize)
	assert.Equal(t, 250*time.Millisecond, c.Fetch.RequestDelay)
	assert.Equal(t, "test-agent/1.0", c.Fetch.UserAgent)
	assert.Equal(t, registry.DefaultBaseURL, c.Fetch.BaseURL)
	assert.Equal(t, "/tmp/trials", c.Export.OutputDir)
	assert.Equal(t, types.FormatBoth, c.Export.Format)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, 50, c.MaxResults)
}

func TestDecodeConfigBadFormat(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("export.format", "xml")

	_, err := decodeConfig(v)
	assert.ErrorContains(t, err, "unknown export format")
}

func TestSearchInputs(t *testing.T) {
	saved := cfg
	defer func() { cfg = saved }()
	cfg = types.Config{MaxResults: 75}

	cmd := &cobra.Command{}
	addSearchFlags(cmd, types.DefaultSearchFilters())
	require.NoError(t, cmd.Flags().Set("query", "asthma"))
	require.NoError(t, cmd.Flags().Set("phase", "PHASE2,PHASE3"))
	require.NoError(t, cmd.Flags().Set("status", "RECRUITING"))
	require.NoError(t, cmd.Flags().Set("country", "France"))
	require.NoError(t, cmd.Flags().Set("start-from", "2020-06"))

	query, filters, maxResults, err := searchInputs(cmd)
	require.NoError(t, err)
	assert.Equal(t, "asthma", query)
	assert.Equal(t, 75, maxResults)
	assert.Equal(t, "INTERVENTIONAL", filters.StudyType)
	assert.Equal(t, []string{"PHASE2", "PHASE3"}, filters.Phases)
	assert.Equal(t, []string{"RECRUITING"}, filters.Statuses)
	assert.Equal(t, []string{"France"}, filters.Countries)
	assert.Equal(t, "2020-06-01", filters.StartDateFrom.ISO())
	assert.Nil(t, filters.StartDateTo)
}

func TestSearchInputsBadDate(t *testing.T) {
	cmd := &cobra.Command{}
	addSearchFlags(cmd, types.SearchFilters{})
	require.NoError(t, cmd.Flags().Set("start-to", "next year"))

	_, _, _, err := searchInputs(cmd)
	assert.ErrorContains(t, err, "--start-to")
}

func TestSearchFlagStudyTypeDefaults(t *testing.T) {
	assert.Equal(t, "", searchCmd.Flags().Lookup("study-type").DefValue)
	for _, cmd := range []*cobra.Command{interventionalSearchCmd, phasesAnalyzeCmd, phasesExportCmd} {
		assert.Equal(t, types.DefaultStudyType, cmd.Flags().Lookup("study-type").DefValue, cmd.CommandPath())
	}
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "NCT00000001", fileSafe("NCT00000001"))
	assert.Equal(t, "NCT_1_2", fileSafe("NCT/1 2"))
}

func TestRunIDHook(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.AddHook(runIDHook{id: "abc"})
	log.Info("hello")
	assert.Equal(t, "abc", hook.LastEntry().Data["run_id"])
}

func newTestSession(t *testing.T, handler http.HandlerFunc) (*session, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	log, _ := test.NewNullLogger()
	client, err := registry.NewClient(types.FetchConfig{BaseURL: ts.URL}, log)
	require.NoError(t, err)

	var out bytes.Buffer
	return &session{
		client:   client,
		exporter: export.NewExporter(t.TempDir()),
		log:      log,
		out:      &out,
		runID:    "test-run",
		format:   types.FormatCSV,
		terms:    defaultSearchTerms,
	}, &out
}

func servePage(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, studiesPage)
}

func glob(t *testing.T, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	return matches
}

func TestSessionQueryDefaults(t *testing.T) {
	s, _ := newTestSession(t, servePage)
	assert.Equal(t, "asthma", s.query("  asthma "))
	assert.Equal(t, "interventional clinical trial phase 1 phase 2 phase 3 phase 4", s.query(""))
}

func TestSessionSearch(t *testing.T) {
	s, out := newTestSession(t, servePage)

	require.NoError(t, s.search(context.Background(), "asthma", types.SearchFilters{}, 10))

	assert.Contains(t, out.String(), "Found 2 trials")
	assert.Contains(t, out.String(), "Acme Pharma: 1")
	assert.Len(t, glob(t, filepath.Join(s.exporter.Dir, "clinical_trials_*.csv")), 1)

	reports := glob(t, filepath.Join(s.exporter.Dir, "summary_*.yaml"))
	require.Len(t, reports, 1)
	data, err := os.ReadFile(reports[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id: test-run")
	assert.Contains(t, string(data), "total_trials: 2")
}

func TestSessionFetchLogsFilters(t *testing.T) {
	s, _ := newTestSession(t, servePage)
	log, hook := test.NewNullLogger()
	s.log = log

	filters := types.SearchFilters{
		StudyType:     "INTERVENTIONAL",
		Phases:        []string{"PHASE3"},
		StartDateFrom: types.NewDate(2020, time.January, 1),
	}
	_, err := s.fetch(context.Background(), "asthma", filters, 10)
	require.NoError(t, err)

	require.NotEmpty(t, hook.Entries)
	data := hook.Entries[0].Data
	assert.Equal(t, "INTERVENTIONAL", data["study_type"])
	assert.Equal(t, []string{"PHASE3"}, data["phases"])
	assert.Equal(t, "2020-01-01", data["start_from"])
	assert.Equal(t, "", data["start_to"])
}

func TestSessionSearchNoResults(t *testing.T) {
	s, out := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"studies": []}`)
	})
	require.NoError(t, s.search(context.Background(), "nothing", types.SearchFilters{}, 10))
	assert.Contains(t, out.String(), "No trials found")
}

func TestSessionSearchFailure(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := s.search(context.Background(), "asthma", types.SearchFilters{}, 10)
	assert.ErrorContains(t, err, "search failed")
}

func TestSessionInterventionalSearch(t *testing.T) {
	s, out := newTestSession(t, servePage)

	require.NoError(t, s.interventionalSearch(context.Background(), "asthma", types.SearchFilters{}, 10, classify.Drug))

	assert.Contains(t, out.String(), "Found 1 interventional trials out of 2")
	assert.Contains(t, out.String(), "Drug Interventions: 1")
	dir := filepath.Join(s.exporter.Dir, export.InterventionalDir)
	assert.Len(t, glob(t, filepath.Join(dir, "interventional_trials_*.csv")), 1)
	assert.Len(t, glob(t, filepath.Join(s.exporter.Dir, "interventional_trials_summary_*.yaml")), 1)
}

func TestSessionInterventionalSearchCategoryMiss(t *testing.T) {
	s, out := newTestSession(t, servePage)
	require.NoError(t, s.interventionalSearch(context.Background(), "asthma", types.SearchFilters{}, 10, classify.Radiation))
	assert.Contains(t, out.String(), "No interventional trials found")
}

func TestSessionExportPhaseDates(t *testing.T) {
	s, out := newTestSession(t, servePage)

	require.NoError(t, s.exportPhaseDates(context.Background(), "asthma", types.SearchFilters{}, 10))
	assert.Contains(t, out.String(), "2 row(s) from 1 trial(s)")

	files := glob(t, filepath.Join(s.exporter.Dir, export.PhaseDatesDir, "phase_dates_*.csv"))
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Acme Pharma,DrugX,Asthma,NCT00000001,,,0,2020-01-01,2022-06-15,1")
	assert.Contains(t, string(data), "Acme Pharma,Placebo,Asthma,NCT00000001,,,0,2020-01-01,2022-06-15,1")
}

func TestSessionAnalyzePhases(t *testing.T) {
	s, out := newTestSession(t, servePage)

	require.NoError(t, s.analyzePhases(context.Background(), "asthma", types.SearchFilters{}, 10))
	assert.Contains(t, out.String(), "PHASE3:")
	assert.Contains(t, out.String(), "Percentage: 100.0%")
	assert.Contains(t, out.String(), "Common sponsors: Acme Pharma")
	dir := filepath.Join(s.exporter.Dir, export.InterventionalDir)
	assert.Len(t, glob(t, filepath.Join(dir, "phase_analysis_*.csv")), 1)
}

func TestSessionGet(t *testing.T) {
	var path string
	s, out := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `{"protocolSection": {"identificationModule": {"nctId": "NCT00000009", "briefTitle": "Device Study"},
			"armsInterventionsModule": {"interventions": [{"name": "Stent", "type": "DEVICE"}]}}}`)
	})

	require.NoError(t, s.get(context.Background(), "NCT00000009"))
	assert.Equal(t, "/NCT00000009", path)
	assert.Contains(t, out.String(), "Trial: NCT00000009")
	assert.Contains(t, out.String(), "Interventions: Stent")
	assert.Len(t, glob(t, filepath.Join(s.exporter.Dir, "trial_NCT00000009_*.csv")), 1)

	require.NoError(t, s.interventionalGet(context.Background(), "NCT00000009"))
	assert.Contains(t, out.String(), "Categories: [device]")
	dir := filepath.Join(s.exporter.Dir, export.InterventionalDir)
	assert.Len(t, glob(t, filepath.Join(dir, "interventional_trial_NCT00000009_*.csv")), 1)
}

func TestSessionGetNotFound(t *testing.T) {
	s, _ := newTestSession(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := s.get(context.Background(), "NCT99999999")
	assert.ErrorContains(t, err, "NCT99999999 not found")
}
