// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

const sampleStudyJSON = `{
  "protocolSection": {
    "identificationModule": {
      "nctId": "NCT04368728",
      "briefTitle": "Study to Describe the Safety of an RNA Vaccine",
      "officialTitle": "A Phase 1/2/3, Placebo-Controlled, Randomized Study"
    },
    "statusModule": {
      "overallStatus": "ACTIVE_NOT_RECRUITING",
      "startDateStruct": {"date": "2020-04-29", "type": "ACTUAL"},
      "primaryCompletionDateStruct": {"date": "2023-02", "type": "ACTUAL"},
      "completionDateStruct": {"date": "2024", "type": "ESTIMATED"}
    },
    "sponsorCollaboratorsModule": {
      "leadSponsor": {"name": "BioNTech SE", "class": "INDUSTRY"},
      "collaborators": [{"name": "Pfizer", "class": "INDUSTRY"}]
    },
    "conditionsModule": {"conditions": ["SARS-CoV-2 Infection", "COVID-19"]},
    "designModule": {
      "studyType": "INTERVENTIONAL",
      "phases": ["PHASE2", "PHASE3"],
      "enrollmentInfo": {"count": 47079, "type": "ACTUAL"}
    },
    "armsInterventionsModule": {
      "interventions": [
        {"type": "BIOLOGICAL", "name": "BNT162b2", "description": "Intramuscular injection"},
        {"type": "OTHER", "name": "Placebo"}
      ]
    },
    "contactsLocationsModule": {
      "locations": [
        {"facility": "Research Site", "city": "Birmingham", "state": "Alabama", "country": "United States"},
        {"facility": {"name": "Charite", "city": "Berlin", "country": "Germany"}}
      ]
    },
    "eligibilityModule": {"studyPopulation": "Healthy adults"}
  }
}`

func TestStudy(t *testing.T) {
	tr, err := Study(json.RawMessage(sampleStudyJSON))
	require.NoError(t, err)

	assert.Equal(t, "NCT04368728", tr.NCTID)
	assert.Equal(t, "Study to Describe the Safety of an RNA Vaccine", tr.BriefTitle)
	assert.Equal(t, "A Phase 1/2/3, Placebo-Controlled, Randomized Study", tr.OfficialTitle)
	assert.Equal(t, types.StatusActiveNotRecruiting, tr.Status)
	assert.Equal(t, "INTERVENTIONAL", tr.StudyType)

	require.NotNil(t, tr.CurrentPhase)
	assert.Equal(t, "PHASE2, PHASE3", *tr.CurrentPhase)

	assert.Equal(t, "2020-04-29", tr.StartDate.ISO())
	assert.Equal(t, "2023-02-01", tr.PrimaryCompletionDate.ISO())
	assert.Equal(t, types.PrecisionMonth, tr.PrimaryCompletionDate.Precision)
	assert.Equal(t, "2024-01-01", tr.CompletionDate.ISO())

	require.Len(t, tr.Conditions, 2)
	assert.Equal(t, "COVID-19", tr.Conditions[1].Name)
	assert.Nil(t, tr.Conditions[0].Description)

	require.Len(t, tr.Interventions, 2)
	assert.Equal(t, "BNT162b2", tr.Interventions[0].Name)
	assert.Equal(t, "BIOLOGICAL", tr.Interventions[0].Type)
	require.NotNil(t, tr.Interventions[0].Description)
	assert.Equal(t, "Intramuscular injection", *tr.Interventions[0].Description)
	assert.Nil(t, tr.Interventions[1].Description)

	// Only the lead sponsor is kept.
	require.Len(t, tr.Sponsors, 1)
	assert.Equal(t, types.Sponsor{Name: "BioNTech SE", Type: "INDUSTRY"}, tr.Sponsors[0])

	require.Len(t, tr.Locations, 2)
	assert.Equal(t, "Research Site", tr.Locations[0].Facility)
	assert.Equal(t, "Birmingham", tr.Locations[0].City)
	require.NotNil(t, tr.Locations[0].State)
	assert.Equal(t, "Alabama", *tr.Locations[0].State)
	assert.Equal(t, "United States", tr.Locations[0].Country)
	assert.Equal(t, "Charite", tr.Locations[1].Facility)
	assert.Equal(t, "Berlin", tr.Locations[1].City)
	assert.Nil(t, tr.Locations[1].State)
	assert.Equal(t, "Germany", tr.Locations[1].Country)

	require.NotNil(t, tr.Enrollment)
	assert.Equal(t, 47079, *tr.Enrollment)
	require.NotNil(t, tr.StudyPopulation)
	assert.Equal(t, "Healthy adults", *tr.StudyPopulation)

	assert.JSONEq(t, sampleStudyJSON, string(tr.Raw))
}

func TestStudyMissingFieldsDefault(t *testing.T) {
	tr, err := Study(json.RawMessage(`{"protocolSection": {}}`))
	require.NoError(t, err)

	assert.Equal(t, "", tr.NCTID)
	assert.Equal(t, types.Status(""), tr.Status)
	assert.Nil(t, tr.CurrentPhase)
	assert.Nil(t, tr.StartDate)
	assert.Nil(t, tr.CompletionDate)
	assert.Nil(t, tr.PrimaryCompletionDate)
	assert.Empty(t, tr.Conditions)
	assert.Empty(t, tr.Interventions)
	assert.Empty(t, tr.Sponsors)
	assert.Empty(t, tr.Locations)
	assert.Nil(t, tr.Enrollment)
	assert.Nil(t, tr.StudyPopulation)
	assert.Equal(t, types.DefaultStudyType, tr.StudyType)
}

func TestStudyEmptyObject(t *testing.T) {
	tr, err := Study(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "", tr.NCTID)
}

func TestStudyUnparseableDates(t *testing.T) {
	raw := `{"protocolSection": {"statusModule": {
		"startDateStruct": {"date": "sometime in 2020"},
		"completionDateStruct": {"date": ""},
		"primaryCompletionDateStruct": {}
	}}}`
	tr, err := Study(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Nil(t, tr.StartDate)
	assert.Nil(t, tr.CompletionDate)
	assert.Nil(t, tr.PrimaryCompletionDate)
}

func TestStudyEmptyPhases(t *testing.T) {
	raw := `{"protocolSection": {"designModule": {"phases": []}}}`
	tr, err := Study(json.RawMessage(raw))
	require.NoError(t, err)
	assert.Nil(t, tr.CurrentPhase)
}

func TestStudyLegacySectionNames(t *testing.T) {
	raw := `{"protocolSection": {
		"interventionsModule": {"interventions": [{"name": "DrugX", "type": "Drug"}]},
		"locationsModule": {"locations": [{"facility": {"name": "General Hospital", "city": "Boston", "state": "MA", "country": "United States"}}]}
	}}`
	tr, err := Study(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, tr.Interventions, 1)
	assert.Equal(t, "DrugX", tr.Interventions[0].Name)
	require.Len(t, tr.Locations, 1)
	assert.Equal(t, "General Hospital", tr.Locations[0].Facility)
	assert.Equal(t, "Boston", tr.Locations[0].City)
}

func TestStudyLocationWithoutFacility(t *testing.T) {
	raw := `{"protocolSection": {"contactsLocationsModule": {"locations": [{"city": "Lyon", "country": "France"}]}}}`
	tr, err := Study(json.RawMessage(raw))
	require.NoError(t, err)
	require.Len(t, tr.Locations, 1)
	assert.Equal(t, types.Location{Facility: "", City: "Lyon", Country: "France"}, tr.Locations[0])
}

func TestStudyMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{not json`},
		{"string payload", `"NCT00000001"`},
		{"null payload", `null`},
		{"array payload", `[1, 2]`},
		{"design section not an object", `{"protocolSection": {"designModule": ["PHASE3"]}}`},
		{"eligibility section not an object", `{"protocolSection": {"eligibilityModule": "adults"}}`},
		{"conditions wrong shape", `{"protocolSection": {"conditionsModule": {"conditions": 7}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Study(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestStudyWrongTypedLeavesReadAsAbsent(t *testing.T) {
	tests := []struct {
		name   string
		design string
		elig   string
	}{
		{"count not a number", `{"enrollmentInfo": {"count": "n/a"}}`, `{}`},
		{"count fractional", `{"enrollmentInfo": {"count": 12.5}}`, `{}`},
		{"enrollment info not an object", `{"enrollmentInfo": 120}`, `{}`},
		{"phases a string", `{"phases": "PHASE1"}`, `{}`},
		{"phases mixed", `{"phases": ["PHASE1", 2]}`, `{}`},
		{"population an object", `{}`, `{"studyPopulation": {"x": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"protocolSection": {"identificationModule": {"nctId": "NCT1"},
				"designModule": ` + tt.design + `, "eligibilityModule": ` + tt.elig + `}}`
			tr, err := Study(json.RawMessage(raw))
			require.NoError(t, err)
			assert.Equal(t, "NCT1", tr.NCTID)
			assert.Nil(t, tr.Enrollment)
			assert.Nil(t, tr.CurrentPhase)
			assert.Nil(t, tr.StudyPopulation)
		})
	}
}

func TestStudyEnrollmentCountForms(t *testing.T) {
	for _, count := range []string{`120`, `120.0`, `"120"`} {
		raw := `{"protocolSection": {"designModule": {"enrollmentInfo": {"count": ` + count + `}}}}`
		tr, err := Study(json.RawMessage(raw))
		require.NoError(t, err, count)
		require.NotNil(t, tr.Enrollment, count)
		assert.Equal(t, 120, *tr.Enrollment, count)
	}
}

func TestStudiesSkipsMalformed(t *testing.T) {
	log, hook := test.NewNullLogger()

	raws := []json.RawMessage{
		json.RawMessage(`{"protocolSection": {"identificationModule": {"nctId": "NCT00000001"}}}`),
		json.RawMessage(`"broken"`),
		json.RawMessage(`{"protocolSection": {"identificationModule": {"nctId": "NCT00000002"}}}`),
	}

	trials, skipped := Studies(raws, log)
	assert.Equal(t, 1, skipped)
	require.Len(t, trials, 2)
	assert.Equal(t, "NCT00000001", trials[0].NCTID)
	assert.Equal(t, "NCT00000002", trials[1].NCTID)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 1, hook.LastEntry().Data["index"])
}

func TestStudiesNilLogger(t *testing.T) {
	trials, skipped := Studies([]json.RawMessage{json.RawMessage(`[]`)}, nil)
	assert.Empty(t, trials)
	assert.Equal(t, 1, skipped)
}
