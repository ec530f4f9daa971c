// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"encoding/json"
	"math"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

// ClinicalTrials.gov v2 study JSON structures. Only the fields the pipeline
// reads are declared; everything else is ignored by the decoder.
type studyPayload struct {
	ProtocolSection *protocolSection `json:"protocolSection"`
}

type protocolSection struct {
	Identification       identificationModule       `json:"identificationModule"`
	Status               statusModule               `json:"statusModule"`
	Design               designModule               `json:"designModule"`
	Conditions           conditionsModule           `json:"conditionsModule"`
	ArmsInterventions    interventionsModule        `json:"armsInterventionsModule"`
	SponsorCollaborators sponsorCollaboratorsModule `json:"sponsorCollaboratorsModule"`
	ContactsLocations    locationsModule            `json:"contactsLocationsModule"`
	Eligibility          eligibilityModule          `json:"eligibilityModule"`
}

// UnmarshalJSON also accepts the older "interventionsModule" and
// "locationsModule" section names.
func (p *protocolSection) UnmarshalJSON(data []byte) error {
	type plain protocolSection
	var aux struct {
		plain
		LegacyInterventions *interventionsModule `json:"interventionsModule"`
		LegacyLocations     *locationsModule     `json:"locationsModule"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = protocolSection(aux.plain)
	if len(p.ArmsInterventions.Interventions) == 0 && aux.LegacyInterventions != nil {
		p.ArmsInterventions = *aux.LegacyInterventions
	}
	if len(p.ContactsLocations.Locations) == 0 && aux.LegacyLocations != nil {
		p.ContactsLocations = *aux.LegacyLocations
	}
	return nil
}

type identificationModule struct {
	NCTID         string `json:"nctId"`
	BriefTitle    string `json:"briefTitle"`
	OfficialTitle string `json:"officialTitle"`
}

type dateStruct struct {
	Date string `json:"date"`
}

type statusModule struct {
	OverallStatus               string     `json:"overallStatus"`
	StartDateStruct             dateStruct `json:"startDateStruct"`
	CompletionDateStruct        dateStruct `json:"completionDateStruct"`
	PrimaryCompletionDateStruct dateStruct `json:"primaryCompletionDateStruct"`
}

// designModule keeps its optional leaves raw; a leaf of the wrong type
// decodes as absent instead of rejecting the study.
type designModule struct {
	StudyType      string          `json:"studyType"`
	Phases         json.RawMessage `json:"phases"`
	EnrollmentInfo json.RawMessage `json:"enrollmentInfo"`
}

func (d designModule) phases() []string {
	var phases []string
	if json.Unmarshal(d.Phases, &phases) != nil {
		return nil
	}
	return phases
}

// enrollment accepts integral counts, including "120.0" and quoted numbers.
func (d designModule) enrollment() *int {
	var info struct {
		Count json.Number `json:"count"`
	}
	if json.Unmarshal(d.EnrollmentInfo, &info) != nil || info.Count == "" {
		return nil
	}
	f, err := info.Count.Float64()
	if err != nil || f != math.Trunc(f) {
		return nil
	}
	n := int(f)
	return &n
}

type conditionsModule struct {
	Conditions []string `json:"conditions"`
}

type interventionsModule struct {
	Interventions []interventionPayload `json:"interventions"`
}

type interventionPayload struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
}

type sponsorCollaboratorsModule struct {
	LeadSponsor *leadSponsor `json:"leadSponsor"`
}

type leadSponsor struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

type locationsModule struct {
	Locations []locationPayload `json:"locations"`
}

// locationPayload accepts facility either as a sub-object carrying the
// address, or as a plain name with the address on the location itself.
type locationPayload struct {
	Facility json.RawMessage `json:"facility"`
	City     string          `json:"city"`
	State    string          `json:"state"`
	Country  string          `json:"country"`
}

type facilityPayload struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func (l locationPayload) toLocation() types.Location {
	var f facilityPayload
	if err := json.Unmarshal(l.Facility, &f); err != nil {
		var name string
		if json.Unmarshal(l.Facility, &name) == nil {
			f.Name = name
		}
		f.City, f.State, f.Country = l.City, l.State, l.Country
	}

	loc := types.Location{
		Facility: f.Name,
		City:     firstNonEmpty(f.City, l.City),
		Country:  firstNonEmpty(f.Country, l.Country),
	}
	if state := firstNonEmpty(f.State, l.State); state != "" {
		loc.State = &state
	}
	return loc
}

type eligibilityModule struct {
	StudyPopulation json.RawMessage `json:"studyPopulation"`
}

func (e eligibilityModule) studyPopulation() string {
	var pop string
	if json.Unmarshal(e.StudyPopulation, &pop) != nil {
		return ""
	}
	return pop
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
