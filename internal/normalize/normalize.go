// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw ClinicalTrials.gov study payloads into
// types.Trial values. Missing fields never fail normalization; they default to
// empty or absent. Only a payload whose JSON shape cannot be decoded is
// rejected, so one malformed record never aborts a batch.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

// Study normalizes a single study payload. It returns an error only when the
// payload is not a JSON object or a section has the wrong JSON shape. Phases,
// enrollment count, and study population of the wrong type read as absent.
func Study(raw json.RawMessage) (types.Trial, error) {
	var s studyPayload
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Trial{}, fmt.Errorf("decoding study payload: %w", err)
	}
	if s.ProtocolSection == nil {
		// A bare JSON value such as null or a string decodes without error.
		if !isObject(raw) {
			return types.Trial{}, fmt.Errorf("study payload is not a JSON object")
		}
		s.ProtocolSection = &protocolSection{}
	}
	p := s.ProtocolSection

	t := types.Trial{
		NCTID:                 p.Identification.NCTID,
		BriefTitle:            p.Identification.BriefTitle,
		OfficialTitle:         p.Identification.OfficialTitle,
		Status:                types.Status(p.Status.OverallStatus),
		StudyType:             p.Design.StudyType,
		StartDate:             types.ParseDate(p.Status.StartDateStruct.Date),
		CompletionDate:        types.ParseDate(p.Status.CompletionDateStruct.Date),
		PrimaryCompletionDate: types.ParseDate(p.Status.PrimaryCompletionDateStruct.Date),
		Raw:                   raw,
	}
	if t.StudyType == "" {
		t.StudyType = types.DefaultStudyType
	}

	if phases := p.Design.phases(); len(phases) > 0 {
		phase := strings.Join(phases, types.PhaseSeparator)
		t.CurrentPhase = &phase
	}

	t.Enrollment = p.Design.enrollment()
	if pop := p.Eligibility.studyPopulation(); pop != "" {
		t.StudyPopulation = &pop
	}

	for _, name := range p.Conditions.Conditions {
		t.Conditions = append(t.Conditions, types.Condition{Name: name})
	}

	for _, iv := range p.ArmsInterventions.Interventions {
		t.Interventions = append(t.Interventions, types.Intervention{
			Name:        iv.Name,
			Type:        iv.Type,
			Description: iv.Description,
		})
	}

	if lead := p.SponsorCollaborators.LeadSponsor; lead != nil {
		t.Sponsors = []types.Sponsor{{Name: lead.Name, Type: lead.Class}}
	}

	for _, loc := range p.ContactsLocations.Locations {
		t.Locations = append(t.Locations, loc.toLocation())
	}

	return t, nil
}

// Studies normalizes a batch of payloads in order. Payloads that fail are
// logged and skipped; the number skipped is returned alongside the trials.
func Studies(raws []json.RawMessage, log *logrus.Logger) ([]types.Trial, int) {
	trials := make([]types.Trial, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		t, err := Study(raw)
		if err != nil {
			skipped++
			if log != nil {
				log.WithFields(logrus.Fields{"index": i, "error": err}).Warn("skipping malformed study")
			}
			continue
		}
		trials = append(trials, t)
	}
	return trials, skipped
}

func isObject(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return strings.HasPrefix(s, "{")
}
