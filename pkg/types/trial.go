// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the clinical-trials pipeline:
// the normalized trial model, search filters, registry dates, derived
// phase-date rows, and stage configuration.
package types

import (
	"encoding/json"
	"strings"
)

// Status is the registry's overall recruitment status for a study.
type Status string

const (
	StatusRecruiting            Status = "RECRUITING"
	StatusCompleted             Status = "COMPLETED"
	StatusTerminated            Status = "TERMINATED"
	StatusWithdrawn             Status = "WITHDRAWN"
	StatusSuspended             Status = "SUSPENDED"
	StatusActiveNotRecruiting   Status = "ACTIVE_NOT_RECRUITING"
	StatusNotYetRecruiting      Status = "NOT_YET_RECRUITING"
	StatusEnrollingByInvitation Status = "ENROLLING_BY_INVITATION"
	StatusUnknown               Status = "UNKNOWN"
)

// DefaultStudyType is used when the registry does not report a study type.
const DefaultStudyType = "INTERVENTIONAL"

// PhaseSeparator joins phase labels in Trial.CurrentPhase.
const PhaseSeparator = ", "

// Intervention is a treatment or product under study.
type Intervention struct {
	// Name is the intervention name as registered (e.g. "Pembrolizumab").
	Name string `json:"name" yaml:"name"`

	// Type is the registry's free-text intervention type (e.g. "DRUG").
	Type string `json:"type" yaml:"type"`

	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Condition is a disorder or condition the trial studies.
type Condition struct {
	Name        string  `json:"name" yaml:"name"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Sponsor is an organization sponsoring the trial.
type Sponsor struct {
	Name string `json:"name" yaml:"name"`

	// Type is the sponsor class (e.g. "INDUSTRY", "NIH", "OTHER").
	Type string `json:"type" yaml:"type"`
}

// Location is a trial site.
type Location struct {
	Facility string  `json:"facility" yaml:"facility"`
	City     string  `json:"city" yaml:"city"`
	State    *string `json:"state,omitempty" yaml:"state,omitempty"`
	Country  string  `json:"country" yaml:"country"`
}

// Trial is a normalized registry study. A Trial is built once by the
// normalizer and never modified afterwards.
type Trial struct {
	// NCTID is the registry identifier (e.g. "NCT01234567").
	NCTID string `json:"nct_id" yaml:"nct_id"`

	BriefTitle    string `json:"brief_title" yaml:"brief_title"`
	OfficialTitle string `json:"official_title" yaml:"official_title"`

	// Status is the overall recruitment status. Values outside the known
	// vocabulary are kept verbatim.
	Status Status `json:"status" yaml:"status"`

	// CurrentPhase holds the phase labels joined with PhaseSeparator
	// (e.g. "PHASE1, PHASE2"). Nil when the registry lists no phase.
	CurrentPhase *string `json:"current_phase,omitempty" yaml:"current_phase,omitempty"`

	// StudyType is the registry study type (e.g. "INTERVENTIONAL", "OBSERVATIONAL").
	StudyType string `json:"study_type" yaml:"study_type"`

	StartDate             *Date `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	CompletionDate        *Date `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	PrimaryCompletionDate *Date `json:"primary_completion_date,omitempty" yaml:"primary_completion_date,omitempty"`

	Conditions    []Condition    `json:"conditions" yaml:"conditions"`
	Interventions []Intervention `json:"interventions" yaml:"interventions"`

	// Sponsors lists sponsoring organizations; the lead sponsor is first.
	Sponsors  []Sponsor  `json:"sponsors" yaml:"sponsors"`
	Locations []Location `json:"locations" yaml:"locations"`

	Enrollment      *int    `json:"enrollment,omitempty" yaml:"enrollment,omitempty"`
	StudyPopulation *string `json:"study_population,omitempty" yaml:"study_population,omitempty"`

	// Raw is the source payload, kept for diagnostics only.
	Raw json.RawMessage `json:"-" yaml:"-"`
}

// Phases returns the individual phase labels of CurrentPhase.
func (t Trial) Phases() []string {
	if t.CurrentPhase == nil || *t.CurrentPhase == "" {
		return nil
	}
	return strings.Split(*t.CurrentPhase, PhaseSeparator)
}

// PhaseLabel returns CurrentPhase or "" when unset.
func (t Trial) PhaseLabel() string {
	if t.CurrentPhase == nil {
		return ""
	}
	return *t.CurrentPhase
}

// LeadSponsor returns the first sponsor's name, or "" when there is none.
func (t Trial) LeadSponsor() string {
	if len(t.Sponsors) == 0 {
		return ""
	}
	return t.Sponsors[0].Name
}

// ConditionNames returns the names of the trial's conditions in order.
func (t Trial) ConditionNames() []string {
	names := make([]string, len(t.Conditions))
	for i, c := range t.Conditions {
		names[i] = c.Name
	}
	return names
}
