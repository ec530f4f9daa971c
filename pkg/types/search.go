// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchFilters narrows a registry search. All list filters are optional and
// combine with AND when present. The registry client encodes them into
// request parameters; downstream stages do not re-filter.
type SearchFilters struct {
	// StudyType restricts the study type (default "INTERVENTIONAL").
	StudyType string `json:"study_type" yaml:"study_type"`

	// Phases lists phase labels (e.g. "PHASE1", "PHASE2").
	Phases []string `json:"phases,omitempty" yaml:"phases,omitempty"`

	// Statuses lists overall statuses (e.g. "RECRUITING").
	Statuses []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`

	Conditions    []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Interventions []string `json:"interventions,omitempty" yaml:"interventions,omitempty"`
	Sponsors      []string `json:"sponsors,omitempty" yaml:"sponsors,omitempty"`
	Countries     []string `json:"countries,omitempty" yaml:"countries,omitempty"`

	// StartDateFrom and StartDateTo bound the study start date. Nil means open.
	StartDateFrom *Date `json:"start_date_from,omitempty" yaml:"start_date_from,omitempty"`
	StartDateTo   *Date `json:"start_date_to,omitempty" yaml:"start_date_to,omitempty"`
}

// DefaultSearchFilters returns filters restricted to interventional studies.
func DefaultSearchFilters() SearchFilters {
	return SearchFilters{StudyType: DefaultStudyType}
}

// PhaseDateRow is the derived Phase 1 / Phase 3 record for one product of
// one trial. Dates are ISO strings, empty when unknown.
type PhaseDateRow struct {
	Company       string `json:"Company" yaml:"company"`
	Product       string `json:"Product" yaml:"product"`
	Condition     string `json:"Disorder/Condition" yaml:"condition"`
	NCTID         string `json:"NCT ID" yaml:"nct_id"`
	Phase1Start   string `json:"Phase1 Start" yaml:"phase1_start"`
	Phase1End     string `json:"Phase1 End" yaml:"phase1_end"`
	Phase1Success int    `json:"Phase1 Success" yaml:"phase1_success"`
	Phase3Start   string `json:"Phase3 Start" yaml:"phase3_start"`
	Phase3End     string `json:"Phase3 End" yaml:"phase3_end"`
	Phase3Success int    `json:"Phase3 Success" yaml:"phase3_success"`
}
