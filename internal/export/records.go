// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strconv"
	"strings"

	"github.com/pdiddy/clinical-trials/internal/classify"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

// listSeparator joins list-valued fields in flat records.
const listSeparator = "; "

// TrialRecord is the flat export form of a trial. Field order and JSON keys
// are the column labels of the general export. Nil pointers export as JSON
// null and as empty CSV cells.
type TrialRecord struct {
	NCTID                 string  `json:"NCT ID"`
	BriefTitle            string  `json:"Brief Title"`
	OfficialTitle         string  `json:"Official Title"`
	Status                string  `json:"Status"`
	CurrentPhase          *string `json:"Current Phase"`
	StartDate             *string `json:"Start Date"`
	CompletionDate        *string `json:"Completion Date"`
	PrimaryCompletionDate *string `json:"Primary Completion Date"`
	Conditions            string  `json:"Conditions"`
	Interventions         string  `json:"Interventions"`
	Sponsors              string  `json:"Sponsors"`
	Locations             string  `json:"Locations"`
	StudyType             string  `json:"Study Type"`
	Enrollment            *int    `json:"Enrollment"`
	StudyPopulation       *string `json:"Study Population"`
}

var trialHeader = []string{
	"NCT ID", "Brief Title", "Official Title", "Status", "Current Phase",
	"Start Date", "Completion Date", "Primary Completion Date", "Conditions",
	"Interventions", "Sponsors", "Locations", "Study Type", "Enrollment",
	"Study Population",
}

// NewTrialRecord flattens t.
func NewTrialRecord(t types.Trial) TrialRecord {
	return TrialRecord{
		NCTID:                 t.NCTID,
		BriefTitle:            t.BriefTitle,
		OfficialTitle:         t.OfficialTitle,
		Status:                string(t.Status),
		CurrentPhase:          t.CurrentPhase,
		StartDate:             isoPtr(t.StartDate),
		CompletionDate:        isoPtr(t.CompletionDate),
		PrimaryCompletionDate: isoPtr(t.PrimaryCompletionDate),
		Conditions:            strings.Join(t.ConditionNames(), listSeparator),
		Interventions:         joinInterventions(t.Interventions),
		Sponsors:              joinSponsorNames(t.Sponsors),
		Locations:             joinLocations(t.Locations),
		StudyType:             t.StudyType,
		Enrollment:            t.Enrollment,
		StudyPopulation:       t.StudyPopulation,
	}
}

func (r TrialRecord) csvRow() []string {
	return []string{
		r.NCTID, r.BriefTitle, r.OfficialTitle, r.Status, deref(r.CurrentPhase),
		deref(r.StartDate), deref(r.CompletionDate), deref(r.PrimaryCompletionDate),
		r.Conditions, r.Interventions, r.Sponsors, r.Locations, r.StudyType,
		intCell(r.Enrollment), deref(r.StudyPopulation),
	}
}

// InterventionalRecord is the extended flat form used by interventional
// exports. It adds phase details, intervention breakdowns, and boolean
// category, phase, and status flags.
type InterventionalRecord struct {
	NCTID         string `json:"NCT ID"`
	BriefTitle    string `json:"Brief Title"`
	OfficialTitle string `json:"Official Title"`
	StudyType     string `json:"Study Type"`

	RecruitmentStatus string  `json:"Recruitment Status"`
	CurrentPhase      *string `json:"Current Phase"`
	PhaseDetails      string  `json:"Phase Details"`

	StartDate             *string `json:"Start Date"`
	CompletionDate        *string `json:"Completion Date"`
	PrimaryCompletionDate *string `json:"Primary Completion Date"`

	ConditionsTreated string `json:"Conditions Treated"`
	Interventions     string `json:"Interventions"`
	InterventionTypes string `json:"Intervention Types"`
	InterventionNames string `json:"Intervention Names"`

	LeadSponsor  *string `json:"Lead Sponsor"`
	AllSponsors  string  `json:"All Sponsors"`
	SponsorTypes string  `json:"Sponsor Types"`

	StudyLocations string `json:"Study Locations"`
	Countries      string `json:"Countries"`
	Cities         string `json:"Cities"`

	Enrollment       *int    `json:"Enrollment"`
	StudyPopulation  *string `json:"Study Population"`
	IsInterventional bool    `json:"Is Interventional"`

	HasDrug       bool `json:"Has Drug Intervention"`
	HasDevice     bool `json:"Has Device Intervention"`
	HasProcedure  bool `json:"Has Procedure Intervention"`
	HasBehavioral bool `json:"Has Behavioral Intervention"`
	HasBiological bool `json:"Has Biological Intervention"`
	HasRadiation  bool `json:"Has Radiation Intervention"`

	IsPhase0 bool `json:"Is Phase 0"`
	IsPhase1 bool `json:"Is Phase 1"`
	IsPhase2 bool `json:"Is Phase 2"`
	IsPhase3 bool `json:"Is Phase 3"`
	IsPhase4 bool `json:"Is Phase 4"`

	IsRecruiting          bool `json:"Is Recruiting"`
	IsCompleted           bool `json:"Is Completed"`
	IsTerminated          bool `json:"Is Terminated"`
	IsSuspended           bool `json:"Is Suspended"`
	IsNotYetRecruiting    bool `json:"Is Not Yet Recruiting"`
	IsActiveNotRecruiting bool `json:"Is Active Not Recruiting"`
}

var interventionalHeader = []string{
	"NCT ID", "Brief Title", "Official Title", "Study Type",
	"Recruitment Status", "Current Phase", "Phase Details",
	"Start Date", "Completion Date", "Primary Completion Date",
	"Conditions Treated", "Interventions", "Intervention Types", "Intervention Names",
	"Lead Sponsor", "All Sponsors", "Sponsor Types",
	"Study Locations", "Countries", "Cities",
	"Enrollment", "Study Population", "Is Interventional",
	"Has Drug Intervention", "Has Device Intervention", "Has Procedure Intervention",
	"Has Behavioral Intervention", "Has Biological Intervention", "Has Radiation Intervention",
	"Is Phase 0", "Is Phase 1", "Is Phase 2", "Is Phase 3", "Is Phase 4",
	"Is Recruiting", "Is Completed", "Is Terminated", "Is Suspended",
	"Is Not Yet Recruiting", "Is Active Not Recruiting",
}

// phaseDetails maps phase labels to their descriptive names, in report order.
var phaseDetails = []struct {
	label, detail string
}{
	{"PHASE0", "Phase 0 (Exploratory)"},
	{"PHASE1", "Phase 1 (Safety)"},
	{"PHASE2", "Phase 2 (Efficacy)"},
	{"PHASE3", "Phase 3 (Confirmation)"},
	{"PHASE4", "Phase 4 (Post-marketing)"},
}

// NewInterventionalRecord flattens t into the extended interventional form.
func NewInterventionalRecord(t types.Trial) InterventionalRecord {
	r := InterventionalRecord{
		NCTID:                 t.NCTID,
		BriefTitle:            t.BriefTitle,
		OfficialTitle:         t.OfficialTitle,
		StudyType:             t.StudyType,
		RecruitmentStatus:     string(t.Status),
		CurrentPhase:          t.CurrentPhase,
		PhaseDetails:          describePhases(t),
		StartDate:             isoPtr(t.StartDate),
		CompletionDate:        isoPtr(t.CompletionDate),
		PrimaryCompletionDate: isoPtr(t.PrimaryCompletionDate),
		ConditionsTreated:     strings.Join(t.ConditionNames(), listSeparator),
		Interventions:         joinInterventions(t.Interventions),
		AllSponsors:           joinSponsorNames(t.Sponsors),
		StudyLocations:        joinLocations(t.Locations),
		Enrollment:            t.Enrollment,
		StudyPopulation:       t.StudyPopulation,
		IsInterventional:      classify.IsInterventional(t),

		HasDrug:       classify.HasCategory(t, classify.Drug),
		HasDevice:     classify.HasCategory(t, classify.Device),
		HasProcedure:  classify.HasCategory(t, classify.Procedure),
		HasBehavioral: classify.HasCategory(t, classify.Behavioral),
		HasBiological: classify.HasCategory(t, classify.Biological),
		HasRadiation:  classify.HasCategory(t, classify.Radiation),

		IsPhase0: classify.HasPhase(t, "PHASE0"),
		IsPhase1: classify.HasPhase(t, "PHASE1"),
		IsPhase2: classify.HasPhase(t, "PHASE2"),
		IsPhase3: classify.HasPhase(t, "PHASE3"),
		IsPhase4: classify.HasPhase(t, "PHASE4"),

		IsRecruiting:          t.Status == types.StatusRecruiting,
		IsCompleted:           t.Status == types.StatusCompleted,
		IsTerminated:          t.Status == types.StatusTerminated,
		IsSuspended:           t.Status == types.StatusSuspended,
		IsNotYetRecruiting:    t.Status == types.StatusNotYetRecruiting,
		IsActiveNotRecruiting: t.Status == types.StatusActiveNotRecruiting,
	}

	var ivTypes, ivNames []string
	for _, iv := range t.Interventions {
		ivTypes = append(ivTypes, iv.Type)
		ivNames = append(ivNames, iv.Name)
	}
	r.InterventionTypes = strings.Join(ivTypes, listSeparator)
	r.InterventionNames = strings.Join(ivNames, listSeparator)

	if len(t.Sponsors) > 0 {
		lead := t.LeadSponsor()
		r.LeadSponsor = &lead
	}
	var sponsorTypes []string
	for _, s := range t.Sponsors {
		sponsorTypes = append(sponsorTypes, s.Type)
	}
	r.SponsorTypes = strings.Join(sponsorTypes, listSeparator)

	var countries, cities []string
	for _, l := range t.Locations {
		countries = append(countries, l.Country)
		cities = append(cities, l.City)
	}
	r.Countries = strings.Join(unique(countries), listSeparator)
	r.Cities = strings.Join(unique(cities), listSeparator)

	return r
}

func (r InterventionalRecord) csvRow() []string {
	b := strconv.FormatBool
	return []string{
		r.NCTID, r.BriefTitle, r.OfficialTitle, r.StudyType,
		r.RecruitmentStatus, deref(r.CurrentPhase), r.PhaseDetails,
		deref(r.StartDate), deref(r.CompletionDate), deref(r.PrimaryCompletionDate),
		r.ConditionsTreated, r.Interventions, r.InterventionTypes, r.InterventionNames,
		deref(r.LeadSponsor), r.AllSponsors, r.SponsorTypes,
		r.StudyLocations, r.Countries, r.Cities,
		intCell(r.Enrollment), deref(r.StudyPopulation), b(r.IsInterventional),
		b(r.HasDrug), b(r.HasDevice), b(r.HasProcedure),
		b(r.HasBehavioral), b(r.HasBiological), b(r.HasRadiation),
		b(r.IsPhase0), b(r.IsPhase1), b(r.IsPhase2), b(r.IsPhase3), b(r.IsPhase4),
		b(r.IsRecruiting), b(r.IsCompleted), b(r.IsTerminated), b(r.IsSuspended),
		b(r.IsNotYetRecruiting), b(r.IsActiveNotRecruiting),
	}
}

var phaseDateHeader = []string{
	"Company", "Product", "Disorder/Condition", "NCT ID",
	"Phase1 Start", "Phase1 End", "Phase1 Success",
	"Phase3 Start", "Phase3 End", "Phase3 Success",
}

func phaseDateRow(r types.PhaseDateRow) []string {
	return []string{
		r.Company, r.Product, r.Condition, r.NCTID,
		r.Phase1Start, r.Phase1End, strconv.Itoa(r.Phase1Success),
		r.Phase3Start, r.Phase3End, strconv.Itoa(r.Phase3Success),
	}
}

// describePhases renders "Phase 1 (Safety); Phase 2 (Efficacy)" style text.
func describePhases(t types.Trial) string {
	if t.CurrentPhase == nil || *t.CurrentPhase == "" {
		return "Not specified"
	}
	var details []string
	for _, pd := range phaseDetails {
		if classify.HasPhase(t, pd.label) {
			details = append(details, pd.detail)
		}
	}
	if len(details) == 0 {
		return *t.CurrentPhase
	}
	return strings.Join(details, listSeparator)
}

func joinInterventions(ivs []types.Intervention) string {
	parts := make([]string, len(ivs))
	for i, iv := range ivs {
		parts[i] = iv.Name + " (" + iv.Type + ")"
	}
	return strings.Join(parts, listSeparator)
}

func joinSponsorNames(sponsors []types.Sponsor) string {
	names := make([]string, len(sponsors))
	for i, s := range sponsors {
		names[i] = s.Name
	}
	return strings.Join(names, listSeparator)
}

func joinLocations(locs []types.Location) string {
	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = l.Facility + ", " + l.City + ", " + l.Country
	}
	return strings.Join(parts, listSeparator)
}

// unique drops repeated and empty values, keeping first appearances.
func unique(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	var out []string
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func isoPtr(d *types.Date) *string {
	if d == nil {
		return nil
	}
	s := d.ISO()
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
