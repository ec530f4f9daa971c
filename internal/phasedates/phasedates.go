// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package phasedates reconstructs approximate Phase 1 and Phase 3 windows for
// each product of a trial.
//
// The registry only publishes study-level dates, so the study start date
// stands in for every phase start and the primary completion date (falling
// back to the completion date) stands in for every phase end. A reached phase
// is considered successful unless the study stopped early (terminated,
// withdrawn, or suspended) without listing a later phase. Studies that are
// still running count as successful; these rows are approximations, not
// registry facts.
package phasedates

import (
	"strings"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

// stoppedStatuses end a study before its listed phases are known to succeed.
var stoppedStatuses = map[types.Status]bool{
	types.StatusTerminated: true,
	types.StatusWithdrawn:  true,
	types.StatusSuspended:  true,
}

// laterPhases lists the labels that show progression beyond a tracked phase.
var laterPhases = map[string][]string{
	"PHASE1": {"PHASE2", "PHASE3", "PHASE4"},
	"PHASE3": {"PHASE4"},
}

// Rows derives the phase-date rows for one trial: one row per intervention,
// or a single row with an empty product when the trial has none.
func Rows(t types.Trial) []types.PhaseDateRow {
	phases := strings.ToUpper(t.PhaseLabel())
	hasP1 := strings.Contains(phases, "PHASE1") || strings.Contains(phases, "EARLY_PHASE1")
	hasP3 := strings.Contains(phases, "PHASE3")

	start := t.StartDate.ISO()
	end := t.PrimaryCompletionDate.ISO()
	if t.PrimaryCompletionDate == nil {
		end = t.CompletionDate.ISO()
	}

	base := types.PhaseDateRow{
		Company:   t.LeadSponsor(),
		Condition: strings.Join(t.ConditionNames(), ", "),
		NCTID:     t.NCTID,
	}
	if hasP1 {
		base.Phase1Start, base.Phase1End = start, end
		base.Phase1Success = success(t.Status, phases, "PHASE1")
	}
	if hasP3 {
		base.Phase3Start, base.Phase3End = start, end
		base.Phase3Success = success(t.Status, phases, "PHASE3")
	}

	if len(t.Interventions) == 0 {
		return []types.PhaseDateRow{base}
	}
	rows := make([]types.PhaseDateRow, len(t.Interventions))
	for i, iv := range t.Interventions {
		rows[i] = base
		rows[i].Product = iv.Name
	}
	return rows
}

// RowsForTrials concatenates Rows for each trial in order.
func RowsForTrials(trials []types.Trial) []types.PhaseDateRow {
	var rows []types.PhaseDateRow
	for _, t := range trials {
		rows = append(rows, Rows(t)...)
	}
	return rows
}

// success scores a reached phase. phases is the uppercased phase label.
func success(status types.Status, phases, phase string) int {
	if !stoppedStatuses[status] {
		return 1
	}
	for _, later := range laterPhases[phase] {
		if strings.Contains(phases, later) {
			return 1
		}
	}
	return 0
}
