// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a trial is interventional and which
// intervention categories it covers. Both are keyword heuristics over the
// normalized trial, not registry-authoritative labels.
package classify

import (
	"fmt"
	"strings"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

// Category is a coarse intervention category derived from intervention types.
type Category string

const (
	Drug       Category = "drug"
	Device     Category = "device"
	Procedure  Category = "procedure"
	Behavioral Category = "behavioral"
	Biological Category = "biological"
	Radiation  Category = "radiation"
)

// categoryKeywords is evaluated in table order. An intervention type matches
// a category when its lowercased text contains any of the keywords.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{Drug, []string{"drug", "medication", "pharmaceutical", "compound", "agent", "therapy"}},
	{Device, []string{"device", "equipment", "instrument", "apparatus", "tool"}},
	{Procedure, []string{"procedure", "surgery", "surgical", "operation", "technique"}},
	{Behavioral, []string{"behavioral", "behavior", "psychological", "psychotherapy", "counseling", "education"}},
	{Biological, []string{"biological", "biologic", "vaccine", "immunotherapy", "cell therapy", "gene therapy"}},
	{Radiation, []string{"radiation", "radiotherapy", "irradiation", "radioactive"}},
}

// titleKeywords mark a trial as interventional when found in its titles.
var titleKeywords = []string{
	"clinical trial", "intervention", "treatment", "therapy", "drug",
	"medication", "device", "procedure", "surgery", "randomized",
	"controlled", "phase", "dose", "efficacy",
}

// AllCategories returns every category in table order.
func AllCategories() []Category {
	out := make([]Category, len(categoryKeywords))
	for i, ck := range categoryKeywords {
		out[i] = ck.category
	}
	return out
}

// ParseCategory maps a category name (case-insensitive) to a Category.
func ParseCategory(s string) (Category, error) {
	name := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, ck := range categoryKeywords {
		if ck.category == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown intervention category %q (want one of %s)", s, joinCategories(AllCategories()))
}

// Label returns the display name used in reports (e.g. "Drug").
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// IsInterventional reports whether t looks like an interventional study.
// The checks run in a fixed order and the first match wins: the study type,
// then the presence of interventions, then a phase other than "" or "NA", then
// title keywords.
func IsInterventional(t types.Trial) bool {
	if strings.Contains(strings.ToUpper(t.StudyType), "INTERVENTIONAL") {
		return true
	}
	if len(t.Interventions) > 0 {
		return true
	}
	if t.CurrentPhase != nil && *t.CurrentPhase != "" && *t.CurrentPhase != "NA" {
		return true
	}
	title := strings.ToLower(t.BriefTitle + " " + t.OfficialTitle)
	return containsAny(title, titleKeywords)
}

// HasCategory reports whether any of the trial's interventions falls into c.
func HasCategory(t types.Trial, c Category) bool {
	keywords := keywordsFor(c)
	if keywords == nil {
		return false
	}
	for _, iv := range t.Interventions {
		if containsAny(strings.ToLower(iv.Type), keywords) {
			return true
		}
	}
	return false
}

// Categories returns the categories the trial matches, in table order.
func Categories(t types.Trial) []Category {
	var out []Category
	for _, ck := range categoryKeywords {
		if HasCategory(t, ck.category) {
			out = append(out, ck.category)
		}
	}
	return out
}

// FilterInterventional returns the interventional trials, preserving order.
func FilterInterventional(trials []types.Trial) []types.Trial {
	return filter(trials, IsInterventional)
}

// FilterByCategory returns the trials having an intervention in c,
// preserving order.
func FilterByCategory(trials []types.Trial, c Category) []types.Trial {
	return filter(trials, func(t types.Trial) bool { return HasCategory(t, c) })
}

// HasPhase reports whether the trial's phase label contains label
// (e.g. "PHASE3").
func HasPhase(t types.Trial, label string) bool {
	return t.CurrentPhase != nil && strings.Contains(strings.ToUpper(*t.CurrentPhase), strings.ToUpper(label))
}

func filter(trials []types.Trial, keep func(types.Trial) bool) []types.Trial {
	var out []types.Trial
	for _, t := range trials {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func keywordsFor(c Category) []string {
	for _, ck := range categoryKeywords {
		if ck.category == c {
			return ck.keywords
		}
	}
	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func joinCategories(cs []Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
