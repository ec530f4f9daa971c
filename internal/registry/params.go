// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/clinical-trials/pkg/types"
)

// buildSearchParams encodes the query, filters, and paging state into
// studies endpoint parameters.
func buildSearchParams(query string, f types.SearchFilters, pageSize int, pageToken string) url.Values {
	params := url.Values{
		"format":   {"json"},
		"pageSize": {strconv.Itoa(pageSize)},
	}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("query.term", q)
	}
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	setJoined(params, "query.cond", f.Conditions, " OR ")
	setJoined(params, "query.intr", f.Interventions, " OR ")
	setJoined(params, "query.spons", f.Sponsors, " OR ")
	setJoined(params, "query.locn", f.Countries, " OR ")
	setJoined(params, "filter.overallStatus", upper(f.Statuses), ",")

	if adv := advancedFilter(f); adv != "" {
		params.Set("filter.advanced", adv)
	}
	return params
}

// advancedFilter builds the Essie expression for study type, phases, and
// the start-date range.
func advancedFilter(f types.SearchFilters) string {
	var parts []string
	if st := strings.ToUpper(strings.TrimSpace(f.StudyType)); st != "" {
		parts = append(parts, "AREA[StudyType]"+st)
	}

	phases := upper(f.Phases)
	switch len(phases) {
	case 0:
	case 1:
		parts = append(parts, "AREA[Phase]"+phases[0])
	default:
		parts = append(parts, "AREA[Phase]("+strings.Join(phases, " OR ")+")")
	}

	if f.StartDateFrom != nil || f.StartDateTo != nil {
		from, to := "MIN", "MAX"
		if f.StartDateFrom != nil {
			from = f.StartDateFrom.ISO()
		}
		if f.StartDateTo != nil {
			to = f.StartDateTo.ISO()
		}
		parts = append(parts, "AREA[StartDate]RANGE["+from+","+to+"]")
	}
	return strings.Join(parts, " AND ")
}

func setJoined(params url.Values, key string, vals []string, sep string) {
	vals = clean(vals)
	if len(vals) > 0 {
		params.Set(key, strings.Join(vals, sep))
	}
}

// clean trims values and drops empty ones.
func clean(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func upper(vals []string) []string {
	vals = clean(vals)
	for i, v := range vals {
		vals[i] = strings.ToUpper(v)
	}
	return vals
}
