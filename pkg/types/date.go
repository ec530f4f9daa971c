// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// DatePrecision records which components a registry date carried.
type DatePrecision int

const (
	PrecisionYear DatePrecision = iota + 1
	PrecisionMonth
	PrecisionDay
)

// ISODate is the layout used for every exported date.
const ISODate = "2006-01-02"

// dateLayouts are tried in order; the registry reports dates at day, month,
// or year precision.
var dateLayouts = []struct {
	layout    string
	precision DatePrecision
}{
	{"2006-01-02", PrecisionDay},
	{"2006-01", PrecisionMonth},
	{"2006", PrecisionYear},
}

// Date is a registry date. Components missing from the source are filled
// with the first day of the period.
type Date struct {
	time.Time
	Precision DatePrecision
}

// ParseDate parses "YYYY-MM-DD", "YYYY-MM", or "YYYY". Any other input,
// including the empty string, yields nil.
func ParseDate(s string) *Date {
	if s == "" {
		return nil
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return &Date{Time: t, Precision: l.precision}
		}
	}
	return nil
}

// NewDate returns a day-precision date.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Precision: PrecisionDay}
}

// ISO renders the date as YYYY-MM-DD, or "" for a nil date.
func (d *Date) ISO() string {
	if d == nil {
		return ""
	}
	return d.Format(ISODate)
}

// MarshalJSON encodes the date as an ISO string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(ISODate))
}

// UnmarshalJSON accepts any string ParseDate accepts. Unparseable strings
// leave the zero value rather than failing the enclosing document.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if parsed := ParseDate(s); parsed != nil {
		*d = *parsed
	}
	return nil
}

// MarshalYAML encodes the date as an ISO string.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.Format(ISODate), nil
}
