// Package report turns ledger snapshots into chart series and dashboard
// figures. Every function here is pure: it reads the records it is given,
// never mutates them, and recomputes its result on each call.
package report

import (
	"time"

	"worklog/internal/core"
)

// FilterYear keeps the records whose date parses and falls in year.
// year is the 4-digit form; anything else matches nothing.
func FilterYear(records []core.Record, year string) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		k, err := core.ParseMonthKey(r.Date)
		if err != nil || k.YearString() != year {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterMonth keeps the records dated in the given year and month.
func FilterMonth(records []core.Record, year string, month time.Month) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		k, err := core.ParseMonthKey(r.Date)
		if err != nil || k.YearString() != year || k.Month != month {
			continue
		}
		out = append(out, r)
	}
	return out
}

// validOnly drops records whose date does not parse.
func validOnly(records []core.Record) []core.Record {
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if _, err := core.ParseMonthKey(r.Date); err == nil {
			out = append(out, r)
		}
	}
	return out
}
