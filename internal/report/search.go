package report

import (
	"sort"
	"strings"
	"time"

	"worklog/internal/core"
)

// Query filters a ledger listing. Zero fields match everything.
type Query struct {
	Year     string
	Month    time.Month
	Company  string
	Tool     string
	Category string
	Method   string
	Keyword  string
}

// Search returns the records matching q, newest first. Records with an
// unparseable date sort last and never match a year or month filter.
func Search(records []core.Record, q Query) []core.Record {
	kw := strings.ToLower(strings.TrimSpace(q.Keyword))
	out := make([]core.Record, 0, len(records))
	for _, r := range records {
		if q.Year != "" || q.Month != 0 {
			k, err := core.ParseMonthKey(r.Date)
			if err != nil {
				continue
			}
			if q.Year != "" && k.YearString() != q.Year {
				continue
			}
			if q.Month != 0 && k.Month != q.Month {
				continue
			}
		}
		if !matchExact(q.Company, r.Company) || !matchExact(q.Tool, r.Tool) ||
			!matchExact(q.Category, r.Category) || !matchExact(q.Method, r.Method) {
			continue
		}
		if kw != "" && !containsKeyword(r, kw) {
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out
}

func matchExact(want, got string) bool {
	return want == "" || want == got
}

func containsKeyword(r core.Record, kw string) bool {
	for _, v := range []string{r.Note, r.Company, r.Tool, r.Location, r.Category, r.Method} {
		if v != "" && strings.Contains(strings.ToLower(v), kw) {
			return true
		}
	}
	return false
}

func sortNewestFirst(records []core.Record) {
	days := make(map[string]time.Time, len(records))
	for _, r := range records {
		if t, err := core.ParseDay(r.Date); err == nil {
			days[r.Date] = t
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		ti, iok := days[records[i].Date]
		tj, jok := days[records[j].Date]
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
}

// Years lists the distinct years present in records, newest first.
func Years(records []core.Record) []string {
	seen := make(map[string]struct{})
	var years []string
	for _, r := range records {
		k, err := core.ParseMonthKey(r.Date)
		if err != nil {
			continue
		}
		y := k.YearString()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}
