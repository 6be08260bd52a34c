package report

import (
	"sort"

	"worklog/internal/core"
)

// TopN is the number of groups kept before the rest collapse into "other".
const TopN = 5

// OtherName is the reserved name of the overflow group.
const OtherName = "other"

// NamedGroup is a ranked group ready for display.
type NamedGroup struct {
	Label   core.Label
	Other   bool
	Monthly [12]int64
	Total   int64
}

func (g NamedGroup) Name() string {
	if g.Other {
		return OtherName
	}
	if g.Label.IsUnclassified() {
		return g.Label.String()
	}
	return g.Label.DisplayReserved(OtherName, core.Unclassified.String())
}

// Rank orders the grouping by total, highest first, keeping first-seen
// order between equal totals. With more than TopN groups the tail merges
// into a single overflow group placed last.
func Rank(g Grouping) []NamedGroup {
	groups := make([]NamedGroup, 0, g.Len())
	for _, b := range g.buckets {
		groups = append(groups, NamedGroup{Label: b.Label, Monthly: b.Monthly, Total: b.Total()})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	if len(groups) <= TopN {
		return groups
	}

	other := NamedGroup{Other: true}
	for _, tail := range groups[TopN:] {
		for m, v := range tail.Monthly {
			other.Monthly[m] += v
		}
	}
	for _, v := range other.Monthly {
		other.Total += v
	}
	return append(groups[:TopN:TopN], other)
}
