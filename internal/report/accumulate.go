package report

import "worklog/internal/core"

// Bucket is one label's monthly sums, slot 0 being January.
type Bucket struct {
	Label   core.Label
	Monthly [12]int64
}

// Total is the sum of the monthly slots.
func (b Bucket) Total() int64 {
	var t int64
	for _, v := range b.Monthly {
		t += v
	}
	return t
}

// Grouping is the frozen result of Accumulate. Buckets keep the order in
// which their label was first seen.
type Grouping struct {
	buckets []Bucket
}

func (g Grouping) Len() int {
	return len(g.buckets)
}

// Buckets returns a copy of the buckets in first-seen order.
func (g Grouping) Buckets() []Bucket {
	return append([]Bucket(nil), g.buckets...)
}

// Accumulate folds records into per-label monthly sums using the value rule
// of by's kind. Records with an unparseable date contribute nothing.
func Accumulate(records []core.Record, by GroupBy) Grouping {
	kind := by.Kind()
	buckets := make([]Bucket, 0)
	index := make(map[core.Label]int)
	for _, r := range records {
		k, err := core.ParseMonthKey(r.Date)
		if err != nil {
			continue
		}
		label := by.Label(r)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[i].Monthly[k.Index()] += kind.Value(r)
	}
	return Grouping{buckets: buckets}
}

// monthly sums every record of kind into 12 slots without grouping.
func monthly(records []core.Record, kind core.Kind) [12]int64 {
	var out [12]int64
	for _, r := range records {
		k, err := core.ParseMonthKey(r.Date)
		if err != nil {
			continue
		}
		out[k.Index()] += kind.Value(r)
	}
	return out
}
