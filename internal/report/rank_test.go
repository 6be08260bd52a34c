package report

import (
	"errors"
	"fmt"
	"testing"

	"worklog/internal/core"
)

func TestAccumulateSumInvariantAndOrder(t *testing.T) {
	records := []core.Record{
		{Date: "2024/01/01", Company: "B", Amount: 10, Overtime: 5},
		{Date: "2024/01/15", Company: "A", Amount: 20},
		{Date: "2024/03/01", Company: "B", Amount: 1},
		{Date: "2024-03-02", Company: "", Amount: 4},
		{Date: "not a date", Company: "C", Amount: 100},
	}
	g := Accumulate(records, IncomeByCompany)
	buckets := g.Buckets()
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if buckets[0].Label != core.NormalizeLabel("B") || buckets[1].Label != core.NormalizeLabel("A") || buckets[2].Label != core.Unclassified {
		t.Fatalf("buckets not in first-seen order: %v", buckets)
	}
	if buckets[0].Monthly[0] != 15 || buckets[0].Monthly[2] != 1 {
		t.Fatalf("unexpected B monthly: %v", buckets[0].Monthly)
	}
	for _, b := range buckets {
		var sum int64
		for _, v := range b.Monthly {
			sum += v
		}
		if b.Total() != sum {
			t.Fatalf("%s: total %d != sum %d", b.Label, b.Total(), sum)
		}
	}
	for _, ng := range Rank(g) {
		var sum int64
		for _, v := range ng.Monthly {
			sum += v
		}
		if ng.Total != sum {
			t.Fatalf("%s: ranked total %d != sum %d", ng.Name(), ng.Total, sum)
		}
	}
}

func TestAccumulateCollapsesBlankLabels(t *testing.T) {
	records := []core.Record{
		{Date: "2024/01/01", Category: "", Amount: 1},
		{Date: "2024/01/01", Category: "   ", Amount: 2},
		{Date: "2024/01/01", Amount: 3},
		{Date: "2024/01/01", Category: "\t", Amount: 4},
	}
	buckets := Accumulate(records, ExpenseByCategory).Buckets()
	if len(buckets) != 1 || buckets[0].Label != core.Unclassified || buckets[0].Total() != 10 {
		t.Fatalf("expected one unclassified bucket of 10, got %+v", buckets)
	}
}

func TestAccumulateBucketsAreCopies(t *testing.T) {
	g := Accumulate([]core.Record{{Date: "2024/01/01", Tool: "X", Amount: 5}}, IncomeByTool)
	b := g.Buckets()
	b[0].Monthly[0] = 999
	if g.Buckets()[0].Monthly[0] != 5 {
		t.Fatalf("grouping was mutated through Buckets")
	}
}

func TestRankOverflowProperty(t *testing.T) {
	for n := 6; n <= 12; n++ {
		t.Run(fmt.Sprintf("groups_%d", n), func(t *testing.T) {
			var records []core.Record
			for i := 0; i < n; i++ {
				// Each group spreads over two months so the merge is element-wise.
				total := int64((n - i) * 10)
				records = append(records,
					core.Record{Date: fmt.Sprintf("2024/%02d/01", i%12+1), Tool: fmt.Sprintf("t%d", i), Amount: core.Amount(total - 1)},
					core.Record{Date: fmt.Sprintf("2024/%02d/01", (i+3)%12+1), Tool: fmt.Sprintf("t%d", i), Amount: 1},
				)
			}
			g := Accumulate(records, IncomeByTool)
			ranked := Rank(g)
			if len(ranked) != TopN+1 {
				t.Fatalf("expected %d groups, got %d", TopN+1, len(ranked))
			}
			for i := 0; i < TopN; i++ {
				if ranked[i].Other {
					t.Fatalf("group %d unexpectedly marked other", i)
				}
				if i > 0 && ranked[i].Total > ranked[i-1].Total {
					t.Fatalf("groups not sorted by total")
				}
			}
			var want [12]int64
			for _, b := range g.Buckets()[TopN:] {
				for m, v := range b.Monthly {
					want[m] += v
				}
			}
			other := ranked[TopN]
			if !other.Other || other.Name() != OtherName {
				t.Fatalf("last group is not other: %+v", other)
			}
			if other.Monthly != want {
				t.Fatalf("other monthly %v, want %v", other.Monthly, want)
			}
		})
	}
}

func TestRankKeepsSmallGroupings(t *testing.T) {
	if got := Rank(Grouping{}); len(got) != 0 {
		t.Fatalf("expected no groups, got %v", got)
	}
	records := []core.Record{
		{Date: "2024/01/01", Tool: "a", Amount: 1},
		{Date: "2024/01/01", Tool: "b", Amount: 1},
		{Date: "2024/01/01", Tool: "c", Amount: 1},
		{Date: "2024/01/01", Tool: "d", Amount: 1},
		{Date: "2024/01/01", Tool: "e", Amount: 1},
	}
	ranked := Rank(Accumulate(records, IncomeByTool))
	if len(ranked) != 5 {
		t.Fatalf("expected 5 groups, got %d", len(ranked))
	}
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if ranked[i].Name() != want || ranked[i].Other {
			t.Fatalf("tie order broken at %d: %s", i, ranked[i].Name())
		}
	}
}

func TestRankOtherLastEvenWhenLarger(t *testing.T) {
	var records []core.Record
	for i := 0; i < 5; i++ {
		records = append(records, core.Record{Date: "2024/01/01", Tool: fmt.Sprintf("top%d", i), Amount: 100})
	}
	for i := 0; i < 10; i++ {
		records = append(records, core.Record{Date: "2024/01/01", Tool: fmt.Sprintf("tail%d", i), Amount: 90})
	}
	ranked := Rank(Accumulate(records, IncomeByTool))
	last := ranked[len(ranked)-1]
	if !last.Other || last.Total != 900 {
		t.Fatalf("expected other last with 900, got %+v", last)
	}
}

func TestParseGroupBy(t *testing.T) {
	cases := []struct {
		kind core.Kind
		name string
		want GroupBy
		err  error
	}{
		{core.Income, "", GroupAll, nil},
		{core.Income, "all", GroupAll, nil},
		{core.Income, "tool", IncomeByTool, nil},
		{core.Income, "Company", IncomeByCompany, nil},
		{core.Expense, "category", ExpenseByCategory, nil},
		{core.Expense, "method", ExpenseByMethod, nil},
		{core.Expense, "tool", GroupAll, ErrGroupKindMismatch},
		{core.Income, "location", GroupAll, ErrInvalidGroup},
	}
	for _, tc := range cases {
		got, err := ParseGroupBy(tc.kind, tc.name)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%s/%q expected %v, got %v", tc.kind, tc.name, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s/%q expected %v, got %v (err=%v)", tc.kind, tc.name, tc.want, got, err)
		}
	}
}

func TestRankNamesNeverCollideWithReserved(t *testing.T) {
	tests := []struct {
		tools []string
		want  []string
	}{
		{
			tools: []string{"other", "unclassified", "", "t1", "t2", "t3", "t4"},
			want:  []string{"other (label)", "unclassified (label)", "unclassified", "t1", "t2", "other"},
		},
		{
			tools: []string{"Other", "other"},
			want:  []string{"Other", "other (label)"},
		},
	}
	for _, tt := range tests {
		var records []core.Record
		for i, tool := range tt.tools {
			records = append(records, core.Record{Date: "2024/01/01", Tool: tool, Amount: core.Amount((len(tt.tools) - i) * 10)})
		}
		ranked := Rank(Accumulate(records, IncomeByTool))
		if len(ranked) != len(tt.want) {
			t.Fatalf("%v: expected %d groups, got %d", tt.tools, len(tt.want), len(ranked))
		}
		seen := map[string]bool{}
		for i, g := range ranked {
			if g.Name() != tt.want[i] {
				t.Errorf("%v: group %d named %q, want %q", tt.tools, i, g.Name(), tt.want[i])
			}
			if seen[g.Name()] {
				t.Errorf("%v: duplicate series name %q", tt.tools, g.Name())
			}
			seen[g.Name()] = true
		}
	}
}
