package report

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"worklog/internal/core"
)

func income(date, tool string, amount int64) core.Record {
	return core.Record{Date: date, Tool: tool, Amount: core.Amount(amount)}
}

func TestBuildGroupedTwoTools(t *testing.T) {
	records := []core.Record{
		income("2024/01/10", "X", 100),
		income("2024/02/05", "Y", 200),
		income("2024/02/05", "X", 50),
	}
	c := BuildGrouped(records, "2024", IncomeByTool)

	want := []Series{
		{Name: "Y", Data: [12]int64{0, 200}},
		{Name: "X", Data: [12]int64{100, 50}},
	}
	if !reflect.DeepEqual(c.Series, want) {
		t.Fatalf("unexpected series: %+v", c.Series)
	}
	if c.GrandTotal != 350 {
		t.Fatalf("expected grand total 350, got %d", c.GrandTotal)
	}
	if !reflect.DeepEqual(c.Colors, []string{Palette[0], Palette[1]}) {
		t.Fatalf("unexpected colors: %v", c.Colors)
	}
	if c.MonthLabels[0] != "01月" || c.MonthLabels[11] != "12月" {
		t.Fatalf("unexpected month labels: %v", c.MonthLabels)
	}
}

func TestBuildGroupedCollapsesOverflow(t *testing.T) {
	totals := []int64{700, 600, 500, 400, 300, 200, 100}
	var records []core.Record
	for i, total := range totals {
		month := i + 1
		records = append(records, income(fmt.Sprintf("2024/%02d/01", month), fmt.Sprintf("tool-%d", i), total))
	}
	c := BuildGrouped(records, "2024", IncomeByTool)

	if len(c.Series) != 6 {
		t.Fatalf("expected 6 series, got %d", len(c.Series))
	}
	for i := 0; i < 5; i++ {
		if c.Series[i].Name != fmt.Sprintf("tool-%d", i) {
			t.Fatalf("series %d: unexpected name %q", i, c.Series[i].Name)
		}
	}
	other := c.Series[5]
	if other.Name != OtherName {
		t.Fatalf("expected last series to be %q, got %q", OtherName, other.Name)
	}
	wantOther := [12]int64{5: 200, 6: 100}
	if other.Data != wantOther {
		t.Fatalf("unexpected other data: %v", other.Data)
	}
	var otherTotal int64
	for _, v := range other.Data {
		otherTotal += v
	}
	if otherTotal != 300 {
		t.Fatalf("expected other total 300, got %d", otherTotal)
	}
	wantColors := []string{Palette[0], Palette[1], Palette[2], Palette[3], Palette[4], OtherColor}
	if !reflect.DeepEqual(c.Colors, wantColors) {
		t.Fatalf("unexpected colors: %v", c.Colors)
	}
	if c.GrandTotal != 2800 {
		t.Fatalf("expected grand total 2800, got %d", c.GrandTotal)
	}
}

func TestBuildGroupedNoOtherColorWithoutOverflow(t *testing.T) {
	records := []core.Record{income("2024/01/01", "A", 1), income("2024/01/01", "B", 2), income("2024/01/01", "C", 3)}
	c := BuildGrouped(records, "2024", IncomeByTool)
	if len(c.Colors) != 3 {
		t.Fatalf("expected 3 colors, got %v", c.Colors)
	}
	for _, col := range c.Colors {
		if col == OtherColor {
			t.Fatalf("other color must not appear without an other series")
		}
	}
}

func TestEmptyYearRendersZeroBaseline(t *testing.T) {
	records := []core.Record{income("2024/05/01", "X", 100)}

	agg := BuildAggregate(records, "2025", core.Income)
	if len(agg.Series) != 1 || agg.Series[0].Name != "total income" {
		t.Fatalf("unexpected aggregate series: %+v", agg.Series)
	}
	if agg.Series[0].Data != [12]int64{} || agg.GrandTotal != 0 {
		t.Fatalf("expected zero baseline, got %+v total=%d", agg.Series[0].Data, agg.GrandTotal)
	}

	grouped := BuildGrouped(nil, "2025", ExpenseByCategory)
	if len(grouped.Series) != 1 || grouped.Series[0].Name != "total expense" {
		t.Fatalf("unexpected grouped baseline: %+v", grouped.Series)
	}
	if grouped.Series[0].Data != [12]int64{} || grouped.GrandTotal != 0 {
		t.Fatalf("expected zero grouped baseline")
	}
	if !reflect.DeepEqual(grouped.Colors, []string{"#fac472"}) {
		t.Fatalf("unexpected baseline colors: %v", grouped.Colors)
	}
}

func TestInvalidDateExcludedEverywhere(t *testing.T) {
	records := []core.Record{
		income("2024/03/01", "X", 10),
		income("2024-13-01", "X", 1000),
	}
	if got := BuildAggregate(records, "2024", core.Income).GrandTotal; got != 10 {
		t.Fatalf("aggregate: expected 10, got %d", got)
	}
	if got := BuildGrouped(records, "2024", IncomeByTool).GrandTotal; got != 10 {
		t.Fatalf("grouped: expected 10, got %d", got)
	}
	if got := DistinctDays(records); got != 1 {
		t.Fatalf("distinct days: expected 1, got %d", got)
	}
	if got := len(FilterYear(records, "2024")); got != 1 {
		t.Fatalf("filter: expected 1 record, got %d", got)
	}
}

func TestAggregateGrandTotalConservesValue(t *testing.T) {
	records := []core.Record{
		{Date: "2024/01/02", Tool: "", Amount: 100, Overtime: 20},
		{Date: "2024-06-30", Tool: "  ", Amount: 50},
		{Date: "2024/12/31", Tool: "Crane", Amount: 7, Overtime: 3},
		{Date: "2023/12/31", Tool: "Crane", Amount: 999},
		{Date: "2024/02/30", Tool: "Crane", Amount: 999},
	}
	var want int64
	for _, r := range FilterYear(records, "2024") {
		want += core.Income.Value(r)
	}
	c := BuildAggregate(records, "2024", core.Income)
	if c.GrandTotal != want || want != 180 {
		t.Fatalf("expected grand total %d (180), got %d", want, c.GrandTotal)
	}
	if !reflect.DeepEqual(c.Colors, []string{"#6ae759"}) {
		t.Fatalf("unexpected aggregate colors: %v", c.Colors)
	}
}

func TestAggregationIsIdempotent(t *testing.T) {
	records := []core.Record{
		income("2024/01/10", "X", 100),
		income("2024/02/05", "Y", 200),
		income("2024/02/05", "", 50),
		income("2024/03/05", "Z", 200),
	}
	snapshot := append([]core.Record(nil), records...)

	a := BuildGrouped(records, "2024", IncomeByTool)
	b := BuildGrouped(records, "2024", IncomeByTool)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("grouped output differs between calls")
	}
	if !reflect.DeepEqual(BuildAggregate(records, "2024", core.Income), BuildAggregate(records, "2024", core.Income)) {
		t.Fatalf("aggregate output differs between calls")
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Fatalf("input records were mutated")
	}
}

func TestBuildChart(t *testing.T) {
	records := []core.Record{{Date: "2024/01/01", Category: "Food", Method: "Cash", Amount: 30}}

	tests := []struct {
		name    string
		query   ChartQuery
		wantErr error
		series  string
	}{
		{"aggregate", ChartQuery{Kind: core.Expense, Year: "2024", By: GroupAll}, nil, "total expense"},
		{"grouped", ChartQuery{Kind: core.Expense, Year: "2024", By: ExpenseByMethod}, nil, "Cash"},
		{"kind mismatch", ChartQuery{Kind: core.Expense, Year: "2024", By: IncomeByTool}, ErrGroupKindMismatch, ""},
		{"bad year", ChartQuery{Kind: core.Expense, Year: "24", By: GroupAll}, ErrInvalidYear, ""},
		{"bad kind", ChartQuery{Kind: "savings", Year: "2024"}, core.ErrInvalidKind, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := BuildChart(records, tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Series[0].Name != tt.series {
				t.Fatalf("expected first series %q, got %q", tt.series, c.Series[0].Name)
			}
		})
	}
}
