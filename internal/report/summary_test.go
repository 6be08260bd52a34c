package report

import (
	"testing"
	"time"

	"worklog/internal/core"
)

func TestDistinctDays(t *testing.T) {
	records := []core.Record{
		{Date: "2024/01/01"},
		{Date: "2024/01/01"},
		{Date: "2024-01-01"}, // same day, different raw string
		{Date: "2024/01/02"},
		{Date: "2024/01/32"},
		{Date: ""},
	}
	if got := DistinctDays(records); got != 3 {
		t.Fatalf("expected 3 distinct days, got %d", got)
	}
	if got := DistinctDays(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
}

func TestTotal(t *testing.T) {
	records := []core.Record{
		{Date: "2024/01/01", Amount: 100, Overtime: 50},
		{Date: "2024/01/02", Amount: 10},
		{Date: "bad", Amount: 1000},
	}
	if got := Total(records, core.Income); got != 160 {
		t.Fatalf("income total expected 160, got %d", got)
	}
	if got := Total(records, core.Expense); got != 110 {
		t.Fatalf("expense total expected 110, got %d", got)
	}
}

func TestTopByCountAndSum(t *testing.T) {
	records := []core.Record{
		{Date: "2024/01/01", Tool: "Crane", Company: "Acme", Amount: 10},
		{Date: "2024/01/02", Tool: "Drill", Company: "Beta", Amount: 500},
		{Date: "2024/01/03", Tool: "Drill", Company: "Acme", Amount: 10},
		{Date: "2024/01/04", Tool: "Crane", Company: "Acme", Amount: 10, Overtime: 600},
	}
	// Crane and Drill both have two records; Crane was seen first.
	if got := TopByCount(records, IncomeByTool); got != (Top{Name: "Crane", Metric: 2}) {
		t.Fatalf("unexpected top tool: %+v", got)
	}
	if got := TopBySum(records, IncomeByCompany); got != (Top{Name: "Acme", Metric: 630}) {
		t.Fatalf("unexpected top company: %+v", got)
	}
}

func TestTopEmptyIsZero(t *testing.T) {
	if got := TopByCount(nil, IncomeByTool); got != (Top{}) {
		t.Fatalf("expected zero top, got %+v", got)
	}
	if got := TopBySum([]core.Record{{Date: "2024/99/01", Category: "x", Amount: 5}}, ExpenseByCategory); got != (Top{}) {
		t.Fatalf("expected zero top when every date is invalid, got %+v", got)
	}
}

func TestTopUnclassifiedName(t *testing.T) {
	records := []core.Record{{Date: "2024/01/01", Category: " ", Amount: 5}}
	if got := TopBySum(records, ExpenseByCategory); got.Name != "unclassified" || got.Metric != 5 {
		t.Fatalf("unexpected top: %+v", got)
	}
}

func TestMonthlyAverageFloors(t *testing.T) {
	cases := []struct {
		in, out int64
	}{
		{0, 0},
		{11, 0},
		{12, 1},
		{100, 8},
		{1199, 99},
		{-1, -1},
	}
	for _, tc := range cases {
		if got := MonthlyAverage(tc.in); got != tc.out {
			t.Fatalf("MonthlyAverage(%d) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("%d-%d expected %d, got %d", tc.year, tc.month, tc.want, got)
		}
	}
}

func TestBuildDashboard(t *testing.T) {
	incomeRecords := []core.Record{
		{Date: "2024/03/01", Tool: "Crane", Company: "Acme", Amount: 1000, Overtime: 200},
		{Date: "2024/03/01", Tool: "Drill", Company: "Beta", Amount: 500},
		{Date: "2024-03-05", Tool: "Drill", Company: "Beta", Amount: 500},
		{Date: "2024/01/20", Tool: "Crane", Company: "Beta", Amount: 800},
		{Date: "2023/03/01", Tool: "Crane", Company: "Acme", Amount: 9999},
		{Date: "2024/03/32", Tool: "Crane", Company: "Acme", Amount: 9999},
	}
	expenseRecords := []core.Record{
		{Date: "2024/03/02", Category: "Fuel", Amount: 60},
		{Date: "2024/03/02", Category: "Food", Amount: 30},
		{Date: "2024/03/03", Category: "Food", Amount: 40},
		{Date: "2024/02/03", Category: "Rent", Amount: 900},
	}
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	d := BuildDashboard(incomeRecords, expenseRecords, now)

	checks := []struct {
		name      string
		got, want int64
	}{
		{"month income", d.MonthIncome, 2200},
		{"month expense", d.MonthExpense, 130},
		{"month work days", int64(d.MonthWorkDays), 2},
		{"month expense days", int64(d.MonthExpenseDays), 2},
		{"days in month", int64(d.DaysInMonth), 31},
		{"year income", d.YearIncome, 3000},
		{"year expense", d.YearExpense, 1030},
		{"year work days", int64(d.YearWorkDays), 3},
		{"year expense days", int64(d.YearExpenseDays), 3},
		{"average income", d.AverageMonthlyIncome, 250},
		{"average expense", d.AverageMonthlyExpense, 85},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
	if d.TopTool != (Top{Name: "Drill", Metric: 2}) {
		t.Errorf("unexpected top tool: %+v", d.TopTool)
	}
	if d.TopExpenseCategory != (Top{Name: "Food", Metric: 70}) {
		t.Errorf("unexpected top expense category: %+v", d.TopExpenseCategory)
	}
	if d.TopCompany != (Top{Name: "Beta", Metric: 1800}) {
		t.Errorf("unexpected top company: %+v", d.TopCompany)
	}
	if d.Year != 2024 || d.Month != 3 {
		t.Errorf("unexpected period: %d-%d", d.Year, d.Month)
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, nil, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC))
	if d.MonthIncome != 0 || d.YearExpense != 0 || d.TopTool != (Top{}) || d.TopCompany != (Top{}) {
		t.Fatalf("expected zero dashboard, got %+v", d)
	}
	if d.DaysInMonth != 28 {
		t.Fatalf("expected 28 days, got %d", d.DaysInMonth)
	}
}
