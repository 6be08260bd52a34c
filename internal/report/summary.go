package report

import (
	"sort"
	"time"

	"worklog/internal/core"
)

// Top is the highest ranked label of a summary. The zero Top means no data.
type Top struct {
	Name   string `json:"name"`
	Metric int64  `json:"metric"`
}

// DistinctDays counts the distinct date strings among records whose date
// parses.
func DistinctDays(records []core.Record) int {
	seen := make(map[string]struct{})
	for _, r := range validOnly(records) {
		seen[r.Date] = struct{}{}
	}
	return len(seen)
}

// Total sums the value rule of kind over records with a valid date.
func Total(records []core.Record, kind core.Kind) int64 {
	var t int64
	for _, r := range validOnly(records) {
		t += kind.Value(r)
	}
	return t
}

// TopByCount returns the label of by with the most records.
func TopByCount(records []core.Record, by GroupBy) Top {
	return top(records, by, func(core.Record) int64 { return 1 })
}

// TopBySum returns the label of by with the largest summed value.
func TopBySum(records []core.Record, by GroupBy) Top {
	kind := by.Kind()
	return top(records, by, kind.Value)
}

func top(records []core.Record, by GroupBy, metric func(core.Record) int64) Top {
	var ranked []Top
	index := make(map[core.Label]int)
	for _, r := range validOnly(records) {
		label := by.Label(r)
		i, ok := index[label]
		if !ok {
			i = len(ranked)
			index[label] = i
			ranked = append(ranked, Top{Name: label.String()})
		}
		ranked[i].Metric += metric(r)
	}
	if len(ranked) == 0 {
		return Top{}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metric > ranked[j].Metric
	})
	return ranked[0]
}

// MonthlyAverage is the yearly total spread over 12 months, floored to a
// whole unit.
func MonthlyAverage(yearTotal int64) int64 {
	q := yearTotal / 12
	if yearTotal%12 != 0 && yearTotal < 0 {
		q--
	}
	return q
}

// Dashboard holds the figures shown on the dashboard cards for the month
// and year containing a reference day.
type Dashboard struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	MonthIncome      int64 `json:"monthIncome"`
	MonthExpense     int64 `json:"monthExpense"`
	MonthWorkDays    int   `json:"monthWorkDays"`
	MonthExpenseDays int   `json:"monthExpenseDays"`
	DaysInMonth      int   `json:"daysInMonth"`

	YearIncome      int64 `json:"yearIncome"`
	YearExpense     int64 `json:"yearExpense"`
	YearWorkDays    int   `json:"yearWorkDays"`
	YearExpenseDays int   `json:"yearExpenseDays"`

	TopTool            Top `json:"topTool"`
	TopExpenseCategory Top `json:"topExpenseCategory"`
	TopCompany         Top `json:"topCompany"`

	AverageMonthlyIncome  int64 `json:"averageMonthlyIncome"`
	AverageMonthlyExpense int64 `json:"averageMonthlyExpense"`
}

// BuildDashboard derives the dashboard figures for the month of now.
func BuildDashboard(income, expense []core.Record, now time.Time) Dashboard {
	year := core.MonthKey{Year: now.Year(), Month: now.Month()}.YearString()
	monthIncome := FilterMonth(income, year, now.Month())
	monthExpense := FilterMonth(expense, year, now.Month())
	yearIncome := FilterYear(income, year)
	yearExpense := FilterYear(expense, year)

	d := Dashboard{
		Year:             now.Year(),
		Month:            int(now.Month()),
		MonthIncome:      Total(monthIncome, core.Income),
		MonthExpense:     Total(monthExpense, core.Expense),
		MonthWorkDays:    DistinctDays(monthIncome),
		MonthExpenseDays: DistinctDays(monthExpense),
		DaysInMonth:      DaysInMonth(now.Year(), now.Month()),

		YearIncome:      Total(yearIncome, core.Income),
		YearExpense:     Total(yearExpense, core.Expense),
		YearWorkDays:    DistinctDays(yearIncome),
		YearExpenseDays: DistinctDays(yearExpense),

		TopTool:            TopByCount(monthIncome, IncomeByTool),
		TopExpenseCategory: TopBySum(monthExpense, ExpenseByCategory),
		TopCompany:         TopBySum(yearIncome, IncomeByCompany),
	}
	d.AverageMonthlyIncome = MonthlyAverage(d.YearIncome)
	d.AverageMonthlyExpense = MonthlyAverage(d.YearExpense)
	return d
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
