package report

import (
	"errors"
	"fmt"

	"worklog/internal/core"
)

// MonthLabels are the x-axis labels of every chart.
var MonthLabels = [12]string{
	"01月", "02月", "03月", "04月", "05月", "06月",
	"07月", "08月", "09月", "10月", "11月", "12月",
}

// Palette colors the ranked series in order.
var Palette = [TopN]string{"#cc47f0ff", "#825be7ff", "#4268d9ff", "#6ae759ff", "#e8e853ff"}

// OtherColor is reserved for the overflow series.
const OtherColor = "#dbd9d9ff"

var totalColors = map[core.Kind]string{
	core.Income:  "#6ae759",
	core.Expense: "#fac472",
}

var ErrInvalidYear = errors.New("invalid year")

// Series is one named line of a chart.
type Series struct {
	Name string    `json:"name"`
	Data [12]int64 `json:"data"`
}

// Chart is the structure handed to the rendering surface.
type Chart struct {
	MonthLabels [12]string `json:"monthLabels"`
	Series      []Series   `json:"series"`
	Colors      []string   `json:"colors"`
	GrandTotal  int64      `json:"grandTotal"`
}

// ChartQuery selects what BuildChart computes.
type ChartQuery struct {
	Kind core.Kind
	Year string
	By   GroupBy
}

// BuildChart dispatches to the aggregate or grouped builder.
func BuildChart(records []core.Record, q ChartQuery) (Chart, error) {
	if !q.Kind.IsValid() {
		return Chart{}, fmt.Errorf("%w: %q", core.ErrInvalidKind, q.Kind)
	}
	if _, err := core.ParseYear(q.Year); err != nil {
		return Chart{}, fmt.Errorf("%w: %v", ErrInvalidYear, err)
	}
	if q.By == GroupAll {
		return BuildAggregate(records, q.Year, q.Kind), nil
	}
	if q.By.Kind() != q.Kind {
		return Chart{}, fmt.Errorf("%w: %s for %s", ErrGroupKindMismatch, q.By, q.Kind)
	}
	return BuildGrouped(records, q.Year, q.By), nil
}

// BuildAggregate sums the year's records into one series named for the
// kind total.
func BuildAggregate(records []core.Record, year string, kind core.Kind) Chart {
	s := Series{Name: kind.TotalName(), Data: monthly(FilterYear(records, year), kind)}
	return newChart([]Series{s}, []string{totalColors[kind]})
}

// BuildGrouped breaks the year's records down by the attribute of by,
// ranked and collapsed to at most TopN+1 series. A year without records
// renders a flat zero baseline instead of an empty chart.
func BuildGrouped(records []core.Record, year string, by GroupBy) Chart {
	groups := Rank(Accumulate(FilterYear(records, year), by))
	if len(groups) == 0 {
		kind := by.Kind()
		return newChart([]Series{{Name: kind.TotalName()}}, []string{totalColors[kind]})
	}

	series := make([]Series, 0, len(groups))
	colors := make([]string, 0, len(groups))
	for i, g := range groups {
		series = append(series, Series{Name: g.Name(), Data: g.Monthly})
		if g.Other {
			colors = append(colors, OtherColor)
			continue
		}
		if i < len(Palette) {
			colors = append(colors, Palette[i])
		}
	}
	return newChart(series, colors)
}

func newChart(series []Series, colors []string) Chart {
	c := Chart{MonthLabels: MonthLabels, Series: series, Colors: colors}
	for _, s := range series {
		for _, v := range s.Data {
			c.GrandTotal += v
		}
	}
	return c
}
