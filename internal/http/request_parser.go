package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"worklog/internal/core"
	"worklog/internal/report"
)

// parseKind reads the {kind} route parameter, or the kind query parameter
// on routes without one.
func parseKind(r *http.Request) (core.Kind, error) {
	raw := chi.URLParam(r, "kind")
	if raw == "" {
		raw = r.URL.Query().Get("kind")
	}
	return core.ParseKind(raw)
}

// ParseQuery builds a ledger search from query parameters. The filters
// that do not apply to kind are ignored.
func ParseQuery(kind core.Kind, values url.Values) (report.Query, error) {
	q := report.Query{Keyword: sanitizeInput(values.Get("q"))}

	if v := strings.TrimSpace(values.Get("year")); v != "" {
		if _, err := core.ParseYear(v); err != nil {
			return report.Query{}, fmt.Errorf("%w: %v", report.ErrInvalidYear, err)
		}
		q.Year = v
	}
	if v := strings.TrimSpace(values.Get("month")); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			return report.Query{}, fmt.Errorf("%w: %v", core.ErrInvalidDate, err)
		}
		q.Month = m
	}

	switch kind {
	case core.Income:
		q.Company = sanitizeInput(values.Get("company"))
		q.Tool = sanitizeInput(values.Get("tool"))
	case core.Expense:
		q.Category = sanitizeInput(values.Get("category"))
		q.Method = sanitizeInput(values.Get("method"))
	}
	return q, nil
}

// ParseChartQuery reads year and group. A missing year selects the year
// of now.
func ParseChartQuery(kind core.Kind, values url.Values, now time.Time) (report.ChartQuery, error) {
	year := strings.TrimSpace(values.Get("year"))
	if year == "" {
		year = strconv.Itoa(now.Year())
	}
	by, err := report.ParseGroupBy(kind, values.Get("group"))
	if err != nil {
		return report.ChartQuery{}, err
	}
	return report.ChartQuery{Kind: kind, Year: year, By: by}, nil
}

// parseLabelSet reads the {set} route parameter.
func parseLabelSet(r *http.Request) (core.LabelSet, error) {
	return core.ParseLabelSet(chi.URLParam(r, "set"))
}
