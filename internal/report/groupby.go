package report

import (
	"errors"
	"fmt"
	"strings"

	"worklog/internal/core"
)

// GroupBy selects the classification attribute a chart is broken down by.
type GroupBy int

const (
	// GroupAll sums every record into one series.
	GroupAll GroupBy = iota
	IncomeByTool
	IncomeByCompany
	ExpenseByCategory
	ExpenseByMethod
)

var (
	ErrInvalidGroup      = errors.New("invalid group")
	ErrGroupKindMismatch = errors.New("group does not apply to ledger kind")
)

// ParseGroupBy resolves a group name for the given kind. An empty name or
// "all" selects GroupAll.
func ParseGroupBy(kind core.Kind, name string) (GroupBy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "all" {
		return GroupAll, nil
	}
	for _, g := range []GroupBy{IncomeByTool, IncomeByCompany, ExpenseByCategory, ExpenseByMethod} {
		if g.attribute() != name {
			continue
		}
		if g.Kind() != kind {
			return GroupAll, fmt.Errorf("%w: %s by %s", ErrGroupKindMismatch, kind, name)
		}
		return g, nil
	}
	return GroupAll, fmt.Errorf("%w: %q", ErrInvalidGroup, name)
}

// Kind is the ledger the grouping applies to. GroupAll applies to both and
// returns the empty kind.
func (g GroupBy) Kind() core.Kind {
	switch g {
	case IncomeByTool, IncomeByCompany:
		return core.Income
	case ExpenseByCategory, ExpenseByMethod:
		return core.Expense
	}
	return ""
}

// Label extracts and normalises the grouping attribute of r.
func (g GroupBy) Label(r core.Record) core.Label {
	switch g {
	case IncomeByTool:
		return core.NormalizeLabel(r.Tool)
	case IncomeByCompany:
		return core.NormalizeLabel(r.Company)
	case ExpenseByCategory:
		return core.NormalizeLabel(r.Category)
	case ExpenseByMethod:
		return core.NormalizeLabel(r.Method)
	}
	return core.Unclassified
}

func (g GroupBy) attribute() string {
	switch g {
	case IncomeByTool:
		return "tool"
	case IncomeByCompany:
		return "company"
	case ExpenseByCategory:
		return "category"
	case ExpenseByMethod:
		return "method"
	}
	return "all"
}

func (g GroupBy) String() string {
	if g == GroupAll {
		return "all"
	}
	return string(g.Kind()) + " by " + g.attribute()
}
