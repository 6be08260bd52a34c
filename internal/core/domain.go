package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Tools      LabelSet = "tool"
	Companies  LabelSet = "company"
	Categories LabelSet = "category"
	Methods    LabelSet = "method"
)

type (
	// Kind selects one of the two ledger collections.
	Kind string

	// LabelSet names a user-maintained list of classification values.
	LabelSet string

	// Record is one ledger entry. Income records use Company, Tool and
	// Overtime; expense records use Category and Method.
	Record struct {
		ID       string `json:"pkno"`
		Date     string `json:"date"`
		Company  string `json:"company,omitempty"`
		Tool     string `json:"tool,omitempty"`
		Location string `json:"location,omitempty"`
		Category string `json:"category,omitempty"`
		Method   string `json:"method,omitempty"`
		Amount   Amount `json:"amount"`
		Overtime Amount `json:"overtimePay,omitempty"`
		Tax      Amount `json:"tax,omitempty"`
		Note     string `json:"note,omitempty"`
	}
)

var (
	ErrInvalidKind     = errors.New("invalid ledger kind")
	ErrInvalidLabelSet = errors.New("invalid label set")
	ErrEmptyLabel      = errors.New("empty label")
	ErrEmptyID         = errors.New("empty record id")
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateID     = errors.New("duplicate record id")
	ErrNoteTooLong     = errors.New("note too long (max 500 characters)")
)

// ParseKind accepts the kind name or its collection name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", strings.ToLower(collectionIncome):
		return Income, nil
	case "expense", strings.ToLower(collectionExpense):
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

const (
	collectionIncome  = "DailyWorkReport"
	collectionExpense = "DailyCostReport"
)

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// Collection returns the persisted collection name for the kind.
func (k Kind) Collection() string {
	if k == Expense {
		return collectionExpense
	}
	return collectionIncome
}

// Value is the monetary contribution of r under the kind's value rule.
// Income folds overtime pay into the amount; expense uses the amount alone.
func (k Kind) Value(r Record) int64 {
	if k == Income {
		return int64(r.Amount) + int64(r.Overtime)
	}
	return int64(r.Amount)
}

// TotalName is the series name used for a single summed series.
func (k Kind) TotalName() string {
	return "total " + string(k)
}

// Kinds returns both ledger kinds in display order.
func Kinds() []Kind {
	return []Kind{Income, Expense}
}

func ParseLabelSet(s string) (LabelSet, error) {
	ls := LabelSet(strings.ToLower(strings.TrimSpace(s)))
	if !ls.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabelSet, s)
	}
	return ls, nil
}

func (ls LabelSet) IsValid() bool {
	switch ls {
	case Tools, Companies, Categories, Methods:
		return true
	}
	return false
}

func (ls LabelSet) String() string {
	return string(ls)
}

// LabelSets returns every label set.
func LabelSets() []LabelSet {
	return []LabelSet{Tools, Companies, Categories, Methods}
}

// Validate checks the fields a stored record must carry. Amounts are
// already normalised by Amount and never fail.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if _, err := ParseDay(r.Date); err != nil {
		return err
	}
	if len(r.Note) > 500 {
		return ErrNoteTooLong
	}
	return nil
}
