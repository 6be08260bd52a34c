package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// The only two accepted layouts. time.Parse is strict about zero padding,
// calendar ranges and trailing text, so nothing looser gets through.
var dayLayouts = [...]string{"2006/01/02", "2006-01-02"}

// MonthKey identifies one calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseDay parses a record date in one of the accepted layouts.
func ParseDay(s string) (time.Time, error) {
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseMonthKey normalises a record date to its month. Both layouts of the
// same day produce the same key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := ParseDay(s)
	if err != nil {
		return MonthKey{}, err
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// String renders the canonical YYYY-MM form.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Index is the zero-based month slot, 0 for January.
func (k MonthKey) Index() int {
	return int(k.Month) - 1
}

// YearString renders the 4-digit year.
func (k MonthKey) YearString() string {
	return fmt.Sprintf("%04d", k.Year)
}

// ParseYear validates a 4-digit year.
func ParseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid year %q: must have 4 digits", s)
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

// ParseMonth validates a month number given as "1".."12" or "01".."12".
func ParseMonth(s string) (time.Month, error) {
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, fmt.Errorf("invalid month %q", s)
	}
	return time.Month(m), nil
}
