// Package core provides the ledger record model and its value parsing.
//
// This file contains the whole-unit Amount type. Ledger amounts are kept
// in whole currency units; fractional input is rounded half-up.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a non-negative monetary value in whole currency units.
type Amount int64

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a decimal string to whole units.
//
// Blank, unparseable, negative or out-of-range input yields 0: a malformed
// amount never fails a record, it simply contributes nothing.
//
// Examples:
//
//	ParseAmount("120")    -> 120
//	ParseAmount(" 99.5 ") -> 100 (half-up)
//	ParseAmount("99.49")  -> 99
//	ParseAmount("abc")    -> 0
//	ParseAmount("-5")     -> 0
func ParseAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	d = d.Round(0)
	if d.GreaterThan(maxAmount) {
		return 0
	}
	return Amount(d.IntPart())
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
// It never returns an error for malformed values.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
		*a = ParseAmount(s)
		return nil
	}
	*a = ParseAmount(string(b))
	return nil
}

func (a Amount) Int64() int64 {
	return int64(a)
}
