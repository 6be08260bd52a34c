// Package store defines the persistence ports of the ledger.
package store

import (
	"context"

	"worklog/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordStore persists whole ledger collections. LoadAll on a missing
	// collection materialises it empty instead of failing.
	RecordStore interface {
		LoadAll(ctx context.Context, kind core.Kind) ([]core.Record, error)
		SaveAll(ctx context.Context, kind core.Kind, records []core.Record) error
	}

	// LabelStore keeps the user-maintained classification lists.
	LabelStore interface {
		Labels(ctx context.Context, set core.LabelSet) ([]string, error)
		AddLabel(ctx context.Context, set core.LabelSet, label string) error
		RemoveLabel(ctx context.Context, set core.LabelSet, label string) error
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		RecordStore
		LabelStore
	}
)

// DedupeLabels trims values, drops blanks and repeats, and keeps input order.
func DedupeLabels(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = trimLabel(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// WithLabel returns labels with label appended unless already present.
func WithLabel(labels []string, label string) ([]string, error) {
	label = trimLabel(label)
	if label == "" {
		return nil, core.ErrEmptyLabel
	}
	return DedupeLabels(append(append([]string(nil), labels...), label)), nil
}

// WithoutLabel returns labels with every occurrence of label removed.
func WithoutLabel(labels []string, label string) []string {
	label = trimLabel(label)
	out := make([]string, 0, len(labels))
	for _, v := range labels {
		if v != label {
			out = append(out, v)
		}
	}
	return out
}

// CheckUniqueIDs reports the first duplicate or empty record id.
func CheckUniqueIDs(records []core.Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID == "" {
			return core.ErrEmptyID
		}
		if _, ok := seen[r.ID]; ok {
			return &DuplicateIDError{ID: r.ID}
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
