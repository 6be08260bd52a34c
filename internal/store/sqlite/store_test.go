package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"worklog/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "worklog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worklog.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		s.Close()
	}
}

func TestSaveAllReplacesAndKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []core.Record{
		{ID: "c", Date: "2024/03/01", Company: "Acme", Tool: "Crane", Amount: 100, Overtime: 20, Tax: 3, Note: "n"},
		{ID: "a", Date: "2024/03/02", Company: "Beta", Amount: 50},
	}
	if err := s.SaveAll(ctx, core.Income, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadAll(ctx, core.Income)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != first[0] || got[1] != first[1] {
		t.Fatalf("unexpected records: %+v", got)
	}

	if err := s.SaveAll(ctx, core.Income, first[1:]); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = s.LoadAll(ctx, core.Income)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected replacement, got %+v", got)
	}
	if exp, _ := s.LoadAll(ctx, core.Expense); exp == nil || len(exp) != 0 {
		t.Fatalf("expected empty expense collection, got %v", exp)
	}
}

func TestSaveAllRejectsDuplicateIDs(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveAll(context.Background(), core.Expense, []core.Record{{ID: "1"}, {ID: "1"}})
	if !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestLabelsKeepInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, l := range []string{"Food", " Fuel ", "Food", "Rent"} {
		if err := s.AddLabel(ctx, core.Categories, l); err != nil {
			t.Fatalf("add %q: %v", l, err)
		}
	}
	if err := s.AddLabel(ctx, core.Categories, " "); !errors.Is(err, core.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	got, err := s.Labels(ctx, core.Categories)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	want := []string{"Food", "Fuel", "Rent"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if err := s.RemoveLabel(ctx, core.Categories, "Fuel"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, _ = s.Labels(ctx, core.Categories)
	if len(got) != 2 || got[1] != "Rent" {
		t.Fatalf("unexpected labels after remove: %v", got)
	}
}
