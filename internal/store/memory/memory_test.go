package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"worklog/internal/core"
)

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	got, err := s.LoadAll(ctx, core.Income)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil collection, got %v err=%v", got, err)
	}

	records := []core.Record{{ID: "1", Date: "2024/01/01", Amount: 5}, {ID: "2", Date: "2024/01/02"}}
	if err := s.SaveAll(ctx, core.Income, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	records[0].Amount = 999

	got, _ = s.LoadAll(ctx, core.Income)
	if len(got) != 2 || got[0].Amount != 5 {
		t.Fatalf("unexpected load: %+v", got)
	}
	if other, _ := s.LoadAll(ctx, core.Expense); len(other) != 0 {
		t.Fatalf("collections should be independent, got %v", other)
	}
}

func TestMemoryStoreRejectsDuplicateIDs(t *testing.T) {
	s := New(nil)
	err := s.SaveAll(context.Background(), core.Expense, []core.Record{{ID: "x"}, {ID: "x"}})
	if !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestMemoryStoreLabels(t *testing.T) {
	ctx := context.Background()
	s := New(map[core.LabelSet][]string{core.Tools: {"A", "B", "A"}})

	tools, err := s.Labels(ctx, core.Tools)
	if err != nil || len(tools) != 2 {
		t.Fatalf("unexpected tools: %v err=%v", tools, err)
	}
	if err := s.AddLabel(ctx, core.Tools, "  C "); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddLabel(ctx, core.Tools, "A"); err != nil {
		t.Fatalf("add duplicate: %v", err)
	}
	if err := s.AddLabel(ctx, core.Tools, "  "); !errors.Is(err, core.ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if err := s.RemoveLabel(ctx, core.Tools, "B"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tools, _ = s.Labels(ctx, core.Tools)
	if len(tools) != 2 || tools[0] != "A" || tools[1] != "C" {
		t.Fatalf("unexpected tools after edits: %v", tools)
	}
	if _, err := s.Labels(ctx, core.LabelSet("nope")); !errors.Is(err, core.ErrInvalidLabelSet) {
		t.Fatalf("expected ErrInvalidLabelSet, got %v", err)
	}
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	if tools, _ := s.Labels(context.Background(), core.Tools); len(tools) != 0 {
		t.Fatalf("expected no tools when files missing, got %v", tools)
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("seed_tool.txt", "# header\nCrane\nDrill\nCrane\n\n")
	mustWrite("seed_method.txt", "Cash\nCard\n")

	s = NewFromFiles(dir)
	tools, _ := s.Labels(context.Background(), core.Tools)
	if len(tools) != 2 || tools[0] != "Crane" || tools[1] != "Drill" {
		t.Fatalf("unexpected tools: %v", tools)
	}
	methods, _ := s.Labels(context.Background(), core.Methods)
	if len(methods) != 2 {
		t.Fatalf("unexpected methods: %v", methods)
	}
}
