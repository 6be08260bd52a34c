package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"worklog/internal/core"
)

// fakeValues stores each tab as a grid of cells and understands the
// "Tab!A1:K3", "Tab!A2:K" and "Tab!A:A" range shapes the store issues.
type fakeValues struct {
	tabs    map[string][][]any
	updates int
}

func newFakeValues() *fakeValues {
	return &fakeValues{tabs: map[string][][]any{}}
}

func splitRange(rng string) (tab string, firstRow int) {
	tab, cells, _ := strings.Cut(rng, "!")
	first, _, _ := strings.Cut(cells, ":")
	digits := strings.TrimLeft(first, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	firstRow = 1
	if n, err := strconv.Atoi(digits); err == nil {
		firstRow = n
	}
	return tab, firstRow
}

func (f *fakeValues) Get(_ context.Context, rng string) ([][]any, error) {
	tab, first := splitRange(rng)
	grid, ok := f.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("%s: %w", rng, ErrSheetMissing)
	}
	if first-1 >= len(grid) {
		return nil, nil
	}
	return grid[first-1:], nil
}

func (f *fakeValues) Update(_ context.Context, rng string, rows [][]any) error {
	tab, first := splitRange(rng)
	grid, ok := f.tabs[tab]
	if !ok {
		return fmt.Errorf("%s: %w", rng, ErrSheetMissing)
	}
	for len(grid) < first-1+len(rows) {
		grid = append(grid, nil)
	}
	copy(grid[first-1:], rows)
	f.tabs[tab] = grid
	f.updates++
	return nil
}

func (f *fakeValues) Clear(_ context.Context, rng string) error {
	tab, _ := splitRange(rng)
	if _, ok := f.tabs[tab]; !ok {
		return fmt.Errorf("%s: %w", rng, ErrSheetMissing)
	}
	f.tabs[tab] = nil
	return nil
}

func (f *fakeValues) AddSheet(_ context.Context, title string) error {
	if _, ok := f.tabs[title]; ok {
		return errors.New("sheet exists")
	}
	f.tabs[title] = [][]any{}
	return nil
}

func TestLoadAllCreatesMissingTab(t *testing.T) {
	api := newFakeValues()
	s := newWithAPI(api)

	records, err := s.LoadAll(context.Background(), core.Income)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty collection, got %v", records)
	}
	grid, ok := api.tabs["DailyWorkReport"]
	if !ok || len(grid) != 1 || grid[0][0] != "pkno" {
		t.Fatalf("expected header-only tab, got %v", grid)
	}
}

func TestSaveAllThenLoadAll(t *testing.T) {
	api := newFakeValues()
	s := newWithAPI(api)
	ctx := context.Background()

	in := []core.Record{
		{ID: "1", Date: "2024/05/01", Category: "Food", Method: "Cash", Amount: 30, Note: "lunch"},
		{ID: "2", Date: "2024/05/02", Category: "Fuel", Amount: 70},
	}
	if err := s.SaveAll(ctx, core.Expense, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.LoadAll(ctx, core.Expense)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("unexpected records: %+v", out)
	}

	if err := s.SaveAll(ctx, core.Expense, in[:1]); err != nil {
		t.Fatalf("save shorter: %v", err)
	}
	out, _ = s.LoadAll(ctx, core.Expense)
	if len(out) != 1 {
		t.Fatalf("stale rows left behind: %+v", out)
	}
}

func TestParseRecordsToleratesShortAndTextRows(t *testing.T) {
	values := [][]any{
		{"1", "2024/01/01", "Acme", "Crane", "", "", "", "1,000", "abc"},
		{"", "2024/01/02"},
		{"3", "2024-01-03", "Beta", "Drill", "Site", "", "", "250.5", "10", "", "night"},
	}
	got := parseRecords(values)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %+v", got)
	}
	if got[0].Amount != 0 || got[0].Overtime != 0 || got[0].Note != "" {
		t.Fatalf("malformed amounts should be zero: %+v", got[0])
	}
	if got[1].Amount != 251 || got[1].Overtime != 10 || got[1].Note != "night" {
		t.Fatalf("unexpected second record: %+v", got[1])
	}
}

func TestLabelsRoundTrip(t *testing.T) {
	api := newFakeValues()
	s := newWithAPI(api)
	ctx := context.Background()

	if got, err := s.Labels(ctx, core.Methods); err != nil || len(got) != 0 {
		t.Fatalf("expected no labels, got %v err=%v", got, err)
	}
	for _, l := range []string{"Cash", "Card", "Cash"} {
		if err := s.AddLabel(ctx, core.Methods, l); err != nil {
			t.Fatalf("add %q: %v", l, err)
		}
	}
	if err := s.RemoveLabel(ctx, core.Methods, "Cash"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := s.Labels(ctx, core.Methods)
	if err != nil || len(got) != 1 || got[0] != "Card" {
		t.Fatalf("unexpected labels: %v err=%v", got, err)
	}
	if _, ok := api.tabs["labels_method"]; !ok {
		t.Fatalf("expected labels_method tab")
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", Credentials{JSON: "{}"})
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Fatalf("expected missing spreadsheet error, got %v", err)
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/adc.json")

	c := credentialsFromEnv(Credentials{})
	if c.File != "/tmp/adc.json" {
		t.Fatalf("expected ADC fallback, got %+v", c)
	}
	c = credentialsFromEnv(Credentials{JSON: `{"type":"service_account"}`})
	if c.File != "" {
		t.Fatalf("explicit JSON should suppress ADC fallback, got %+v", c)
	}

	if _, err := (Credentials{}).load(); err == nil {
		t.Fatalf("expected error without credentials")
	}
	if _, err := (Credentials{File: "/does/not/exist.json"}).load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
