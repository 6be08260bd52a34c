package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"worklog/internal/core"
	"worklog/internal/store"
)

var _ store.Store = (*Store)(nil)

// header is the first row of every collection tab, named after the record
// JSON fields.
var header = []any{"pkno", "date", "company", "tool", "location", "category", "method", "amount", "overtimePay", "tax", "note"}

const lastColumn = "K"

type Store struct {
	mu  sync.Mutex
	api valuesAPI
}

// New connects to the spreadsheet with a service account. Empty credential
// fields fall back to the environment.
func New(ctx context.Context, spreadsheetID string, creds Credentials) (*Store, error) {
	api, err := newGoogleValues(ctx, spreadsheetID, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Store{api: api}, nil
}

func newWithAPI(api valuesAPI) *Store {
	return &Store{api: api}
}

func recordTab(kind core.Kind) string {
	return kind.Collection()
}

func labelTab(set core.LabelSet) string {
	return "labels_" + set.String()
}

func (s *Store) LoadAll(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	tab := recordTab(kind)
	values, err := s.api.Get(ctx, fmt.Sprintf("%s!A2:%s", tab, lastColumn))
	if errors.Is(err, ErrSheetMissing) {
		slog.InfoContext(ctx, "Creating missing collection tab", "sheet", tab)
		if err := s.createTab(ctx, tab, [][]any{header}); err != nil {
			return nil, err
		}
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tab, err)
	}
	return parseRecords(values), nil
}

func (s *Store) SaveAll(ctx context.Context, kind core.Kind, records []core.Record) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	if err := store.CheckUniqueIDs(records); err != nil {
		return err
	}
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, header)
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceTab(ctx, recordTab(kind), lastColumn, rows)
}

func (s *Store) Labels(ctx context.Context, set core.LabelSet) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	return s.labels(ctx, set)
}

func (s *Store) labels(ctx context.Context, set core.LabelSet) ([]string, error) {
	tab := labelTab(set)
	values, err := s.api.Get(ctx, tab+"!A:A")
	if errors.Is(err, ErrSheetMissing) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tab, err)
	}
	out := make([]string, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := cellString(row[0])
		if strings.HasPrefix(v, "#") {
			continue
		}
		out = append(out, v)
	}
	return store.DedupeLabels(out), nil
}

func (s *Store) AddLabel(ctx context.Context, set core.LabelSet, label string) error {
	if !set.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.labels(ctx, set)
	if err != nil {
		return err
	}
	next, err := store.WithLabel(current, label)
	if err != nil {
		return err
	}
	return s.replaceTab(ctx, labelTab(set), "A", column(next))
}

func (s *Store) RemoveLabel(ctx context.Context, set core.LabelSet, label string) error {
	if !set.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.labels(ctx, set)
	if err != nil {
		return err
	}
	return s.replaceTab(ctx, labelTab(set), "A", column(store.WithoutLabel(current, label)))
}

// replaceTab clears the tab's used columns and writes rows from A1,
// creating the tab first when it does not exist.
func (s *Store) replaceTab(ctx context.Context, tab, last string, rows [][]any) error {
	err := s.api.Clear(ctx, fmt.Sprintf("%s!A:%s", tab, last))
	if errors.Is(err, ErrSheetMissing) {
		return s.createTab(ctx, tab, rows)
	}
	if err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}
	return s.write(ctx, tab, last, rows)
}

func (s *Store) createTab(ctx context.Context, tab string, rows [][]any) error {
	if err := s.api.AddSheet(ctx, tab); err != nil {
		return err
	}
	return s.write(ctx, tab, lastColumnOf(rows), rows)
}

func (s *Store) write(ctx context.Context, tab, last string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A1:%s%d", tab, last, len(rows))
	if err := s.api.Update(ctx, rng, rows); err != nil {
		return fmt.Errorf("write %s: %w", tab, err)
	}
	return nil
}

func lastColumnOf(rows [][]any) string {
	if len(rows) > 0 && len(rows[0]) == len(header) {
		return lastColumn
	}
	return "A"
}

func column(values []string) [][]any {
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	return rows
}

func recordRow(r core.Record) []any {
	return []any{
		r.ID, r.Date, r.Company, r.Tool, r.Location, r.Category, r.Method,
		r.Amount.Int64(), r.Overtime.Int64(), r.Tax.Int64(), r.Note,
	}
}

// parseRecords reads data rows in header order. Rows without an id are
// skipped; short rows leave trailing fields empty.
func parseRecords(values [][]any) []core.Record {
	out := make([]core.Record, 0, len(values))
	for _, row := range values {
		cols := make([]string, len(header))
		for i := 0; i < len(row) && i < len(cols); i++ {
			cols[i] = cellString(row[i])
		}
		if cols[0] == "" {
			continue
		}
		out = append(out, core.Record{
			ID:       cols[0],
			Date:     cols[1],
			Company:  cols[2],
			Tool:     cols[3],
			Location: cols[4],
			Category: cols[5],
			Method:   cols[6],
			Amount:   core.ParseAmount(cols[7]),
			Overtime: core.ParseAmount(cols[8]),
			Tax:      core.ParseAmount(cols[9]),
			Note:     cols[10],
		})
	}
	return out
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
