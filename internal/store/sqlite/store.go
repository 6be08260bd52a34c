// Package sqlite persists the ledger collections and label lists in a
// local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"worklog/internal/core"
	"worklog/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and applies pending migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY on SaveAll.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const selectRecords = `SELECT id, date, company, tool, location, category, method, amount, overtime, tax, note
FROM records WHERE kind = ? ORDER BY position`

func (s *Store) LoadAll(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	rows, err := s.db.QueryContext(ctx, selectRecords, kind.String())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind.Collection(), err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var (
			r                       core.Record
			amount, overtime, taxes int64
		)
		if err := rows.Scan(&r.ID, &r.Date, &r.Company, &r.Tool, &r.Location,
			&r.Category, &r.Method, &amount, &overtime, &taxes, &r.Note); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.Collection(), err)
		}
		r.Amount, r.Overtime, r.Tax = core.Amount(amount), core.Amount(overtime), core.Amount(taxes)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind.Collection(), err)
	}
	return records, nil
}

const insertRecord = `INSERT INTO records
(kind, id, position, date, company, tool, location, category, method, amount, overtime, tax, note)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveAll replaces the collection in one transaction.
func (s *Store) SaveAll(ctx context.Context, kind core.Kind, records []core.Record) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	if err := store.CheckUniqueIDs(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE kind = ?`, kind.String()); err != nil {
		return fmt.Errorf("clear %s: %w", kind.Collection(), err)
	}
	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, kind.String(), r.ID, i, r.Date, r.Company, r.Tool,
			r.Location, r.Category, r.Method, r.Amount.Int64(), r.Overtime.Int64(), r.Tax.Int64(), r.Note); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", kind.Collection(), err)
	}

	slog.DebugContext(ctx, "Collection saved to SQLite",
		"collection", kind.Collection(),
		"records", len(records))
	return nil
}

func (s *Store) Labels(ctx context.Context, set core.LabelSet) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT label FROM labels WHERE label_set = ? ORDER BY position`, set.String())
	if err != nil {
		return nil, fmt.Errorf("query %s labels: %w", set, err)
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("scan %s labels: %w", set, err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (s *Store) AddLabel(ctx context.Context, set core.LabelSet, label string) error {
	if !set.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	next, err := store.WithLabel(nil, label)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO labels (label_set, label, position)
SELECT ?, ?, COALESCE(MAX(position), -1) + 1 FROM labels WHERE label_set = ?
ON CONFLICT (label_set, label) DO NOTHING`, set.String(), next[0], set.String())
	if err != nil {
		return fmt.Errorf("add %s label: %w", set, err)
	}
	return nil
}

func (s *Store) RemoveLabel(ctx context.Context, set core.LabelSet, label string) error {
	if !set.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM labels WHERE label_set = ? AND label = ?`, set.String(), strings.TrimSpace(label)); err != nil {
		return fmt.Errorf("remove %s label: %w", set, err)
	}
	return nil
}
