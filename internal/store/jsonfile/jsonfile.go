// Package jsonfile stores each ledger collection and label list as a flat
// JSON array file in one data directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	dir    string
	logger *log.Logger
}

// New creates the data directory if needed. A nil logger falls back to the
// default storage logger.
func New(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default(log.ComponentStorage)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) recordPath(kind core.Kind) string {
	return filepath.Join(s.dir, kind.Collection()+".json")
}

func (s *Store) labelPath(set core.LabelSet) string {
	return filepath.Join(s.dir, set.String()+".json")
}

func (s *Store) LoadAll(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := []core.Record{}
	if err := s.readOrCreate(ctx, s.recordPath(kind), &records); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind.Collection(), err)
	}
	return records, nil
}

func (s *Store) SaveAll(_ context.Context, kind core.Kind, records []core.Record) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	if err := store.CheckUniqueIDs(records); err != nil {
		return err
	}
	if records == nil {
		records = []core.Record{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(s.recordPath(kind), records); err != nil {
		return fmt.Errorf("save %s: %w", kind.Collection(), err)
	}
	return nil
}

func (s *Store) Labels(ctx context.Context, set core.LabelSet) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labels(ctx, set)
}

func (s *Store) labels(ctx context.Context, set core.LabelSet) ([]string, error) {
	labels := []string{}
	if err := s.readOrCreate(ctx, s.labelPath(set), &labels); err != nil {
		return nil, fmt.Errorf("load %s labels: %w", set, err)
	}
	return store.DedupeLabels(labels), nil
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
	return writeJSON(s.labelPath(set), next)
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
	return writeJSON(s.labelPath(set), store.WithoutLabel(current, label))
}

// readOrCreate decodes path into v. A missing or empty file is created as
// an empty array.
func (s *Store) readOrCreate(ctx context.Context, path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(data) == 0) {
		s.logger.InfoContext(ctx, "Creating empty collection file", "path", path)
		return os.WriteFile(path, []byte("[]"), 0o644)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically through a temp file in the same
// directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
