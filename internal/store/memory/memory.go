package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"worklog/internal/core"
	"worklog/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps both collections and the label lists in process memory.
type Store struct {
	mu      sync.Mutex
	records map[core.Kind][]core.Record
	labels  map[core.LabelSet][]string
}

func New(labels map[core.LabelSet][]string) *Store {
	s := &Store{
		records: make(map[core.Kind][]core.Record),
		labels:  make(map[core.LabelSet][]string),
	}
	for set, values := range labels {
		s.labels[set] = store.DedupeLabels(values)
	}
	return s
}

// NewFromFiles seeds the label lists from seed_<set>.txt files in base.
// Missing files leave the list empty.
func NewFromFiles(base string) *Store {
	labels := make(map[core.LabelSet][]string)
	for _, set := range core.LabelSets() {
		labels[set] = readLines(filepath.Join(base, fmt.Sprintf("seed_%s.txt", set)))
	}
	return New(labels)
}

func (s *Store) LoadAll(_ context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record{}, s.records[kind]...), nil
}

func (s *Store) SaveAll(_ context.Context, kind core.Kind, records []core.Record) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	if err := store.CheckUniqueIDs(records); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[kind] = append([]core.Record(nil), records...)
	return nil
}

func (s *Store) Labels(_ context.Context, set core.LabelSet) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.labels[set]...), nil
}

func (s *Store) AddLabel(_ context.Context, set core.LabelSet, label string) error {
	if !set.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := store.WithLabel(s.labels[set], label)
	if err != nil {
		return err
	}
	s.labels[set] = next
	return nil
}

func (s *Store) RemoveLabel(_ context.Context, set core.LabelSet, label string) error {
	if !set.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[set] = store.WithoutLabel(s.labels[set], label)
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return store.DedupeLabels(out)
}
