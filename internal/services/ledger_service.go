package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/report"
	"worklog/internal/store"
)

// Publisher announces rewritten collections. *amqp.Client implements it.
type Publisher interface {
	PublishCollectionChanged(ctx context.Context, kind core.Kind, records int) error
}

// ChangeListener is called after a collection was saved.
type ChangeListener func(ctx context.Context, kind core.Kind)

// LedgerService edits the income and expense collections. Every write is a
// read-modify-write of the whole collection under one mutex.
type LedgerService struct {
	store     store.RecordStore
	publisher Publisher
	logger    *log.StructuredLogger

	mu        sync.Mutex
	listeners []ChangeListener
	newID     func() string
}

// NewLedgerService builds the service; publisher may be nil.
func NewLedgerService(s store.RecordStore, publisher Publisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default(log.ComponentLedger)
	}
	return &LedgerService{
		store:     s,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger),
		newID:     func() string { return uuid.NewString() },
	}
}

// OnChange registers a listener for successful saves.
func (s *LedgerService) OnChange(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *LedgerService) List(ctx context.Context, kind core.Kind, q report.Query) ([]core.Record, error) {
	records, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return report.Search(records, q), nil
}

// Years lists the distinct record years, newest first.
func (s *LedgerService) Years(ctx context.Context, kind core.Kind) ([]string, error) {
	records, err := s.load(ctx, kind)
	if err != nil {
		return nil, err
	}
	return report.Years(records), nil
}

// Add stores r under a fresh id and returns the stored record.
func (s *LedgerService) Add(ctx context.Context, kind core.Kind, r core.Record) (core.Record, error) {
	r = shape(kind, r)
	r.ID = s.newID()
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(ctx, kind)
	if err != nil {
		return core.Record{}, err
	}
	records = append(records, r)
	if err := s.save(ctx, log.OpCreate, kind, records); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

// Update replaces the record with id. The id itself never changes.
func (s *LedgerService) Update(ctx context.Context, kind core.Kind, id string, r core.Record) (core.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Record{}, core.ErrEmptyID
	}
	r = shape(kind, r)
	r.ID = id
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(ctx, kind)
	if err != nil {
		return core.Record{}, err
	}
	idx := indexOf(records, id)
	if idx < 0 {
		return core.Record{}, fmt.Errorf("%w: %s", core.ErrNotFound, id)
	}
	records[idx] = r
	if err := s.save(ctx, log.OpUpdate, kind, records); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

// Delete removes every record whose id is in ids and reports how many were
// removed. Unknown ids are ignored unless none matched.
func (s *LedgerService) Delete(ctx context.Context, kind core.Kind, ids []string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0, core.ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load(ctx, kind)
	if err != nil {
		return 0, err
	}
	kept := records[:0:0]
	for _, r := range records {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, core.ErrNotFound
	}
	if err := s.save(ctx, log.OpDelete, kind, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *LedgerService) load(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	records, err := s.store.LoadAll(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return records, nil
}

// save persists records, then notifies listeners and the publisher. A
// failed publish is logged; the save already succeeded.
func (s *LedgerService) save(ctx context.Context, op string, kind core.Kind, records []core.Record) error {
	if err := s.store.SaveAll(ctx, kind, records); err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	s.logger.LogCollectionSaved(ctx, op, kind.String(), kind.Collection(), len(records))

	for _, l := range s.listeners {
		l(ctx, kind)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCollectionChanged(ctx, kind, len(records)); err != nil {
			s.logger.LogError(ctx, "Failed to publish collection change", err, log.ComponentAMQP, op,
				log.NewFields().WithCollection(kind.String(), kind.Collection(), len(records)))
		}
	}
	return nil
}

// shape trims text fields and clears the attributes the other kind owns.
func shape(kind core.Kind, r core.Record) core.Record {
	r.Date = strings.TrimSpace(r.Date)
	r.Company = strings.TrimSpace(r.Company)
	r.Tool = strings.TrimSpace(r.Tool)
	r.Location = strings.TrimSpace(r.Location)
	r.Category = strings.TrimSpace(r.Category)
	r.Method = strings.TrimSpace(r.Method)
	r.Note = strings.TrimSpace(r.Note)
	switch kind {
	case core.Income:
		r.Category, r.Method = "", ""
	case core.Expense:
		r.Company, r.Tool, r.Overtime = "", "", 0
	}
	return r
}

func indexOf(records []core.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// IsClientError reports errors caused by the request rather than the store.
func IsClientError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyID) ||
		errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidLabelSet) ||
		errors.Is(err, core.ErrEmptyLabel) ||
		errors.Is(err, core.ErrDuplicateID) ||
		errors.Is(err, core.ErrNoteTooLong) ||
		errors.Is(err, report.ErrInvalidYear) ||
		errors.Is(err, report.ErrInvalidGroup) ||
		errors.Is(err, report.ErrGroupKindMismatch)
}
