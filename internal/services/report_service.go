package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/report"
	"worklog/internal/store"
)

// ReportService serves charts and the dashboard from an in-memory snapshot
// of both collections. Reads share the snapshot; Refresh swaps it.
type ReportService struct {
	store  store.RecordStore
	logger *log.Logger
	now    func() time.Time

	refreshMu sync.Mutex

	mu       sync.RWMutex
	records  map[core.Kind][]core.Record
	loadedAt map[core.Kind]time.Time
	stale    bool
	// gen counts invalidations; a refresh that overlaps one stays stale.
	gen uint64

	onRefreshError func(core.Kind)
}

func NewReportService(s store.RecordStore, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Default(log.ComponentReport)
	}
	return &ReportService{
		store:    s,
		logger:   logger.WithComponent(log.ComponentReport),
		now:      time.Now,
		records:  make(map[core.Kind][]core.Record),
		loadedAt: make(map[core.Kind]time.Time),
		stale:    true,
	}
}

// OnRefreshError registers a hook called once per collection that fails to
// reload.
func (s *ReportService) OnRefreshError(fn func(core.Kind)) {
	s.onRefreshError = fn
}

// SetClock replaces the clock that picks the dashboard month.
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// Invalidate marks the snapshot stale so the next read reloads it.
func (s *ReportService) Invalidate(_ context.Context, _ core.Kind) {
	s.mu.Lock()
	s.gen++
	s.stale = true
	s.mu.Unlock()
}

// Refresh reloads both collections concurrently. A collection that fails
// keeps its previous snapshot; the first failure is returned as *ErrRefresh.
func (s *ReportService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	kinds := core.Kinds()
	loaded := make([][]core.Record, len(kinds))
	failures := make([]error, len(kinds))

	// Collections load independently so one failing store call does not
	// cancel the other.
	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			records, err := s.store.LoadAll(ctx, kind)
			if err != nil {
				failures[i] = &ErrRefresh{Kind: kind, Err: err}
				return failures[i]
			}
			loaded[i] = records
			return nil
		})
	}
	waitErr := g.Wait()

	now := s.now()
	s.mu.Lock()
	for i, kind := range kinds {
		if failures[i] == nil {
			s.records[kind] = loaded[i]
			s.loadedAt[kind] = now
		}
	}
	if waitErr == nil && s.gen == gen {
		s.stale = false
	}
	s.mu.Unlock()

	for i, kind := range kinds {
		if failures[i] == nil {
			continue
		}
		s.logger.ErrorContext(ctx, "Failed to refresh collection",
			log.FieldKind, kind.String(),
			log.FieldCollection, kind.Collection(),
			log.FieldError, failures[i].Error())
		if s.onRefreshError != nil {
			s.onRefreshError(kind)
		}
	}
	if waitErr != nil {
		return waitErr
	}

	s.logger.DebugContext(ctx, "Snapshot refreshed",
		"income_records", len(loaded[0]),
		"expense_records", len(loaded[1]))
	return nil
}

// snapshot returns the current records of kind, refreshing first when the
// snapshot is stale. A failed refresh with an earlier snapshot available
// serves the earlier one.
func (s *ReportService) snapshot(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
	}
	s.mu.RLock()
	stale := s.stale
	s.mu.RUnlock()

	var refreshErr error
	if stale {
		refreshErr = s.Refresh(ctx)
	}

	s.mu.RLock()
	records, ok := s.records[kind]
	s.mu.RUnlock()
	if !ok {
		return nil, refreshErr
	}
	return records, nil
}

// Records returns the snapshot of one collection. Callers must not modify
// the returned slice.
func (s *ReportService) Records(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	return s.snapshot(ctx, kind)
}

// Chart builds the chart for q from the snapshot.
func (s *ReportService) Chart(ctx context.Context, q report.ChartQuery) (report.Chart, error) {
	records, err := s.snapshot(ctx, q.Kind)
	if err != nil {
		return report.Chart{}, err
	}
	return report.BuildChart(records, q)
}

// Dashboard summarises the current month and year.
func (s *ReportService) Dashboard(ctx context.Context) (report.Dashboard, error) {
	income, err := s.snapshot(ctx, core.Income)
	if err != nil {
		return report.Dashboard{}, err
	}
	expense, err := s.snapshot(ctx, core.Expense)
	if err != nil {
		return report.Dashboard{}, err
	}
	return report.BuildDashboard(income, expense, s.now()), nil
}

// LoadedAt reports when kind was last loaded successfully.
func (s *ReportService) LoadedAt(kind core.Kind) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.loadedAt[kind]
	return t, ok
}
