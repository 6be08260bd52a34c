package services

import (
	"context"
	"fmt"
	"time"

	"worklog/internal/cache"
	"worklog/internal/core"
	"worklog/internal/store"
)

// LabelService reads the label lists through a short-lived cache and
// invalidates a list on every edit.
type LabelService struct {
	store store.LabelStore
	cache cache.Cache[[]string]
}

// NewLabelService caches each list for ttl. A non-positive ttl disables
// caching.
func NewLabelService(s store.LabelStore, ttl time.Duration) *LabelService {
	svc := &LabelService{store: s}
	if ttl > 0 {
		svc.cache = cache.NewLRUCache[[]string](len(core.LabelSets()), ttl)
	}
	return svc
}

// Cache exposes the underlying cache for registration with a cleanup
// manager; nil when caching is disabled.
func (s *LabelService) Cache() cache.Cleaner {
	if c, ok := s.cache.(cache.Cleaner); ok {
		return c
	}
	return nil
}

func (s *LabelService) Labels(ctx context.Context, set core.LabelSet) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	if s.cache != nil {
		if labels, ok := s.cache.Get(set.String()); ok {
			return append([]string(nil), labels...), nil
		}
	}
	labels, err := s.store.Labels(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("load %s labels: %w", set, err)
	}
	if s.cache != nil {
		s.cache.Set(set.String(), append([]string(nil), labels...))
	}
	return labels, nil
}

// All returns every label list keyed by set name.
func (s *LabelService) All(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string, len(core.LabelSets()))
	for _, set := range core.LabelSets() {
		labels, err := s.Labels(ctx, set)
		if err != nil {
			return nil, err
		}
		out[set.String()] = labels
	}
	return out, nil
}

func (s *LabelService) Add(ctx context.Context, set core.LabelSet, label string) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	if _, err := store.WithLabel(nil, label); err != nil {
		return nil, err
	}
	if err := s.store.AddLabel(ctx, set, label); err != nil {
		return nil, fmt.Errorf("add %s label: %w", set, err)
	}
	s.invalidate(set)
	return s.Labels(ctx, set)
}

func (s *LabelService) Remove(ctx context.Context, set core.LabelSet, label string) ([]string, error) {
	if !set.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidLabelSet, set)
	}
	if err := s.store.RemoveLabel(ctx, set, label); err != nil {
		return nil, fmt.Errorf("remove %s label: %w", set, err)
	}
	s.invalidate(set)
	return s.Labels(ctx, set)
}

func (s *LabelService) invalidate(set core.LabelSet) {
	if s.cache != nil {
		s.cache.Delete(set.String())
	}
}
