package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"worklog/internal/amqp"
	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/store"
)

// MirrorWorker copies ledger collections and label lists from the primary
// store into a mirror (a spreadsheet in production). The mirror is
// overwritten, never merged.
type MirrorWorker struct {
	source   store.Store
	target   store.Store
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewMirrorWorker(source, target store.Store, interval time.Duration, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &MirrorWorker{
		source:   source,
		target:   target,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleCollectionChanged mirrors the collection named by msg.
func (w *MirrorWorker) HandleCollectionChanged(ctx context.Context, msg *amqp.CollectionChanged) error {
	w.logger.InfoContext(ctx, "Processing collection change",
		log.FieldKind, msg.Kind.String(),
		log.FieldRecords, msg.Records,
		"published_at", msg.Timestamp)
	return w.MirrorCollection(ctx, msg.Kind)
}

// MirrorCollection overwrites one collection in the mirror with the source
// contents.
func (w *MirrorWorker) MirrorCollection(ctx context.Context, kind core.Kind) error {
	records, err := w.source.LoadAll(ctx, kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind.Collection(), err)
	}
	if err := w.target.SaveAll(ctx, kind, records); err != nil {
		return fmt.Errorf("mirror %s: %w", kind.Collection(), err)
	}
	w.logger.InfoContext(ctx, "Collection mirrored",
		log.FieldKind, kind.String(),
		log.FieldCollection, kind.Collection(),
		log.FieldRecords, len(records))
	return nil
}

// MirrorLabels brings one label list of the mirror in line with the source,
// keeping the source order for added labels.
func (w *MirrorWorker) MirrorLabels(ctx context.Context, set core.LabelSet) error {
	want, err := w.source.Labels(ctx, set)
	if err != nil {
		return fmt.Errorf("load %s labels: %w", set, err)
	}
	have, err := w.target.Labels(ctx, set)
	if err != nil {
		return fmt.Errorf("load mirrored %s labels: %w", set, err)
	}

	wanted := make(map[string]bool, len(want))
	for _, l := range want {
		wanted[l] = true
	}
	present := make(map[string]bool, len(have))
	for _, l := range have {
		present[l] = true
		if !wanted[l] {
			if err := w.target.RemoveLabel(ctx, set, l); err != nil {
				return fmt.Errorf("remove mirrored %s label: %w", set, err)
			}
		}
	}
	for _, l := range want {
		if present[l] {
			continue
		}
		if err := w.target.AddLabel(ctx, set, l); err != nil {
			return fmt.Errorf("add mirrored %s label: %w", set, err)
		}
	}
	return nil
}

// MirrorAll mirrors both collections concurrently, then the label lists.
// It is the fallback for lost messages and runs at startup and on every
// tick.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range core.Kinds() {
		kind := kind
		g.Go(func() error {
			return w.MirrorCollection(gctx, kind)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, set := range core.LabelSets() {
		if err := w.MirrorLabels(ctx, set); err != nil {
			return err
		}
	}
	return nil
}

// Start runs MirrorAll immediately and then every interval until Stop or
// ctx is done. A non-positive interval mirrors only once at startup.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	go w.runLoop(ctx, stopCh, doneCh)

	w.logger.InfoContext(ctx, "Mirror worker started", "interval", w.interval)
	return nil
}

// Stop signals the loop and waits for the cycle in flight to finish.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		w.logger.InfoContext(ctx, "Mirror worker stopped gracefully")
		return nil
	case <-ctx.Done():
		w.logger.WarnContext(ctx, "Mirror worker stop timed out")
		return ctx.Err()
	}
}

func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *MirrorWorker) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	w.cycle(ctx)
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

func (w *MirrorWorker) cycle(ctx context.Context) {
	start := time.Now()
	if err := w.MirrorAll(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Mirror cycle failed",
			log.FieldOperation, log.OpMirror,
			log.FieldError, err.Error())
		return
	}
	w.logger.DebugContext(ctx, "Mirror cycle completed",
		log.FieldOperation, log.OpMirror,
		"duration", time.Since(start))
}
