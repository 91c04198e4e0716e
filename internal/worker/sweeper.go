package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dropwall/dropwall/internal/repository"
	"github.com/dropwall/dropwall/internal/storage"
)

// SweepResult summarizes one expiry pass.
type SweepResult struct {
	Files    int   // expired rows deleted
	Removed  int   // objects removed from storage
	Failed   int   // objects that could not be removed
	Sessions int64 // expired sessions purged
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Scanned int
	Orphans int
	Removed int
}

// Sweeper deletes expired files and purges expired sessions on one ticker,
// and removes stored objects that have no file row on another.
type Sweeper struct {
	files             repository.FileRepository
	sessions          repository.SessionRepository
	storage           storage.Storage
	sweepInterval     time.Duration
	reconcileInterval time.Duration
	grace             time.Duration
	now               func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewSweeper(
	files repository.FileRepository,
	sessions repository.SessionRepository,
	store storage.Storage,
	sweepInterval, reconcileInterval, grace time.Duration,
) *Sweeper {
	if sweepInterval <= 0 {
		sweepInterval = time.Hour
	}
	if reconcileInterval <= 0 {
		reconcileInterval = 6 * time.Hour
	}
	return &Sweeper{
		files:             files,
		sessions:          sessions,
		storage:           store,
		sweepInterval:     sweepInterval,
		reconcileInterval: reconcileInterval,
		grace:             grace,
		now:               func() time.Time { return time.Now().UTC() },
		stopChan:          make(chan struct{}),
	}
}

// Start runs both passes once, then on their tickers until ctx is done or
// Stop is called. It returns immediately.
func (w *Sweeper) Start(ctx context.Context) {
	slog.Info("sweeper started",
		"sweep_interval", w.sweepInterval,
		"reconcile_interval", w.reconcileInterval,
		"grace", w.grace,
	)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		sweep := time.NewTicker(w.sweepInterval)
		defer sweep.Stop()
		reconcile := time.NewTicker(w.reconcileInterval)
		defer reconcile.Stop()

		w.runSweep(ctx)
		w.runReconcile(ctx)

		for {
			select {
			case <-sweep.C:
				w.runSweep(ctx)
			case <-reconcile.C:
				w.runReconcile(ctx)
			case <-ctx.Done():
				slog.Info("sweeper stopped")
				return
			case <-w.stopChan:
				slog.Info("sweeper stopped")
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight pass to finish.
func (w *Sweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
}

func (w *Sweeper) runSweep(ctx context.Context) {
	res, err := w.SweepExpired(ctx)
	if err != nil {
		slog.Error("expiry sweep failed", "error", err)
		return
	}
	if res.Files > 0 || res.Sessions > 0 {
		slog.Info("expiry sweep finished",
			"files", res.Files,
			"removed", res.Removed,
			"failed", res.Failed,
			"sessions", res.Sessions,
		)
	}
}

func (w *Sweeper) runReconcile(ctx context.Context) {
	res, err := w.Reconcile(ctx)
	if err != nil {
		slog.Error("reconciliation failed", "error", err)
		return
	}
	if res.Orphans > 0 {
		slog.Info("reconciliation finished",
			"scanned", res.Scanned,
			"orphans", res.Orphans,
			"removed", res.Removed,
		)
	}
}

// SweepExpired deletes every expired file row, then removes the objects.
// Rows are committed before storage is touched, so no database connection
// is held during file I/O. A failed removal is logged and left for Reconcile.
func (w *Sweeper) SweepExpired(ctx context.Context) (*SweepResult, error) {
	now := w.now()
	res := &SweepResult{}

	names, err := w.files.DeleteExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired files: %w", err)
	}
	res.Files = len(names)

	for _, name := range names {
		err := w.storage.Delete(ctx, name)
		switch {
		case err == nil:
			res.Removed++
		case errors.Is(err, storage.ErrNotFound):
			// already gone
		default:
			res.Failed++
			slog.Warn("failed to remove expired file", "name", name, "error", err)
		}
	}

	res.Sessions, err = w.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return res, fmt.Errorf("failed to purge sessions: %w", err)
	}

	return res, nil
}

// Reconcile removes stored objects that no file row references. Objects
// younger than the grace period are kept: their upload may still be on its
// way to inserting the row.
func (w *Sweeper) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	objects, err := w.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored objects: %w", err)
	}

	names, err := w.files.AllUniqueNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load file names: %w", err)
	}

	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	cutoff := w.now().Add(-w.grace)
	res := &ReconcileResult{Scanned: len(objects)}

	for _, obj := range objects {
		if _, ok := known[obj.Name]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}

		res.Orphans++
		err := w.storage.Delete(ctx, obj.Name)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("failed to remove orphaned object", "name", obj.Name, "error", err)
			continue
		}
		res.Removed++
	}

	return res, nil
}
