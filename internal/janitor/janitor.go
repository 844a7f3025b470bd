package janitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"flowq/internal/config"
	"flowq/internal/queue"
)

// SweepResult reports what a single maintenance pass changed.
type SweepResult struct {
	Reclaimed int64
	Requeued  int64
}

// Janitor periodically reclaims orphans and requeues retryable failures.
type Janitor struct {
	store      *queue.Store
	logger     *slog.Logger
	lease      time.Duration
	maxRetries int
	interval   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a janitor from the shared queue tunables.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Janitor, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("janitor requires config and store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		store:      store,
		logger:     logger,
		lease:      cfg.Lease(),
		maxRetries: cfg.Queue.MaxRetries,
		interval:   cfg.SweepInterval(),
	}, nil
}

// Start launches the sweep loop until the context is canceled or Stop is
// called. A sweep runs immediately on start, then on every interval tick.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return errors.New("janitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.running = true

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.run(runCtx)
	}()

	j.logger.Info("janitor started",
		slog.Duration("lease", j.lease),
		slog.Duration("interval", j.interval),
		slog.Int("max_retries", j.maxRetries))
	return nil
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	cancel()
	j.wg.Wait()
	j.logger.Info("janitor stopped")
}

func (j *Janitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if _, err := j.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			j.logger.Error("sweep failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep runs one maintenance pass: orphan reclaim first, then the retry
// requeue, so a record reclaimed this pass is immediately claimable.
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	reclaimed, err := j.store.ReclaimOrphans(ctx, j.lease)
	if err != nil {
		return result, err
	}
	result.Reclaimed = reclaimed

	requeued, err := j.store.RequeueFailed(ctx, j.maxRetries)
	if err != nil {
		return result, err
	}
	result.Requeued = requeued

	if result.Reclaimed > 0 || result.Requeued > 0 {
		j.logger.Info("sweep finished",
			slog.Int64("reclaimed", result.Reclaimed),
			slog.Int64("requeued", result.Requeued))
	}
	return result, nil
}
