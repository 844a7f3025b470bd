package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flowq/internal/config"
	"flowq/internal/queue"
)

// Handler processes one claimed record. A nil return reports success; a
// non-nil return reports failure with the error text as diagnostic detail.
// Handlers must be idempotent: a record may be processed more than once
// when a lease expires mid-flight.
type Handler func(ctx context.Context, record *queue.Record) error

// Worker claims and processes records for one flow.
type Worker struct {
	store        *queue.Store
	logger       *slog.Logger
	flowName     string
	handler      Handler
	claimantID   string
	batchSize    int
	pollInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a worker for the configured flow. The claimant identity
// is derived once per worker; restarting a process yields a fresh one.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, flowName string, handler Handler) (*Worker, error) {
	if cfg == nil || store == nil || handler == nil {
		return nil, errors.New("worker requires config, store, and handler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:        store,
		logger:       logger,
		flowName:     flowName,
		handler:      handler,
		claimantID:   NewClaimantID(),
		batchSize:    cfg.Queue.BatchSize,
		pollInterval: cfg.PollInterval(),
	}, nil
}

// ClaimantID returns the worker's claim identity.
func (w *Worker) ClaimantID() string {
	return w.claimantID
}

// Start launches the claim loop until the context is canceled or Stop is
// called.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(runCtx)
	}()

	w.logger.Info("worker started",
		slog.String("flow", w.flowName),
		slog.String("claimant", w.claimantID),
		slog.Int("batch_size", w.batchSize))
	return nil
}

// Stop halts the claim loop and waits for in-flight records to be reported.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
	w.logger.Info("worker stopped", slog.String("claimant", w.claimantID))
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		processed, err := w.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("claim cycle failed", slog.String("flow", w.flowName), slog.Any("error", err))
		}

		// Keep draining while the queue has work; fall back to the poll
		// interval once a cycle comes up empty.
		if processed > 0 {
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims and processes a single batch, returning the number of
// records handled. Exposed for callers that drive the loop themselves.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	records, err := w.store.ClaimBatch(ctx, w.flowName, w.batchSize, w.claimantID)
	if err != nil {
		return 0, fmt.Errorf("claim batch: %w", err)
	}

	for _, record := range records {
		w.process(ctx, record)
	}
	return len(records), nil
}

func (w *Worker) process(ctx context.Context, record *queue.Record) {
	log := w.logger.With(
		slog.Int64("record", record.ID),
		slog.String("flow", record.FlowName),
		slog.String("claimant", w.claimantID))

	handlerErr := w.handler(ctx, record)

	var reportErr error
	if handlerErr == nil {
		reportErr = w.store.ReportSuccess(ctx, record.ID, w.claimantID)
	} else {
		log.Warn("record failed", slog.Any("error", handlerErr), slog.Int("retry_count", record.RetryCount+1))
		reportErr = w.store.ReportFailure(ctx, record.ID, w.claimantID, handlerErr.Error())
	}

	switch {
	case reportErr == nil:
		if handlerErr == nil {
			log.Debug("record completed")
		}
	case errors.Is(reportErr, queue.ErrNotOwner):
		// Lease expired and the record was reclaimed; the result is stale.
		log.Warn("lease lost before report, discarding result", slog.Any("error", reportErr))
	case errors.Is(reportErr, queue.ErrInvalidTransition):
		log.Error("unexpected record state on report", slog.Any("error", reportErr))
	default:
		log.Error("report failed", slog.Any("error", reportErr))
	}
}
