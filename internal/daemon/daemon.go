package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"flowq/internal/config"
	"flowq/internal/janitor"
	"flowq/internal/queue"
)

// ErrAlreadyRunning indicates another daemon holds the instance lock.
var ErrAlreadyRunning = errors.New("another maintenance daemon is already running")

// Daemon owns the queue store and the periodic sweep for one database.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *queue.Store
	janitor *janitor.Janitor
	lock    *flock.Flock
	running atomic.Bool
}

// New opens the queue store and prepares the daemon. The instance lock is
// not taken until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return nil, err
	}

	j, err := janitor.New(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &Daemon{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		janitor: j,
		lock:    flock.New(LockPath(cfg)),
	}, nil
}

// LockPath returns the instance lock file location for a configuration.
func LockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "flowqd.lock")
}

// Store exposes the daemon's queue store for status reporting.
func (d *Daemon) Store() *queue.Store {
	return d.store
}

// Start acquires the instance lock and launches the sweep loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, d.lock.Path())
	}

	if err := d.janitor.Start(ctx); err != nil {
		d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		slog.String("database", d.store.Path()),
		slog.String("lock", d.lock.Path()))
	return nil
}

// Status reports queue health while the daemon runs.
func (d *Daemon) Status(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx, d.cfg.Queue.MaxRetries)
}

// Close stops the sweep, releases the instance lock, and closes the store.
// It is safe to call whether or not Start succeeded.
func (d *Daemon) Close() error {
	if d.running.Swap(false) {
		d.janitor.Stop()
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release instance lock", slog.Any("error", err))
		}
	}
	return d.store.Close()
}
