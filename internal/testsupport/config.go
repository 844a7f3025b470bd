package testsupport

import (
	"path/filepath"
	"testing"

	"flowq/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Queue.LeaseSeconds = 60
	cfg.Worker.PollIntervalSeconds = 1
	cfg.Maintenance.SweepIntervalSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithBatchSize overrides the claim batch size on the test config.
func WithBatchSize(size int) ConfigOption {
	return func(c *config.Config) {
		c.Queue.BatchSize = size
	}
}

// WithLeaseSeconds overrides the orphan-recovery lease on the test config.
func WithLeaseSeconds(seconds int) ConfigOption {
	return func(c *config.Config) {
		c.Queue.LeaseSeconds = seconds
	}
}

// WithMaxRetries overrides the retry ceiling on the test config.
func WithMaxRetries(max int) ConfigOption {
	return func(c *config.Config) {
		c.Queue.MaxRetries = max
	}
}

// WithFlow sets the worker flow name on the test config.
func WithFlow(name string) ConfigOption {
	return func(c *config.Config) {
		c.Worker.FlowName = name
	}
}
