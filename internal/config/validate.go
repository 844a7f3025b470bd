package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Tunables that would corrupt
// queue behavior (zero batch, zero lease, negative retry ceiling) are
// rejected here so every component can trust its inputs.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateIntervals(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateQueue() error {
	if c.Queue.BatchSize < 1 {
		return fmt.Errorf("queue.batch_size must be at least 1, got %d", c.Queue.BatchSize)
	}
	if c.Queue.LeaseSeconds < 1 {
		return fmt.Errorf("queue.lease_seconds must be at least 1, got %d", c.Queue.LeaseSeconds)
	}
	if c.Queue.MaxRetries < 0 {
		return fmt.Errorf("queue.max_retries must not be negative, got %d", c.Queue.MaxRetries)
	}
	return nil
}

func (c *Config) validateIntervals() error {
	if c.Worker.PollIntervalSeconds < 1 {
		return fmt.Errorf("worker.poll_interval_seconds must be at least 1, got %d", c.Worker.PollIntervalSeconds)
	}
	if c.Maintenance.SweepIntervalSeconds < 1 {
		return fmt.Errorf("maintenance.sweep_interval_seconds must be at least 1, got %d", c.Maintenance.SweepIntervalSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
}
