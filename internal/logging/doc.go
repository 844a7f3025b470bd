// Package logging assembles the structured slog loggers used across flowq
// components.
//
// It owns the console/JSON handler selection, level parsing, and log file
// plumbing so workers, sweeps, and CLI commands emit records with the same
// shape. Prefer these constructors over hand-rolled slog setup.
package logging
