// Package config loads, normalizes, and validates flowq configuration.
//
// Configuration lives in a TOML file (default ~/.config/flowq/config.toml,
// or flowq.toml in the working directory). Load applies repository defaults
// first, then file values, then expands paths and validates the result so
// bad tunables fail at startup rather than per call.
//
// The queue tunables (batch size, lease duration, retry ceiling) are passed
// into components as explicit configuration rather than read from globals,
// which lets tests run several independent consumers in one process.
package config
