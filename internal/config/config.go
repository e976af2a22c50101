// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite event log file. Empty selects the
	// in-memory store (events do not survive restarts).
	DBPath string `koanf:"db_path"`

	// RefDataPath locates the YAML file describing divisions and
	// categories. Empty starts the service with no divisions.
	RefDataPath string `koanf:"refdata_path"`

	// PodiumDepth is the default podium truncation when a category
	// link carries no depth of its own.
	PodiumDepth int `koanf:"podium_depth"`

	// RecomputeWorkers bounds the parallel standings recompute fan-out
	// across divisions.
	RecomputeWorkers int `koanf:"recompute_workers"`
}

// New creates a Config using provided options. Context is accepted
// first to satisfy the project-wide convention; it is reserved for
// future use and currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		DBPath:           "",
		RefDataPath:      "",
		PodiumDepth:      3,
		RecomputeWorkers: runtime.NumCPU(),
	}
}
