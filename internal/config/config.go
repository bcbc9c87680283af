// Package config loads Quill's runtime configuration from the environment,
// following the same env-tagged-struct idiom github.com/mna/mainer itself
// is built on (SPEC_FULL.md §1.3).
package config

import "github.com/caarlos0/env/v6"

// Config holds the handful of environment-overridable runtime knobs.
// internal/maincmd.Cmd's --stress-gc/--trace flags take precedence over
// these when both are set (SPEC_FULL.md §1.3).
type Config struct {
	StressGC           bool `env:"QUILL_GC_STRESS" envDefault:"false"`
	TraceExec          bool `env:"QUILL_TRACE" envDefault:"false"`
	GCInitialThreshold int  `env:"QUILL_GC_INITIAL_THRESHOLD" envDefault:"1024"`
}

// Load reads Config from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
