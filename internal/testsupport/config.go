package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/WillCMcC/splitripper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStemMode overrides the default stem mode on the test config.
func WithStemMode(mode string) ConfigOption {
	return func(c *config.Config) {
		c.Separation.StemMode = mode
	}
}

// WithMaxConcurrency overrides the concurrency ceiling on the test config.
func WithMaxConcurrency(n int) ConfigOption {
	return func(c *config.Config) {
		c.Workflow.MaxConcurrency = n
	}
}
