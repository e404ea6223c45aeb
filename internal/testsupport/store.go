package testsupport

import (
	"testing"

	"github.com/WillCMcC/splitripper/internal/queue"
)

// NewStore returns a queue store seeded from a per-test config.
func NewStore(t testing.TB, opts ...ConfigOption) *queue.Store {
	t.Helper()
	return queue.NewStore(NewConfig(t, opts...))
}
