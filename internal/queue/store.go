package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/WillCMcC/splitripper/internal/config"
)

// ProcessHandle is the minimal control surface the store keeps for a live
// external process, used only for forced termination on Stop.
type ProcessHandle interface {
	Terminate() error
}

// Store is the thread-safe container for all mutable queue state: the job
// list, concurrency accounting, the scheduler flag, the stop signal, the live
// process registry, and the auxiliary operation-progress map. Every exported
// method is an atomic operation; reads hand out snapshots, never live
// aliases. Blocking external work must never happen while the lock is held.
type Store struct {
	mu sync.Mutex

	jobs           []*Job
	maxConcurrency int
	active         int
	running        bool
	stopRequested  bool

	processes  map[string]ProcessHandle
	operations map[string]OperationProgress
}

// NewStore constructs a store seeded with the configured concurrency ceiling.
func NewStore(cfg *config.Config) *Store {
	limit := config.Default().Workflow.MaxConcurrency
	if cfg != nil {
		limit = cfg.Workflow.MaxConcurrency
	}
	return &Store{
		maxConcurrency: clampConcurrency(limit),
		processes:      make(map[string]ProcessHandle),
		operations:     make(map[string]OperationProgress),
	}
}

func clampConcurrency(n int) int {
	if n < config.MinConcurrency {
		return config.MinConcurrency
	}
	if n > config.MaxConcurrency {
		return config.MaxConcurrency
	}
	return n
}

// MaxConcurrency returns the current admission ceiling.
func (s *Store) MaxConcurrency() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxConcurrency
}

// SetMaxConcurrency updates the ceiling, clamped to the hard bounds, and
// returns the applied value. It affects future admissions only.
func (s *Store) SetMaxConcurrency(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxConcurrency = clampConcurrency(n)
	return s.maxConcurrency
}

// ActiveCount returns the number of in-flight per-job executions.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// DecrementActive releases one unit of concurrency capacity, clamping at
// zero. Every per-job execution path must call this exactly once on exit.
func (s *Store) DecrementActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active > 0 {
		s.active--
	}
}

// Running reports whether a scheduler instance currently owns the queue.
func (s *Store) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// TryStartScheduler atomically claims the scheduler slot. It returns false if
// a scheduler is already running; on success the stop signal is reset so a
// stale Stop cannot cancel the new run.
func (s *Store) TryStartScheduler() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.stopRequested = false
	s.active = 0
	return true
}

// FinishScheduler clears the running flag. Only the scheduler loop calls
// this, on every exit path.
func (s *Store) FinishScheduler() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// RequestStop raises the queue-wide cancellation signal.
func (s *Store) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopRequested = true
}

// StopRequested reports whether the cancellation signal is raised.
func (s *Store) StopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopRequested
}

// RegisterProcess records a live external process handle for a job so Stop
// can terminate it.
func (s *Store) RegisterProcess(jobID string, handle ProcessHandle) {
	if handle == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processes[jobID] = handle
}

// UnregisterProcess removes a job's process handle. Callers must invoke this
// on every exit path, including failures, so Stop never targets stale
// handles.
func (s *Store) UnregisterProcess(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processes, jobID)
}

// ActiveProcesses returns the registered process handles.
func (s *Store) ActiveProcesses() []ProcessHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	handles := make([]ProcessHandle, 0, len(s.processes))
	for _, handle := range s.processes {
		handles = append(handles, handle)
	}
	return handles
}

func newJobID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}
