// Package worker runs the job pipeline: a scheduler loop admits queued jobs
// up to the concurrency ceiling and executes each one in its own goroutine,
// downloading remote sources, driving stem separation, and staging results.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/metadata"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/services/demucs"
	"github.com/WillCMcC/splitripper/internal/services/ytdlp"
	"github.com/WillCMcC/splitripper/internal/staging"
)

// Scheduler owns the admission loop. Exactly one loop runs at a time; Start
// on a running scheduler is a no-op.
type Scheduler struct {
	store     *queue.Store
	cfg       *config.Config
	acquirer  ytdlp.Acquirer
	separator demucs.Separator
	stager    *staging.Stager
	extractor metadata.Extractor
	logger    *slog.Logger

	pollInterval time.Duration
	wg           sync.WaitGroup
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithAcquirer replaces the acquisition engine (primarily for tests).
func WithAcquirer(a ytdlp.Acquirer) Option {
	return func(s *Scheduler) {
		if a != nil {
			s.acquirer = a
		}
	}
}

// WithSeparator replaces the separation engine (primarily for tests).
func WithSeparator(sep demucs.Separator) Option {
	return func(s *Scheduler) {
		if sep != nil {
			s.separator = sep
		}
	}
}

// New constructs a scheduler wired to the shared store.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Scheduler {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Scheduler{
		store:        store,
		cfg:          cfg,
		acquirer:     ytdlp.New(cfg, logger),
		separator:    demucs.New(cfg, store, logger),
		stager:       staging.New(cfg, logger),
		extractor:    metadata.FilenameExtractor{},
		logger:       logger.With(logging.String(logging.FieldComponent, "worker")),
		pollInterval: time.Duration(cfg.Workflow.PollIntervalMS) * time.Millisecond,
	}
	if s.pollInterval <= 0 {
		s.pollInterval = 300 * time.Millisecond
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the scheduler loop. It reports false when a loop is already
// running; starting resets any previous stop signal.
func (s *Scheduler) Start(ctx context.Context) bool {
	if !s.store.TryStartScheduler() {
		return false
	}
	go s.run(ctx)
	return true
}

// Stop raises the queue-wide cancellation signal and best-effort terminates
// every registered external process. Queued jobs flip to canceled on the
// loop's next pass.
func (s *Scheduler) Stop() {
	s.store.RequestStop()
	for _, handle := range s.store.ActiveProcesses() {
		if err := handle.Terminate(); err != nil {
			s.logger.Warn("failed to terminate process on stop", logging.Error(err))
		}
	}
	s.logger.Info("stop requested")
}

// Wait blocks until every in-flight job goroutine has returned. Test-only
// convenience; the daemon relies on the loop's own lifecycle.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer func() {
		cancelJobs()
		s.wg.Wait()
		s.store.FinishScheduler()
		s.logger.Info("scheduler loop finished")
	}()

	s.logger.Info("scheduler loop started",
		logging.Int("max_concurrency", s.store.MaxConcurrency()))

	for {
		if ctx.Err() != nil {
			return
		}
		if s.store.StopRequested() {
			canceled := s.store.CancelAllQueued()
			if canceled > 0 {
				s.logger.Info("canceled queued jobs on stop", logging.Int("count", canceled))
			}
			return
		}

		slots := s.store.MaxConcurrency() - s.store.ActiveCount()
		for _, job := range s.store.AdmitQueued(slots) {
			s.wg.Add(1)
			go s.process(jobCtx, job)
		}

		if !s.store.HasPendingWork() && s.store.ActiveCount() == 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.pollInterval):
		}
	}
}
