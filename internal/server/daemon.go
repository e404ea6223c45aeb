package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/deps"
	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/preflight"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/worker"
)

// Daemon owns the HTTP API server and enforces single-instance execution via
// a file lock in the log directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *queue.Store
	scheduler *worker.Scheduler

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool                 `json:"running"`
	PID          int                  `json:"pid"`
	LockFilePath string               `json:"lock_file"`
	Queue        queue.GlobalProgress `json:"queue"`
	QueueRunning bool                 `json:"queue_running"`
	Dependencies []deps.Status        `json:"dependencies"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, scheduler *worker.Scheduler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || scheduler == nil {
		return nil, errors.New("daemon requires config, store, and scheduler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "splitripperd.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		scheduler: scheduler,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and brings up the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another splitripper daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("splitripper daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts queue processing, shuts down the API server, and releases the
// daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.store.Running() {
		d.scheduler.Stop()
		d.scheduler.Wait()
	}
	d.api.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("splitripper daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// APIAddr returns the bound API address, or "" before Start.
func (d *Daemon) APIAddr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status reports the daemon's runtime state including queue aggregates and
// external tool availability.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Queue:        d.store.Progress(),
		QueueRunning: d.store.Running(),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
	}
}

// StartQueue launches the scheduler if it is not already running.
func (d *Daemon) StartQueue() bool {
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return d.scheduler.Start(ctx)
}

// StopQueue requests that the scheduler stop, cancelling queued jobs and
// terminating active external processes.
func (d *Daemon) StopQueue() {
	d.scheduler.Stop()
}
