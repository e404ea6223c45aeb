package demucs

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/progress"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/services"
)

const errorTailLines = 5

// Request describes one separation run.
type Request struct {
	JobID     string
	InputFile string
	OutputDir string
	StemMode  string
	Quality   string
	Model     string
}

// ProgressFunc receives overall progress updates for a run. The ETA pointer
// is nil when the engine's output carried no estimate.
type ProgressFunc func(fraction float64, etaSec *int)

// Separator is the behaviour the worker needs from the separation engine.
type Separator interface {
	Separate(ctx context.Context, req Request, onProgress ProgressFunc) (map[string]string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client drives the separation engine as a subprocess. The shared store
// supplies the global stop signal and the live process registry.
type Client struct {
	binary     string
	model      string
	quality    string
	readWait   time.Duration
	drainGrace time.Duration
	exec       Executor
	store      *queue.Store
	logger     *slog.Logger
}

// New constructs a separation client from configuration.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Client {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		binary:     cfg.Separation.Binary,
		model:      cfg.Separation.Model,
		quality:    cfg.Separation.Quality,
		readWait:   time.Duration(cfg.Workflow.ReadTimeoutMS) * time.Millisecond,
		drainGrace: time.Duration(cfg.Workflow.DrainGraceSeconds) * time.Second,
		exec:       commandExecutor{},
		store:      store,
		logger:     logger.With(logging.String(logging.FieldComponent, "demucs")),
	}
	if client.readWait <= 0 {
		client.readWait = 500 * time.Millisecond
	}
	if client.drainGrace <= 0 {
		client.drainGrace = 3 * time.Second
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type processHandle struct{ proc Process }

func (h processHandle) Terminate() error { return h.proc.Kill() }

// Separate runs the engine on req.InputFile and returns the stem-name to
// path mapping of the produced artifacts. Progress lines are parsed off the
// combined output stream; the loop re-checks the stop signal and the child's
// exit status every read timeout, and keeps draining buffered output for the
// drain grace period after exit.
func (c *Client) Separate(ctx context.Context, req Request, onProgress ProgressFunc) (map[string]string, error) {
	if req.InputFile == "" {
		return nil, services.Wrap(services.ErrValidation, "separating", "validate request", "No input file", nil)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStaging, "separating", "prepare output dir", "Failed to create separation output directory", err)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	model = resolveModel(model, req.StemMode)
	quality := req.Quality
	if quality == "" {
		quality = c.quality
	}
	preset := presetFor(quality)
	args := buildArgs(req, model, preset)

	c.logger.Info("starting separation",
		logging.String(logging.FieldJobID, req.JobID),
		logging.String("model", model),
		logging.String("stem_mode", req.StemMode),
		logging.String("quality", quality))

	proc, err := c.exec.Start(ctx, c.binary, args)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "separating", "start engine", "Failed to start separation engine", err)
	}
	c.store.RegisterProcess(req.JobID, processHandle{proc})
	defer c.store.UnregisterProcess(req.JobID)

	passes := 1
	if preset.shifts > 0 {
		passes = preset.shifts
	}
	tracker := progress.NewMultiPassTracker(passes)
	sampler := logging.NewProgressSampler(0)

	var (
		tail         []string
		lastOverall  float64
		exitObserved bool
		exitAt       time.Time
	)

	timer := time.NewTimer(c.readWait)
	defer timer.Stop()

drain:
	for {
		if c.store.StopRequested() {
			_ = proc.Kill()
			_ = proc.Wait()
			return nil, services.Wrap(services.ErrCancelled, "separating", "stop signal", "Cancelled by user", nil)
		}
		if !exitObserved {
			if _, done := proc.Exited(); done {
				exitObserved = true
				exitAt = time.Now()
			}
		}
		if exitObserved && time.Since(exitAt) > c.drainGrace {
			break
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(c.readWait)

		select {
		case line, ok := <-proc.Lines():
			if !ok {
				break drain
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			tail = append(tail, line)
			if len(tail) > errorTailLines {
				tail = tail[1:]
			}
			update := progress.ParseLine(line)
			if !update.HasFraction {
				continue
			}
			overall := tracker.Update(update.Fraction)
			if overall <= lastOverall {
				continue
			}
			lastOverall = overall
			var eta *int
			if update.HasETA {
				scaled := update.ETASeconds * tracker.RemainingPasses()
				eta = &scaled
			}
			if onProgress != nil {
				onProgress(overall, eta)
			}
			if sampler.ShouldLog(overall*100, "separating") {
				c.logger.Info("separation progress",
					logging.String(logging.FieldJobID, req.JobID),
					logging.Float64("fraction", overall))
			}
		case <-timer.C:
		}
	}

	if err := proc.Wait(); err != nil {
		message := strings.Join(tail, "\n")
		if message == "" {
			message = "separation engine failed"
		}
		return nil, services.Wrap(services.ErrExternalTool, "separating", "engine exit", services.Truncate(message, services.MaxErrorMessageLen), err)
	}

	stems := FindOutputs(req.OutputDir, req.StemMode)
	if stems == nil {
		return nil, services.Wrap(services.ErrExternalTool, "separating", "locate outputs", "Separation outputs not found", nil)
	}
	c.logger.Info("separation complete",
		logging.String(logging.FieldJobID, req.JobID),
		logging.Int("stems", len(stems)))
	return stems, nil
}
