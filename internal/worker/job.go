package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/metadata"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/services"
	"github.com/WillCMcC/splitripper/internal/services/demucs"
)

// process executes one admitted job end to end. The active-count decrement
// is deferred so every exit path, including panics, releases the slot.
func (s *Scheduler) process(ctx context.Context, job *queue.Job) {
	defer s.wg.Done()
	defer s.store.DecrementActive()
	defer func() {
		if r := recover(); r != nil {
			msg := services.Truncate(fmt.Sprintf("internal error: %v", r), services.MaxErrorMessageLen)
			s.store.FailJob(job.ID, msg)
			s.logger.Error("job panicked",
				logging.String(logging.FieldJobID, job.ID),
				logging.Any("panic", r))
		}
	}()

	logger := s.logger.With(logging.String(logging.FieldJobID, job.ID))
	logger.Info("job started", logging.String("kind", string(job.Kind)))

	var err error
	switch job.Kind {
	case queue.SourceLocal:
		err = s.processLocal(ctx, job, logger)
	default:
		err = s.processRemote(ctx, job, logger)
	}

	workDir := s.jobWorkDir(job.ID)
	if workDir != "" {
		_ = os.RemoveAll(workDir)
	}

	switch {
	case err == nil:
		logger.Info("job done")
	case services.IsCancelled(err) || s.store.StopRequested():
		s.store.CancelJob(job.ID)
		logger.Info("job canceled")
	default:
		s.store.FailJob(job.ID, services.JobMessage(err))
		logger.Error("job failed", logging.Error(err))
	}
}

func (s *Scheduler) jobWorkDir(jobID string) string {
	if s.cfg.Paths.WorkDir == "" {
		return ""
	}
	return filepath.Join(s.cfg.Paths.WorkDir, jobID)
}

// processRemote downloads the source, separates it, and stages the stems.
func (s *Scheduler) processRemote(ctx context.Context, job *queue.Job, logger *slog.Logger) error {
	// Probe is best-effort: a job without metadata still separates fine, the
	// staging names just lean on the fallback chain.
	if meta, err := s.acquirer.Probe(ctx, job.URL); err == nil {
		s.store.SetJobMetadata(job.ID, meta.Title, meta.Channel, meta.DurationSec, false)
	} else if services.IsCancelled(err) {
		return err
	}

	downloadDir := filepath.Join(s.jobWorkDir(job.ID), "download")
	audioFile, err := s.acquirer.Download(ctx, job.URL, downloadDir, func(fraction float64, etaSec *int) {
		s.store.UpdateDownloadProgress(job.ID, fraction, etaSec)
	})
	if err != nil {
		return err
	}
	if s.store.StopRequested() {
		return services.Wrap(services.ErrCancelled, "downloading", "stop signal", "Cancelled by user", nil)
	}
	s.store.FinishDownload(job.ID)
	logger.Info("download complete", logging.String("file", audioFile))

	return s.separateAndStage(ctx, job, audioFile)
}

// processLocal skips acquisition: the file is already on disk, so the
// download phase completes immediately after the metadata pass.
func (s *Scheduler) processLocal(ctx context.Context, job *queue.Job, logger *slog.Logger) error {
	if _, err := os.Stat(job.LocalPath); err != nil {
		return services.Wrap(services.ErrValidation, "downloading", "check local file", "Local file not found", err)
	}

	artist, title, _ := s.extractor.Extract(job.LocalPath)
	if title == "" && job.Title == "" {
		title = metadata.DeriveTitle(job.LocalPath)
	}
	s.store.SetJobMetadata(job.ID, title, artist, 0, artist != "")
	s.store.FinishDownload(job.ID)
	logger.Info("local file ready", logging.String("file", job.LocalPath))

	return s.separateAndStage(ctx, job, job.LocalPath)
}

func (s *Scheduler) separateAndStage(ctx context.Context, job *queue.Job, audioFile string) error {
	snap, ok := s.store.Get(job.ID)
	if !ok {
		return services.Wrap(services.ErrValidation, "separating", "load job", "Job disappeared from queue", nil)
	}

	// Resolve the effective stem mode once: job override, then the
	// configured global default. Separation and staging must agree on it.
	if snap.StemMode == "" {
		snap.StemMode = s.cfg.Separation.StemMode
	}

	stems, err := s.separator.Separate(ctx, demucs.Request{
		JobID:     job.ID,
		InputFile: audioFile,
		OutputDir: filepath.Join(s.jobWorkDir(job.ID), "stems"),
		StemMode:  snap.StemMode,
	}, func(fraction float64, etaSec *int) {
		s.store.UpdateSeparationProgress(job.ID, fraction, etaSec)
	})
	if err != nil {
		return err
	}

	destDir, err := s.stager.Stage(snap, stems)
	if err != nil {
		return err
	}
	s.store.CompleteJob(job.ID, destDir)
	return nil
}
