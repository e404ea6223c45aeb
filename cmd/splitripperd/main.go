package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/logging"
	"github.com/WillCMcC/splitripper/internal/preflight"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/server"
	"github.com/WillCMcC/splitripper/internal/staging"
	"github.com/WillCMcC/splitripper/internal/worker"
)

const (
	staleWorkDirAge    = 24 * time.Hour
	operationSweep     = 30 * time.Second
	operationMaxAge    = 5 * time.Minute
	operationDoneGrace = 60 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			logger.Info("preflight check passed", logging.String("check", result.Name))
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail))
	}
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		if dep.Available {
			logger.Info("external tool found",
				logging.String("tool", dep.Name),
				logging.String("detail", dep.Detail))
			continue
		}
		logger.Warn("external tool missing",
			logging.String("tool", dep.Name),
			logging.String("detail", dep.Detail))
	}

	cleaned := staging.CleanStale(cfg.Paths.WorkDir, staleWorkDirAge, logger)
	if len(cleaned.Removed) > 0 {
		logger.Info("removed stale work directories", logging.Int("count", len(cleaned.Removed)))
	}

	store := queue.NewStore(cfg)
	scheduler := worker.New(cfg, store, logger)

	d, err := server.New(cfg, store, scheduler, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	go sweepOperationProgress(ctx, store)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	d.Stop()
}

// sweepOperationProgress evicts finished and stale listing-progress entries so
// long-lived daemons do not accumulate them.
func sweepOperationProgress(ctx context.Context, store *queue.Store) {
	ticker := time.NewTicker(operationSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.EvictStaleOperations(operationMaxAge, operationDoneGrace)
		}
	}
}
