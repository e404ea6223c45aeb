package server_test

import (
	"context"
	"testing"

	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/server"
	"github.com/WillCMcC/splitripper/internal/testsupport"
	"github.com/WillCMcC/splitripper/internal/worker"
)

func newTestDaemon(t *testing.T) *server.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := queue.NewStore(cfg)
	sched := worker.New(cfg, store, nil)
	d, err := server.New(cfg, store, sched, nil)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon should report running")
	}
	if d.APIAddr() == "" {
		t.Fatal("expected a bound api address")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("daemon should stop")
	}

	// After release the lock can be reacquired.
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	d.Stop()
}

func TestDaemonStatus(t *testing.T) {
	d := newTestDaemon(t)

	status := d.Status()
	if status.Running {
		t.Fatal("status should report stopped before Start")
	}
	if status.LockFilePath == "" {
		t.Fatal("expected lock file path")
	}
	if status.Queue.Counts == nil {
		t.Fatal("expected queue counts")
	}
}
