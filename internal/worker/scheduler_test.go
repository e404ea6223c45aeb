package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/queue"
	"github.com/WillCMcC/splitripper/internal/services"
	"github.com/WillCMcC/splitripper/internal/services/demucs"
	"github.com/WillCMcC/splitripper/internal/services/ytdlp"
	"github.com/WillCMcC/splitripper/internal/testsupport"
)

type fakeAcquirer struct {
	meta     ytdlp.Metadata
	probeErr error
	dlErr    error
}

func (f *fakeAcquirer) Probe(ctx context.Context, url string) (ytdlp.Metadata, error) {
	return f.meta, f.probeErr
}

func (f *fakeAcquirer) Download(ctx context.Context, url, destDir string, onProgress ytdlp.ProgressFunc) (string, error) {
	if f.dlErr != nil {
		return "", f.dlErr
	}
	if onProgress != nil {
		eta := 4
		onProgress(0.4, &eta)
		onProgress(1, nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(destDir, "track.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeSeparator struct {
	err     error
	block   chan struct{}
	started chan string
	modes   chan string
}

func (f *fakeSeparator) Separate(ctx context.Context, req demucs.Request, onProgress demucs.ProgressFunc) (map[string]string, error) {
	if f.started != nil {
		f.started <- req.JobID
	}
	if f.modes != nil {
		f.modes <- req.StemMode
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, services.Wrap(services.ErrCancelled, "separating", "stop signal", "Cancelled by user", nil)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if onProgress != nil {
		onProgress(0.1, nil)
		onProgress(0.55, nil)
		eta := 0
		onProgress(0.99, &eta)
	}
	dir := filepath.Join(req.OutputDir, "htdemucs", "track")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	stems := make(map[string]string, 2)
	for _, name := range []string{"vocals", "no_vocals"} {
		path := filepath.Join(dir, name+".mp3")
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			return nil, err
		}
		stems[name] = path
	}
	return stems, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestScheduler(t *testing.T, sep demucs.Separator, acq ytdlp.Acquirer, opts ...testsupport.ConfigOption) (*Scheduler, *queue.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Workflow.PollIntervalMS = 20
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	store := queue.NewStore(cfg)
	sched := New(cfg, store, nil, WithSeparator(sep), WithAcquirer(acq))
	return sched, store, cfg
}

func TestLocalJobRunsToDone(t *testing.T) {
	sched, store, _ := newTestScheduler(t, &fakeSeparator{}, &fakeAcquirer{}, testsupport.WithMaxConcurrency(1))

	src := filepath.Join(t.TempDir(), "Queen - Bohemian Rhapsody.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap := store.EnqueueLocal(src, "", "", config.StemMode2)

	if !sched.Start(context.Background()) {
		t.Fatal("Start returned false")
	}
	waitFor(t, "job done", func() bool {
		job, _ := store.Get(snap.ID)
		return job.Status.IsTerminal()
	})

	job, _ := store.Get(snap.ID)
	if job.Status != queue.StatusDone {
		t.Fatalf("status = %s (%s)", job.Status, job.ErrorMessage)
	}
	if job.SeparationFraction != 1 {
		t.Fatalf("separation fraction = %v", job.SeparationFraction)
	}
	if job.DestPath == "" {
		t.Fatal("dest path not set")
	}
	if _, err := os.Stat(filepath.Join(job.DestPath, "vocals", "Bohemian Rhapsody.mp3")); err != nil {
		t.Fatalf("staged vocals missing: %v", err)
	}
	waitFor(t, "active count drained", func() bool { return store.ActiveCount() == 0 })
	waitFor(t, "scheduler finished", func() bool { return !store.Running() })
}

func TestStemModeFallsBackToConfigDefault(t *testing.T) {
	sep := &fakeSeparator{modes: make(chan string, 1)}
	sched, store, _ := newTestScheduler(t, sep, &fakeAcquirer{}, testsupport.WithStemMode(config.StemMode4))

	src := filepath.Join(t.TempDir(), "Queen - Bohemian Rhapsody.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap := store.EnqueueLocal(src, "", "", "")

	sched.Start(context.Background())
	waitFor(t, "job done", func() bool {
		job, _ := store.Get(snap.ID)
		return job.Status.IsTerminal()
	})

	select {
	case mode := <-sep.modes:
		if mode != config.StemMode4 {
			t.Fatalf("separator stem mode = %q, want %q", mode, config.StemMode4)
		}
	default:
		t.Fatal("separator never received a request")
	}

	job, _ := store.Get(snap.ID)
	if job.Status != queue.StatusDone {
		t.Fatalf("status = %s (%s)", job.Status, job.ErrorMessage)
	}
	// Staging must see the same resolved mode: in four-stem mode the
	// accompaniment keeps its own directory instead of instrumental/.
	if _, err := os.Stat(filepath.Join(job.DestPath, "no_vocals", "Bohemian Rhapsody.mp3")); err != nil {
		t.Fatalf("staged accompaniment missing: %v", err)
	}
}

func TestRemoteJobRecordsMetadataAndProgress(t *testing.T) {
	acq := &fakeAcquirer{meta: ytdlp.Metadata{Title: "Queen - Bohemian Rhapsody", DurationSec: 354, Channel: "Queen Official"}}
	sched, store, _ := newTestScheduler(t, &fakeSeparator{}, acq)

	snap := store.EnqueueRemote("https://example.com/watch", "", config.StemMode2)
	sched.Start(context.Background())
	waitFor(t, "job done", func() bool {
		job, _ := store.Get(snap.ID)
		return job.Status.IsTerminal()
	})

	job, _ := store.Get(snap.ID)
	if job.Status != queue.StatusDone {
		t.Fatalf("status = %s (%s)", job.Status, job.ErrorMessage)
	}
	if job.Title != "Queen - Bohemian Rhapsody" || job.Channel != "Queen Official" {
		t.Fatalf("metadata not recorded: %+v", job)
	}
	if job.DownloadFraction != 1 || !job.Downloaded {
		t.Fatalf("download phase not finalized: %+v", job)
	}
}

func TestConcurrencyCeilingRespected(t *testing.T) {
	sep := &fakeSeparator{block: make(chan struct{}), started: make(chan string, 2)}
	sched, store, _ := newTestScheduler(t, sep, &fakeAcquirer{}, testsupport.WithMaxConcurrency(1))

	for i := 0; i < 2; i++ {
		src := filepath.Join(t.TempDir(), "a - b.mp3")
		if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		store.EnqueueLocal(src, "", "", config.StemMode2)
	}

	sched.Start(context.Background())
	<-sep.started
	// First job is blocked inside separation; the second must stay queued.
	time.Sleep(100 * time.Millisecond)
	if got := store.ActiveCount(); got != 1 {
		t.Fatalf("active = %d, want 1", got)
	}
	counts := store.Progress().Counts
	if counts[queue.StatusQueued] != 1 {
		t.Fatalf("queued count = %d", counts[queue.StatusQueued])
	}

	close(sep.block)
	<-sep.started
	waitFor(t, "queue drained", func() bool { return !store.HasPendingWork() })
}

func TestStopCancelsQueuedAndRunning(t *testing.T) {
	sep := &fakeSeparator{block: make(chan struct{}), started: make(chan string, 1)}
	sched, store, _ := newTestScheduler(t, sep, &fakeAcquirer{}, testsupport.WithMaxConcurrency(1))

	src := filepath.Join(t.TempDir(), "a - b.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	running := store.EnqueueLocal(src, "", "", config.StemMode2)
	queued := store.EnqueueLocal(src, "", "", config.StemMode2)

	sched.Start(context.Background())
	<-sep.started

	sched.Stop()
	waitFor(t, "scheduler stopped", func() bool { return !store.Running() })
	waitFor(t, "running job canceled", func() bool {
		job, _ := store.Get(running.ID)
		return job.Status == queue.StatusCanceled
	})
	job, _ := store.Get(queued.ID)
	if job.Status != queue.StatusCanceled {
		t.Fatalf("queued job status = %s", job.Status)
	}
	if store.ActiveCount() != 0 {
		t.Fatalf("active = %d", store.ActiveCount())
	}
}

func TestFailedSeparationMarksError(t *testing.T) {
	sep := &fakeSeparator{err: errors.New("model blew up")}
	sched, store, _ := newTestScheduler(t, sep, &fakeAcquirer{})

	src := filepath.Join(t.TempDir(), "a - b.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap := store.EnqueueLocal(src, "", "", config.StemMode2)

	sched.Start(context.Background())
	waitFor(t, "job terminal", func() bool {
		job, _ := store.Get(snap.ID)
		return job.Status.IsTerminal()
	})

	job, _ := store.Get(snap.ID)
	if job.Status != queue.StatusError {
		t.Fatalf("status = %s", job.Status)
	}
	if job.ErrorMessage == "" {
		t.Fatal("error message empty")
	}
}

func TestMissingLocalFileFailsJob(t *testing.T) {
	sched, store, _ := newTestScheduler(t, &fakeSeparator{}, &fakeAcquirer{})
	snap := store.EnqueueLocal(filepath.Join(t.TempDir(), "missing.mp3"), "", "", config.StemMode2)

	sched.Start(context.Background())
	waitFor(t, "job terminal", func() bool {
		job, _ := store.Get(snap.ID)
		return job.Status.IsTerminal()
	})
	job, _ := store.Get(snap.ID)
	if job.Status != queue.StatusError {
		t.Fatalf("status = %s", job.Status)
	}
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	sep := &fakeSeparator{block: make(chan struct{}), started: make(chan string, 1)}
	sched, store, _ := newTestScheduler(t, sep, &fakeAcquirer{})

	src := filepath.Join(t.TempDir(), "a - b.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	store.EnqueueLocal(src, "", "", config.StemMode2)

	if !sched.Start(context.Background()) {
		t.Fatal("first Start failed")
	}
	<-sep.started
	if sched.Start(context.Background()) {
		t.Fatal("second Start succeeded while running")
	}
	close(sep.block)
	waitFor(t, "scheduler finished", func() bool { return !store.Running() })
}
