package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/WillCMcC/splitripper/internal/config"
	"github.com/WillCMcC/splitripper/internal/queue"
)

func writeStem(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestStager(t *testing.T, outputRoot string) *Stager {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.OutputDir = outputRoot
	return New(&cfg, nil)
}

func TestStageTwoStemLayout(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()
	stems := map[string]string{
		"vocals":    writeStem(t, work, "vocals.mp3"),
		"no_vocals": writeStem(t, work, "no_vocals.mp3"),
	}
	job := queue.Snapshot{
		ID:       "j1",
		Kind:     queue.SourceRemote,
		Title:    "Queen - Bohemian Rhapsody",
		StemMode: config.StemMode2,
	}

	dest, err := newTestStager(t, out).Stage(job, stems)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if want := filepath.Join(out, "Queen"); dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
	for _, rel := range []string{
		filepath.Join("vocals", "Bohemian Rhapsody.mp3"),
		filepath.Join("instrumental", "Bohemian Rhapsody.mp3"),
	} {
		if _, err := os.Stat(filepath.Join(dest, rel)); err != nil {
			t.Errorf("missing staged stem %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(stems["vocals"]); !os.IsNotExist(err) {
		t.Error("source stem not removed after move")
	}
}

func TestStageFourStemUsesStemNames(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()
	stems := map[string]string{
		"vocals": writeStem(t, work, "vocals.wav"),
		"drums":  writeStem(t, work, "drums.wav"),
		"bass":   writeStem(t, work, "bass.wav"),
		"other":  writeStem(t, work, "other.wav"),
	}
	job := queue.Snapshot{
		ID:       "j2",
		Kind:     queue.SourceLocal,
		Title:    "Untitled Track",
		Channel:  "Cool Channel",
		StemMode: config.StemMode4,
	}

	dest, err := newTestStager(t, out).Stage(job, stems)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if want := filepath.Join(out, "Cool Channel"); dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
	for name := range stems {
		target := filepath.Join(dest, name, "Untitled Track.wav")
		if _, err := os.Stat(target); err != nil {
			t.Errorf("missing %s: %v", target, err)
		}
	}
}

func TestStageFolderOverride(t *testing.T) {
	work := t.TempDir()
	override := t.TempDir()
	stems := map[string]string{"vocals": writeStem(t, work, "vocals.mp3")}
	job := queue.Snapshot{
		ID:       "j3",
		Title:    "Artist - Song",
		Folder:   override,
		StemMode: config.StemMode2,
	}

	dest, err := newTestStager(t, t.TempDir()).Stage(job, stems)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if want := filepath.Join(override, "Artist"); dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
}

func TestStageTaggedLocalFile(t *testing.T) {
	work := t.TempDir()
	out := t.TempDir()
	stems := map[string]string{"vocals": writeStem(t, work, "vocals.mp3")}
	job := queue.Snapshot{
		ID:           "j4",
		Kind:         queue.SourceLocal,
		Title:        "Bohemian Rhapsody",
		Channel:      "Queen",
		HasArtistTag: true,
		StemMode:     config.StemMode2,
	}

	dest, err := newTestStager(t, out).Stage(job, stems)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if want := filepath.Join(out, "Queen"); dest != want {
		t.Fatalf("dest = %q, want %q", dest, want)
	}
	if _, err := os.Stat(filepath.Join(dest, "vocals", "Bohemian Rhapsody.mp3")); err != nil {
		t.Errorf("missing staged stem: %v", err)
	}
}

func TestStageEmptyStems(t *testing.T) {
	if _, err := newTestStager(t, t.TempDir()).Stage(queue.Snapshot{ID: "j5"}, nil); err == nil {
		t.Fatal("expected error for empty stem set")
	}
}

func TestCleanStale(t *testing.T) {
	work := t.TempDir()
	stale := filepath.Join(work, "old-job")
	if err := os.Mkdir(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(work, "new-job")
	if err := os.Mkdir(fresh, 0o755); err != nil {
		t.Fatal(err)
	}

	// Zero max age marks every existing directory stale.
	result := CleanStale(work, 0, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("removed %d dirs, want 2", len(result.Removed))
	}
}
