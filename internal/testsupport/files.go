package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteAudioFixture creates a small stand-in audio file at path, creating
// parent directories as needed. The payload is arbitrary bytes; nothing in
// the pipeline decodes audio content.
func WriteAudioFixture(t testing.TB, path string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("fixture audio"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
