package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WillCMcC/splitripper/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Output directory", dir)
	if !result.Passed {
		t.Fatalf("result = %+v", result)
	}

	result = CheckDirectoryAccess("Output directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("missing directory passed")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("detail = %q", result.Detail)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("Output directory", file); result.Passed {
		t.Fatal("plain file passed directory check")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	results := RunAll(cfg)
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for _, result := range results {
		if !result.Passed {
			t.Errorf("%s failed: %s", result.Name, result.Detail)
		}
	}

	if got := RunAll(nil); got != nil {
		t.Fatalf("RunAll(nil) = %v", got)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Acquisition.Binary = "definitely-not-a-real-binary-xyz"
	cfg.Separation.Binary = "also-not-a-real-binary-xyz"

	results := CheckSystemDeps(cfg)
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for _, result := range results[:2] {
		if result.Available {
			t.Errorf("%s reported available", result.Name)
		}
	}
}

func TestToolVersionMissingBinary(t *testing.T) {
	if got := ToolVersion("definitely-not-a-real-binary-xyz"); got != "" {
		t.Fatalf("ToolVersion = %q", got)
	}
	if got := ToolVersion(""); got != "" {
		t.Fatalf("ToolVersion(empty) = %q", got)
	}
}
