package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Daemon", statusOK, "running", false)
	if plain != "  Daemon:          [OK] running" {
		t.Fatalf("plain line = %q", plain)
	}
	colored := renderStatusLine("Daemon", statusError, "down", true)
	if !strings.HasPrefix(colored, colorRed) || !strings.HasSuffix(colored, colorReset) {
		t.Fatalf("colored line = %q", colored)
	}
	bare := renderStatusLine("Queue", statusInfo, "", false)
	if !strings.HasSuffix(bare, "[INFO]") {
		t.Fatalf("line without message = %q", bare)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("External tools", false)
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "== External tools ==" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("rule = %q", lines[1])
	}
}
