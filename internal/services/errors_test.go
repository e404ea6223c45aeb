package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	underlying := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "separation", "run engine", "engine failed", underlying)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("expected wrapped error to match ErrExternalTool")
	}
	if !errors.Is(err, underlying) {
		t.Fatal("expected wrapped error to match the underlying error")
	}
	if !strings.Contains(err.Error(), "separation: run engine: engine failed") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "acquisition", "", "network hiccup", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected nil marker to default to ErrTransient")
	}
}

func TestIsCancelled(t *testing.T) {
	err := Wrap(ErrCancelled, "separation", "terminate engine", "stop requested", nil)
	if !IsCancelled(err) {
		t.Fatal("expected cancellation to be recognized")
	}
	if IsCancelled(Wrap(ErrExternalTool, "separation", "", "boom", nil)) {
		t.Fatal("tool failure must not be treated as cancellation")
	}
}

func TestJobMessageBounded(t *testing.T) {
	long := strings.Repeat("x", MaxErrorMessageLen*2)
	msg := JobMessage(errors.New(long))
	if len([]rune(msg)) != MaxErrorMessageLen {
		t.Fatalf("expected %d runes, got %d", MaxErrorMessageLen, len([]rune(msg)))
	}
	if !strings.HasSuffix(msg, "…") {
		t.Fatal("expected truncated message to end with ellipsis")
	}
	if JobMessage(nil) != "" {
		t.Fatal("nil error should render empty")
	}
}

func TestTruncateShortMessageUntouched(t *testing.T) {
	if got := Truncate("short", 300); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}
