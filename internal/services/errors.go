package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrExternalTool  = errors.New("external tool error")
	ErrCancelled     = errors.New("cancelled")
	ErrStaging       = errors.New("staging error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransient     = errors.New("transient failure")
)

// MaxErrorMessageLen bounds the error text stored on a job record.
const MaxErrorMessageLen = 300

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsCancelled reports whether an error represents a user-initiated stop
// rather than a genuine failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// JobMessage renders an error into the bounded form stored on a job record.
func JobMessage(err error) string {
	if err == nil {
		return ""
	}
	return Truncate(err.Error(), MaxErrorMessageLen)
}

// Truncate bounds a message to max runes, appending an ellipsis when cut.
func Truncate(message string, max int) string {
	runes := []rune(message)
	if len(runes) <= max {
		return message
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
