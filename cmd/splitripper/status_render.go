package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// statusKind classifies a rendered status line so the terminal output can
// pick a color and bracket label for it.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
)

const statusLabelWidth = 16

func (k statusKind) label() string {
	switch k {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	}
	return "INFO"
}

func (k statusKind) color() string {
	switch k {
	case statusOK:
		return colorGreen
	case statusWarn:
		return colorYellow
	case statusError:
		return colorRed
	case statusInfo:
		return colorBlue
	}
	return ""
}

// renderStatusLine formats one "  Label:   [KIND] message" row, colorized
// as a whole when the output is a terminal.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	var b strings.Builder
	b.WriteString("  ")
	fmt.Fprintf(&b, "%-*s ", statusLabelWidth, label+":")
	b.WriteString("[" + kind.label() + "]")
	if message != "" {
		b.WriteString(" " + message)
	}
	line := b.String()
	if colorize {
		if c := kind.color(); c != "" {
			line = c + line + colorReset
		}
	}
	return line
}

// renderSectionHeader returns the header line and its underline rule.
func renderSectionHeader(title string, colorize bool) []string {
	header := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", len(header))
	if colorize {
		header = colorBlue + header + colorReset
		rule = colorBlue + rule + colorReset
	}
	return []string{header, rule}
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
