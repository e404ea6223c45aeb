package main

import (
	"fmt"
	"strings"

	"github.com/WillCMcC/splitripper/internal/queue"
)

const titleColumnWidth = 48

// jobLabel picks the best human-readable identifier for a queue row.
func jobLabel(snap queue.Snapshot) string {
	label := strings.TrimSpace(snap.Title)
	if label == "" {
		if snap.Kind == queue.SourceLocal {
			label = snap.LocalPath
		} else {
			label = snap.URL
		}
	}
	if runes := []rune(label); len(runes) > titleColumnWidth {
		label = string(runes[:titleColumnWidth-1]) + "…"
	}
	return label
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// jobPercent renders the phase-appropriate fraction for a queue row.
func jobPercent(snap queue.Snapshot) string {
	switch snap.Status {
	case queue.StatusDone:
		return "100%"
	case queue.StatusQueued:
		return "-"
	}
	fraction := snap.DownloadFraction
	if snap.Kind == queue.SourceLocal || snap.Downloaded {
		fraction = snap.SeparationFraction
	}
	return fmt.Sprintf("%.0f%%", fraction*100)
}

// jobPhase names the active phase for display.
func jobPhase(snap queue.Snapshot) string {
	if snap.Status != queue.StatusRunning {
		return string(snap.Status)
	}
	if snap.Separating || snap.Kind == queue.SourceLocal {
		return "separating"
	}
	return "downloading"
}

// formatETA renders a second count as m:ss (or h:mm:ss above an hour).
func formatETA(etaSec *int) string {
	if etaSec == nil {
		return "-"
	}
	secs := *etaSec
	if secs < 0 {
		return "-"
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func jobETA(snap queue.Snapshot) string {
	if snap.Status != queue.StatusRunning {
		return "-"
	}
	if snap.Separating || snap.Kind == queue.SourceLocal {
		return formatETA(snap.SeparationETASec)
	}
	return formatETA(snap.DownloadETASec)
}
