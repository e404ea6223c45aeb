package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusDone     Status = "done"
	StatusError    Status = "error"
	StatusCanceled Status = "canceled"
)

var allStatuses = []Status{
	StatusQueued,
	StatusRunning,
	StatusDone,
	StatusError,
	StatusCanceled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusError, StatusCanceled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the state machine permits moving from s to
// next. Allowed edges: queued->running, queued->canceled, and
// running->{done,error,canceled}. Terminal states accept nothing.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusQueued:
		return next == StatusRunning || next == StatusCanceled
	case StatusRunning:
		return next == StatusDone || next == StatusError || next == StatusCanceled
	default:
		return false
	}
}

// SourceKind distinguishes the two acquisition strategies for a job.
type SourceKind string

const (
	SourceRemote SourceKind = "remote"
	SourceLocal  SourceKind = "local"
)

// Job tracks one queued source through acquisition and separation. Fields are
// mutated only through the Store (or by the scheduler and its per-job
// execution path, under the Store's lock).
type Job struct {
	ID   string
	Kind SourceKind

	// Source descriptor: URL for remote jobs, LocalPath for local jobs.
	URL       string
	LocalPath string

	// Display metadata, populated lazily by the acquisition probe or by
	// embedded file tags.
	Title        string
	DurationSec  int
	Channel      string
	HasArtistTag bool

	// Per-job overrides; empty values fall back to the global defaults.
	Folder   string
	StemMode string

	Status Status

	DownloadFraction   float64
	SeparationFraction float64
	DownloadETASec     *int
	SeparationETASec   *int

	Downloaded bool
	Separating bool

	ErrorMessage string
	DestPath     string

	CreatedAt time.Time
}

// Snapshot is the serializable read-only view of a Job handed to API and CLI
// consumers.
type Snapshot struct {
	ID                 string     `json:"id"`
	Kind               SourceKind `json:"kind"`
	URL                string     `json:"url,omitempty"`
	LocalPath          string     `json:"local_path,omitempty"`
	Title              string     `json:"title,omitempty"`
	DurationSec        int        `json:"duration_sec,omitempty"`
	Channel            string     `json:"channel,omitempty"`
	HasArtistTag       bool       `json:"has_artist_tag,omitempty"`
	Folder             string     `json:"folder,omitempty"`
	StemMode           string     `json:"stem_mode,omitempty"`
	Status             Status     `json:"status"`
	DownloadFraction   float64    `json:"download_fraction"`
	SeparationFraction float64    `json:"separation_fraction"`
	DownloadETASec     *int       `json:"download_eta_sec,omitempty"`
	SeparationETASec   *int       `json:"separation_eta_sec,omitempty"`
	Downloaded         bool       `json:"downloaded"`
	Separating         bool       `json:"separating"`
	ErrorMessage       string     `json:"error,omitempty"`
	DestPath           string     `json:"dest_path,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (j *Job) snapshot() Snapshot {
	snap := Snapshot{
		ID:                 j.ID,
		Kind:               j.Kind,
		URL:                j.URL,
		LocalPath:          j.LocalPath,
		Title:              j.Title,
		DurationSec:        j.DurationSec,
		Channel:            j.Channel,
		HasArtistTag:       j.HasArtistTag,
		Folder:             j.Folder,
		StemMode:           j.StemMode,
		Status:             j.Status,
		DownloadFraction:   j.DownloadFraction,
		SeparationFraction: j.SeparationFraction,
		Downloaded:         j.Downloaded,
		Separating:         j.Separating,
		ErrorMessage:       j.ErrorMessage,
		DestPath:           j.DestPath,
		CreatedAt:          j.CreatedAt,
	}
	if j.DownloadETASec != nil {
		v := *j.DownloadETASec
		snap.DownloadETASec = &v
	}
	if j.SeparationETASec != nil {
		v := *j.SeparationETASec
		snap.SeparationETASec = &v
	}
	return snap
}
