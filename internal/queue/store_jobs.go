package queue

// EnqueueRemote appends a job for a remote source reference.
func (s *Store) EnqueueRemote(url, folder, stemMode string) Snapshot {
	job := &Job{
		ID:        newJobID(),
		Kind:      SourceRemote,
		URL:       url,
		Folder:    folder,
		StemMode:  stemMode,
		Status:    StatusQueued,
		CreatedAt: now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return job.snapshot()
}

// EnqueueLocal appends a job for an already-downloaded local audio file.
func (s *Store) EnqueueLocal(path, title, folder, stemMode string) Snapshot {
	job := &Job{
		ID:        newJobID(),
		Kind:      SourceLocal,
		LocalPath: path,
		Title:     title,
		Folder:    folder,
		StemMode:  stemMode,
		Status:    StatusQueued,
		CreatedAt: now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return job.snapshot()
}

// Get returns a snapshot of the job with the given id.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job := s.findLocked(id); job != nil {
		return job.snapshot(), true
	}
	return Snapshot{}, false
}

// List returns snapshots of every job in insertion order.
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.snapshot())
	}
	return out
}

// Clear removes jobs from the queue. With keepRunning set, running jobs are
// retained; otherwise the whole queue is dropped. Returns the removed count.
func (s *Store) Clear(keepRunning bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !keepRunning {
		removed := len(s.jobs)
		s.jobs = nil
		return removed
	}
	kept := s.jobs[:0]
	removed := 0
	for _, job := range s.jobs {
		if job.Status == StatusRunning {
			kept = append(kept, job)
		} else {
			removed++
		}
	}
	s.jobs = kept
	return removed
}

// CancelQueued transitions a still-queued job to canceled. It reports false
// when the job does not exist or has already left the queued state.
func (s *Store) CancelQueued(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || !job.Status.CanTransition(StatusCanceled) || job.Status != StatusQueued {
		return false
	}
	job.Status = StatusCanceled
	return true
}

// AdmitQueued atomically admits up to limit queued jobs in FIFO order: each
// is marked running with progress state reset, the active count is
// incremented per admission, and the live records are returned. The caller
// (the scheduler) owns the returned jobs and must pair every admission with
// exactly one DecrementActive.
func (s *Store) AdmitQueued(limit int) []*Job {
	if limit <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var admitted []*Job
	for _, job := range s.jobs {
		if len(admitted) >= limit {
			break
		}
		if job.Status != StatusQueued {
			continue
		}
		job.Status = StatusRunning
		job.DownloadFraction = 0
		job.SeparationFraction = 0
		job.DownloadETASec = nil
		job.SeparationETASec = nil
		job.Downloaded = false
		job.Separating = false
		job.ErrorMessage = ""
		s.active++
		admitted = append(admitted, job)
	}
	return admitted
}

// CancelAllQueued flips every queued job to canceled and reports how many
// were affected. The scheduler calls this when draining after a stop.
func (s *Store) CancelAllQueued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, job := range s.jobs {
		if job.Status == StatusQueued {
			job.Status = StatusCanceled
			count++
		}
	}
	return count
}

// HasPendingWork reports whether any job is queued or running.
func (s *Store) HasPendingWork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Status == StatusQueued || job.Status == StatusRunning {
			return true
		}
	}
	return false
}

// SetJobMetadata records lazily-resolved display metadata for a job. Empty
// values leave the existing fields untouched.
func (s *Store) SetJobMetadata(id, title, channel string, durationSec int, hasArtistTag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil {
		return
	}
	if title != "" {
		job.Title = title
	}
	if channel != "" {
		job.Channel = channel
	}
	if durationSec > 0 {
		job.DurationSec = durationSec
	}
	if hasArtistTag {
		job.HasArtistTag = true
	}
}

// UpdateDownloadProgress applies an acquisition progress reading. The write
// is gated: only running jobs accept progress and the stored fraction never
// decreases.
func (s *Store) UpdateDownloadProgress(id string, fraction float64, etaSec *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || job.Status != StatusRunning {
		return
	}
	if fraction > job.DownloadFraction {
		job.DownloadFraction = fraction
	}
	if etaSec != nil && *etaSec >= 0 {
		v := *etaSec
		job.DownloadETASec = &v
	}
}

// FinishDownload marks the acquisition phase complete and arms the
// separation phase.
func (s *Store) FinishDownload(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || job.Status != StatusRunning {
		return
	}
	job.DownloadFraction = 1
	job.Downloaded = true
	job.Separating = true
	job.SeparationFraction = 0
	zero := 0
	job.DownloadETASec = &zero
}

// UpdateSeparationProgress applies a separation progress reading with the
// same monotonic gate as UpdateDownloadProgress.
func (s *Store) UpdateSeparationProgress(id string, fraction float64, etaSec *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || job.Status != StatusRunning {
		return
	}
	if fraction > job.SeparationFraction {
		job.SeparationFraction = fraction
		job.Downloaded = true
		job.Separating = true
	}
	if etaSec != nil && *etaSec >= 0 {
		v := *etaSec
		job.SeparationETASec = &v
	}
}

// CompleteJob finalizes a running job as done with its resolved destination.
func (s *Store) CompleteJob(id, destPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || !job.Status.CanTransition(StatusDone) {
		return
	}
	job.Status = StatusDone
	job.Separating = false
	job.SeparationFraction = 1
	job.DownloadFraction = 1
	job.SeparationETASec = nil
	job.DestPath = destPath
	job.ErrorMessage = ""
}

// FailJob finalizes a running job as errored with a bounded message.
func (s *Store) FailJob(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || !job.Status.CanTransition(StatusError) {
		return
	}
	job.Status = StatusError
	job.Separating = false
	job.ErrorMessage = message
	job.DestPath = ""
}

// CancelJob finalizes a job as canceled (queued or running).
func (s *Store) CancelJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil || !job.Status.CanTransition(StatusCanceled) {
		return
	}
	job.Status = StatusCanceled
	job.Separating = false
}

// GlobalProgress aggregates queue-wide progress: the average job fraction
// (done counts as 1.0), per-status counts, and concurrency usage.
type GlobalProgress struct {
	Progress float64        `json:"progress"`
	Counts   map[Status]int `json:"counts"`
	Active   int            `json:"active"`
	Max      int            `json:"max"`
}

// jobFraction blends the two phase fractions into a single display value.
func jobFraction(job *Job) float64 {
	if job.Status == StatusDone {
		return 1
	}
	if job.Kind == SourceLocal || job.Downloaded {
		return job.SeparationFraction
	}
	return job.DownloadFraction
}

// Progress computes the aggregate view used by the progress endpoint.
func (s *Store) Progress() GlobalProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := GlobalProgress{
		Counts: make(map[Status]int, len(allStatuses)),
		Active: s.active,
		Max:    s.maxConcurrency,
	}
	for _, status := range allStatuses {
		out.Counts[status] = 0
	}

	total := 0.0
	n := 0
	for _, job := range s.jobs {
		out.Counts[job.Status]++
		switch job.Status {
		case StatusQueued, StatusRunning, StatusDone:
			total += jobFraction(job)
			n++
		}
	}
	if n > 0 {
		out.Progress = total / float64(n)
	}
	return out
}

func (s *Store) findLocked(id string) *Job {
	for _, job := range s.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}
