package queue

import "time"

// Operation phases used by long-running maintenance operations that are not
// tied to a single job, such as remote listing probes.
const (
	PhaseListing = "listing"
	PhaseDone    = "done"
	PhaseError   = "error"
)

// OperationProgress describes an in-flight auxiliary operation keyed by a
// caller-supplied request id.
type OperationProgress struct {
	Phase     string    `json:"phase"`
	Current   int       `json:"current"`
	Total     int       `json:"total"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetOperationProgress starts or replaces the entry for requestID.
func (s *Store) SetOperationProgress(requestID, phase string, current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations[requestID] = OperationProgress{
		Phase:     phase,
		Current:   current,
		Total:     total,
		UpdatedAt: now(),
	}
}

// UpdateOperationProgress advances the counters for an existing entry. A
// missing entry is created so late updates are never dropped.
func (s *Store) UpdateOperationProgress(requestID string, current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.operations[requestID]
	if !ok {
		entry = OperationProgress{Phase: PhaseListing}
	}
	entry.Current = current
	if total > 0 {
		entry.Total = total
	}
	entry.UpdatedAt = now()
	s.operations[requestID] = entry
}

// FinishOperationProgress moves the entry to its terminal phase. The message
// carries an error description when phase is PhaseError.
func (s *Store) FinishOperationProgress(requestID, phase, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.operations[requestID]
	if !ok {
		entry = OperationProgress{}
	}
	entry.Phase = phase
	entry.Message = message
	entry.UpdatedAt = now()
	s.operations[requestID] = entry
}

// OperationProgressFor returns the entry for requestID, if present.
func (s *Store) OperationProgressFor(requestID string) (OperationProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.operations[requestID]
	return entry, ok
}

// EvictStaleOperations removes entries whose last update is older than
// maxAge, or older than doneMaxAge once they reached a terminal phase.
// Returns the number of entries removed.
func (s *Store) EvictStaleOperations(maxAge, doneMaxAge time.Duration) int {
	cutoff := now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.operations {
		age := cutoff.Sub(entry.UpdatedAt)
		terminal := entry.Phase == PhaseDone || entry.Phase == PhaseError
		if age > maxAge || (terminal && age > doneMaxAge) {
			delete(s.operations, id)
			removed++
		}
	}
	return removed
}
