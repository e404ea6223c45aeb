package progress

// MultiPassTracker stitches the progress of N sequential engine passes into
// one monotonic overall fraction. Engines configured for shifted inference
// run each pass with its own 0-100% bar; a boundary is inferred when the raw
// fraction collapses from high to low. The heuristic is best-effort: a noisy
// stream can miss or double-count a boundary, so callers must treat the
// result as a smoother, not a correctness guarantee.
type MultiPassTracker struct {
	numPasses       int
	completedPasses int
	currentFraction float64
	lastRawFraction float64
	seenHigh        bool
}

// NewMultiPassTracker returns a tracker for numPasses sequential passes.
// Values below 1 are treated as a single pass.
func NewMultiPassTracker(numPasses int) *MultiPassTracker {
	if numPasses < 1 {
		numPasses = 1
	}
	return &MultiPassTracker{numPasses: numPasses}
}

// Update feeds one raw per-pass fraction and returns the overall fraction.
func (t *MultiPassTracker) Update(raw float64) float64 {
	if t.seenHigh && raw < 0.2 && t.lastRawFraction > 0.8 {
		if t.completedPasses < t.numPasses-1 {
			t.completedPasses++
		}
		t.seenHigh = false
	}
	if raw > 0.5 {
		t.seenHigh = true
	}

	t.currentFraction = raw
	t.lastRawFraction = raw
	return t.Overall()
}

// Overall returns the combined fraction across all passes, capped at 0.99.
func (t *MultiPassTracker) Overall() float64 {
	if t.numPasses <= 1 {
		return clampFraction(t.currentFraction)
	}
	overall := (float64(t.completedPasses) + t.currentFraction) / float64(t.numPasses)
	return clampFraction(overall)
}

// CompletedPasses reports how many pass boundaries have been detected.
func (t *MultiPassTracker) CompletedPasses() int {
	return t.completedPasses
}

// RemainingPasses reports how many passes have not yet finished, used to
// linearly extrapolate a whole-job ETA from the current pass's ETA.
func (t *MultiPassTracker) RemainingPasses() int {
	return t.numPasses - t.completedPasses
}
