package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "separating") {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(1, "separating") {
		t.Fatal("same bucket should be suppressed")
	}
	if !s.ShouldLog(5, "separating") {
		t.Fatal("new bucket should log")
	}
	if s.ShouldLog(4, "separating") {
		t.Fatal("regressing percent should be suppressed")
	}
}

func TestProgressSamplerPhaseChange(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "downloading")

	if !s.ShouldLog(1, "separating") {
		t.Fatal("phase change should log even with lower percent")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(90, "separating")
	s.Reset()

	if !s.ShouldLog(0, "separating") {
		t.Fatal("reset sampler should log the next event")
	}
}

func TestNilSamplerAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(10, "any") {
		t.Fatal("nil sampler should always log")
	}
}
