package queue

import "testing"

func TestParseStatus(t *testing.T) {
	for _, status := range AllStatuses() {
		parsed, ok := ParseStatus(string(status))
		if !ok {
			t.Fatalf("ParseStatus(%q) not recognized", status)
		}
		if parsed != status {
			t.Fatalf("ParseStatus(%q) = %q", status, parsed)
		}
	}
	if _, ok := ParseStatus("bogus"); ok {
		t.Fatal("unknown status should not parse")
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusQueued, StatusRunning, true},
		{StatusQueued, StatusCanceled, true},
		{StatusQueued, StatusDone, false},
		{StatusRunning, StatusDone, true},
		{StatusRunning, StatusError, true},
		{StatusRunning, StatusCanceled, true},
		{StatusRunning, StatusQueued, false},
		{StatusDone, StatusRunning, false},
		{StatusError, StatusCanceled, false},
		{StatusCanceled, StatusRunning, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[Status]bool{
		StatusDone:     true,
		StatusError:    true,
		StatusCanceled: true,
	}
	for _, status := range AllStatuses() {
		if status.IsTerminal() != terminal[status] {
			t.Errorf("IsTerminal(%s) = %v", status, status.IsTerminal())
		}
	}
}

func TestSnapshotCopiesETAPointers(t *testing.T) {
	eta := 42
	job := &Job{ID: "x", Status: StatusRunning, DownloadETASec: &eta}
	snap := job.snapshot()
	if snap.DownloadETASec == nil || *snap.DownloadETASec != 42 {
		t.Fatalf("snapshot ETA = %v", snap.DownloadETASec)
	}
	*snap.DownloadETASec = 7
	if *job.DownloadETASec != 42 {
		t.Fatal("snapshot aliased the live ETA pointer")
	}
}

func TestSnapshotCarriesArtistTag(t *testing.T) {
	job := &Job{ID: "x", Status: StatusRunning, Channel: "Queen", HasArtistTag: true}
	snap := job.snapshot()
	if !snap.HasArtistTag {
		t.Fatal("snapshot dropped the artist tag flag")
	}
	if snap.Channel != "Queen" {
		t.Fatalf("snapshot channel = %q", snap.Channel)
	}
}
