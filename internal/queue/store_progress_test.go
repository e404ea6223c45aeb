package queue

import (
	"testing"
	"time"
)

func TestOperationProgressLifecycle(t *testing.T) {
	store := newTestStore(t)
	store.SetOperationProgress("req-1", PhaseListing, 0, 10)
	store.UpdateOperationProgress("req-1", 4, 0)

	entry, ok := store.OperationProgressFor("req-1")
	if !ok {
		t.Fatal("entry missing")
	}
	if entry.Phase != PhaseListing || entry.Current != 4 || entry.Total != 10 {
		t.Fatalf("entry = %+v", entry)
	}

	store.FinishOperationProgress("req-1", PhaseError, "probe failed")
	entry, _ = store.OperationProgressFor("req-1")
	if entry.Phase != PhaseError || entry.Message != "probe failed" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestUpdateCreatesMissingEntry(t *testing.T) {
	store := newTestStore(t)
	store.UpdateOperationProgress("late", 2, 5)
	entry, ok := store.OperationProgressFor("late")
	if !ok || entry.Phase != PhaseListing {
		t.Fatalf("entry = %+v, ok = %v", entry, ok)
	}
}

func TestEvictStaleOperations(t *testing.T) {
	store := newTestStore(t)
	store.SetOperationProgress("live", PhaseListing, 1, 2)
	store.FinishOperationProgress("finished", PhaseDone, "")

	// A zero terminal grace evicts finished entries immediately while the
	// live entry survives under the long ceiling.
	time.Sleep(time.Millisecond)
	if removed := store.EvictStaleOperations(time.Hour, 0); removed != 1 {
		t.Fatalf("removed %d entries, want 1", removed)
	}
	if _, ok := store.OperationProgressFor("live"); !ok {
		t.Fatal("live entry evicted")
	}
	if _, ok := store.OperationProgressFor("finished"); ok {
		t.Fatal("finished entry survived")
	}

	if removed := store.EvictStaleOperations(0, 0); removed != 1 {
		t.Fatalf("final sweep removed %d", removed)
	}
}
