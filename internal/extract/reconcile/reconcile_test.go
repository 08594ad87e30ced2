package reconcile

import (
	"testing"

	"github.com/marisbel/chronicle/internal/narrative/event"
)

func TestDiff(t *testing.T) {
	projected := []string{"menu", "coffee cup", "sugar packets"}
	canonical := []string{"Menu", "coffee cup", "newspaper"}

	removed, added := Diff(projected, canonical)
	if len(removed) != 1 || removed[0] != "sugar packets" {
		t.Fatalf("removed = %v, want [sugar packets]", removed)
	}
	if len(added) != 1 || added[0] != "newspaper" {
		t.Fatalf("added = %v, want [newspaper]", added)
	}
}

func TestDiffCaseOnlyIsZeroDelta(t *testing.T) {
	removed, added := Diff([]string{"Wet", "Tired"}, []string{"wet", "TIRED"})
	if len(removed) != 0 || len(added) != 0 {
		t.Fatalf("removed = %v, added = %v, want no delta for case-only changes", removed, added)
	}
}

func TestMissing(t *testing.T) {
	missing := Missing([]string{"menu", "coffee cup", "sugar packets", "newspaper"},
		[]string{"menu", "Coffee Cup", "newspaper"})
	if len(missing) != 1 || missing[0] != "sugar packets" {
		t.Fatalf("missing = %v, want [sugar packets]", missing)
	}
}

func TestDuplicateSubject(t *testing.T) {
	pair := [2]string{"Mira", "Joss"}
	turnEvents := []event.Event{
		{ID: "e1", Type: event.TypeRelationshipSubject,
			Payload: event.SubjectPayload{Pair: pair, Subject: "trust"}},
		{ID: "e2", Type: event.TypeRelationshipSubject,
			Payload: event.SubjectPayload{Pair: [2]string{"joss", "MIRA"}, Subject: "Trust"}},
	}

	// Another event this turn carries the same value for the same pair.
	if !DuplicateSubject(turnEvents, pair, "trust", "e1") {
		t.Fatal("expected duplicate: e2 carries the same subject")
	}
	// The excluded event itself does not count.
	if DuplicateSubject(turnEvents[:1], pair, "trust", "e1") {
		t.Fatal("the event being corrected must not flag itself")
	}
	// A different value is not a duplicate.
	if DuplicateSubject(turnEvents, pair, "rivalry", "e1") {
		t.Fatal("different subject should not flag")
	}
	// Tombstoned events do not count.
	turnEvents[1].Deleted = true
	if DuplicateSubject(turnEvents, pair, "trust", "e1") {
		t.Fatal("tombstoned event should not flag")
	}
}
