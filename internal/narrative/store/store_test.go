package store

import (
	"testing"

	"github.com/marisbel/chronicle/internal/narrative/event"
)

func propEvent(id string, messageID, swipeID int, prop string) event.Event {
	return event.Event{
		ID:      id,
		Type:    event.TypePropAdded,
		Source:  event.Source{MessageID: messageID, SwipeID: swipeID},
		Payload: event.PropPayload{Prop: prop},
	}
}

func TestAppendEventsAssignsSeq(t *testing.T) {
	s := New()
	stored := s.AppendEvents([]event.Event{
		propEvent("e1", 0, 0, "menu"),
		propEvent("e2", 0, 0, "coffee cup"),
	})
	if len(stored) != 2 {
		t.Fatalf("stored = %d events, want 2", len(stored))
	}
	if stored[0].Seq != 1 || stored[1].Seq != 2 {
		t.Fatalf("seqs = %d, %d, want 1, 2", stored[0].Seq, stored[1].Seq)
	}
	more := s.AppendEvents([]event.Event{propEvent("e3", 1, 0, "newspaper")})
	if more[0].Seq != 3 {
		t.Fatalf("seq = %d, want 3", more[0].Seq)
	}
}

func TestNewStoreOpensInChapterOne(t *testing.T) {
	s := New()
	if got := s.ProjectAt(0).CurrentChapter; got != 1 {
		t.Fatalf("fresh projection chapter = %d, want 1", got)
	}
	if s.HasInitialSnapshot() {
		t.Fatal("a fresh store must not report a supplied baseline")
	}
	if got := s.InitialSnapshot().CurrentChapter; got != 1 {
		t.Fatalf("baseline chapter = %d, want 1", got)
	}
}

func TestMarkDeletedHidesFromActive(t *testing.T) {
	s := New()
	s.AppendEvents([]event.Event{propEvent("e1", 0, 0, "menu")})

	if !s.MarkDeleted("e1") {
		t.Fatal("MarkDeleted should find the event")
	}
	if s.MarkDeleted("missing") {
		t.Fatal("MarkDeleted should report an unknown id")
	}
	if len(s.ActiveEvents()) != 0 {
		t.Fatal("tombstoned event still listed as active")
	}
	if len(s.AllEvents()) != 1 {
		t.Fatal("tombstoned event missing from the full journal")
	}
	if s.ProjectAt(0).Location.Props.Contains("menu") {
		t.Fatal("tombstoned event folded into projection")
	}
}

func TestProjectAtRespectsCanonicalSwipe(t *testing.T) {
	s := New()
	s.SetSwipeResolver(func(messageID int) int {
		if messageID == 1 {
			return 2
		}
		return 0
	})
	s.AppendEvents([]event.Event{
		propEvent("e1", 0, 0, "menu"),
		propEvent("e2", 1, 0, "discarded draft"),
		propEvent("e3", 1, 2, "newspaper"),
	})

	projected := s.ProjectAt(1)
	if projected.Location.Props.Contains("discarded draft") {
		t.Fatal("non-canonical swipe event folded into projection")
	}
	if !projected.Location.Props.Contains("newspaper") {
		t.Fatal("canonical swipe event missing from projection")
	}
	if projected.Source.SwipeID != 2 {
		t.Fatalf("source swipe = %d, want 2", projected.Source.SwipeID)
	}
}

func TestProjectAtSwipeOverridesRequestedMessageOnly(t *testing.T) {
	s := New()
	s.AppendEvents([]event.Event{
		propEvent("e1", 0, 0, "menu"),
		propEvent("e2", 1, 0, "coffee cup"),
		propEvent("e3", 1, 1, "newspaper"),
	})

	projected := s.ProjectAtSwipe(1, 1)
	if !projected.Location.Props.Contains("menu") {
		t.Fatal("earlier message should keep its canonical swipe")
	}
	if projected.Location.Props.Contains("coffee cup") {
		t.Fatal("override should hide the canonical swipe at the requested message")
	}
	if !projected.Location.Props.Contains("newspaper") {
		t.Fatal("override swipe event missing from projection")
	}
}

func TestLastEventOfKind(t *testing.T) {
	s := New()
	s.AppendEvents([]event.Event{
		propEvent("e1", 0, 0, "menu"),
		{ID: "e2", Type: event.TypeTimeDelta, Source: event.Source{MessageID: 1},
			Payload: event.TimeDeltaPayload{Hours: 1}},
		propEvent("e3", 2, 0, "newspaper"),
	})

	evt, ok := s.LastEventOfKind([]event.Matcher{{Kind: "location"}})
	if !ok || evt.ID != "e3" {
		t.Fatalf("last location event = %v, want e3", evt.ID)
	}

	s.MarkDeleted("e3")
	evt, ok = s.LastEventOfKind([]event.Matcher{{Kind: "location"}})
	if !ok || evt.ID != "e1" {
		t.Fatalf("last location event = %v, want e1 after tombstone", evt.ID)
	}

	if _, ok := s.LastEventOfKind([]event.Matcher{{Kind: "chapter"}}); ok {
		t.Fatal("no chapter events were appended")
	}
}

func TestDeepCloneIsIndependent(t *testing.T) {
	s := New()
	s.AppendEvents([]event.Event{propEvent("e1", 0, 0, "menu")})

	clone := s.DeepClone()
	clone.AppendEvents([]event.Event{propEvent("e2", 1, 0, "newspaper")})
	clone.MarkDeleted("e1")

	if len(s.AllEvents()) != 1 {
		t.Fatal("clone append leaked into original")
	}
	if s.AllEvents()[0].Deleted {
		t.Fatal("clone tombstone leaked into original")
	}
}
