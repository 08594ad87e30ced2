package projection

import (
	"testing"
	"time"

	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

func TestApplyLocationMoveResetsProps(t *testing.T) {
	s := snapshot.New()
	Apply(&s, event.Event{Type: event.TypePropAdded, Payload: event.PropPayload{Prop: "menu"}})
	Apply(&s, event.Event{Type: event.TypePropAdded, Payload: event.PropPayload{Prop: "coffee cup"}})
	if len(s.Location.Props) != 2 {
		t.Fatalf("props = %v, want 2 entries", s.Location.Props)
	}

	Apply(&s, event.Event{Type: event.TypeLocationMoved, Payload: event.LocationMovedPayload{
		NewArea: "Downtown", NewPlace: "Bookshop",
	}})
	if len(s.Location.Props) != 0 {
		t.Fatalf("props = %v, want empty after move", s.Location.Props)
	}
	if s.Location.Place != "Bookshop" {
		t.Fatalf("place = %q, want Bookshop", s.Location.Place)
	}
}

func TestApplyRemovalIsNoOpOnAbsence(t *testing.T) {
	s := snapshot.New()
	Apply(&s, event.Event{Type: event.TypeMoodRemoved, Payload: event.MoodPayload{
		Character: "Nobody", Mood: "calm",
	}})
	if len(s.Characters) != 0 {
		t.Fatal("removal must not create the character")
	}
	Apply(&s, event.Event{Type: event.TypeFeelingRemoved, Payload: event.AttitudePayload{
		Pair: [2]string{"Mira", "Joss"}, Direction: event.DirectionAToB, Value: "trust",
	}})
	if len(s.Relationships) != 0 {
		t.Fatal("removal must not create the relationship")
	}
}

func TestApplyTimeDeltaRequiresAnchor(t *testing.T) {
	s := snapshot.New()
	Apply(&s, event.Event{Type: event.TypeTimeDelta, Payload: event.TimeDeltaPayload{Hours: 3}})
	if s.Time.Known {
		t.Fatal("delta without an anchor should leave time unknown")
	}

	Apply(&s, event.Event{Type: event.TypeTimeInitial, Payload: event.TimeInitialPayload{
		DateTime: "2024-06-01T12:00:00Z",
	}})
	Apply(&s, event.Event{Type: event.TypeTimeDelta, Payload: event.TimeDeltaPayload{Days: 1, Hours: 2}})

	want := time.Date(2024, 6, 2, 14, 0, 0, 0, time.UTC)
	if !s.Time.Current.Equal(want) {
		t.Fatalf("time = %v, want %v", s.Time.Current, want)
	}
}

func TestApplyChapterEnded(t *testing.T) {
	s := snapshot.New()
	Apply(&s, event.Event{Type: event.TypeChapterEnded, Payload: event.ChapterEndedPayload{Chapter: 1}})
	if s.CurrentChapter != 2 {
		t.Fatalf("current chapter = %d, want 2", s.CurrentChapter)
	}
	// A stale close for an earlier chapter does not regress the counter.
	Apply(&s, event.Event{Type: event.TypeChapterEnded, Payload: event.ChapterEndedPayload{Chapter: 1}})
	if s.CurrentChapter != 2 {
		t.Fatalf("current chapter = %d, want 2 after stale close", s.CurrentChapter)
	}
}

func TestApplyAttitudeDirection(t *testing.T) {
	s := snapshot.New()
	Apply(&s, event.Event{Type: event.TypeFeelingAdded, Payload: event.AttitudePayload{
		Pair: [2]string{"Mira", "Joss"}, Direction: event.DirectionAToB, Value: "trust",
	}})
	// Same feeling reported with the pair reversed lands on the same side.
	Apply(&s, event.Event{Type: event.TypeFeelingAdded, Payload: event.AttitudePayload{
		Pair: [2]string{"Joss", "Mira"}, Direction: event.DirectionBToA, Value: "TRUST",
	}})

	rel, ok := s.LookupRelationship([2]string{"Mira", "Joss"})
	if !ok {
		t.Fatal("relationship not created")
	}
	side := rel.Attitude([2]string{"Mira", "Joss"}, event.DirectionAToB)
	if len(side.Feelings) != 1 {
		t.Fatalf("feelings = %v, want single case-insensitive entry", side.Feelings)
	}
	other := rel.Attitude([2]string{"Mira", "Joss"}, event.DirectionBToA)
	if len(other.Feelings) != 0 {
		t.Fatalf("opposite side = %v, want empty", other.Feelings)
	}
}
