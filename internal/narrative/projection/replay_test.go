package projection

import (
	"reflect"
	"testing"

	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

func testLog() []event.Event {
	return []event.Event{
		{ID: "e1", Type: event.TypeTimeInitial, Source: event.Source{MessageID: 0},
			Payload: event.TimeInitialPayload{DateTime: "2024-06-01T09:00:00Z"}},
		{ID: "e2", Type: event.TypeLocationMoved, Source: event.Source{MessageID: 1},
			Payload: event.LocationMovedPayload{NewArea: "Harbor", NewPlace: "Cafe"}},
		{ID: "e3", Type: event.TypePropAdded, Source: event.Source{MessageID: 2},
			Payload: event.PropPayload{Prop: "menu"}},
		{ID: "e4", Type: event.TypeMoodAdded, Source: event.Source{MessageID: 3},
			Payload: event.MoodPayload{Character: "Mira", Mood: "curious"}},
		{ID: "e5", Type: event.TypeTimeDelta, Source: event.Source{MessageID: 4},
			Payload: event.TimeDeltaPayload{Hours: 1}},
	}
}

func TestReplayDeterministic(t *testing.T) {
	log := testLog()
	first := Replay(snapshot.New(), log, ReplayOptions{UntilMessage: -1})
	second := Replay(snapshot.New(), log, ReplayOptions{UntilMessage: -1})
	if !reflect.DeepEqual(first, second) {
		t.Fatal("replaying the same log twice diverged")
	}
}

func TestReplayPrefixThenRemainder(t *testing.T) {
	log := testLog()
	full := Replay(snapshot.New(), log, ReplayOptions{UntilMessage: -1})

	prefix := Replay(snapshot.New(), log[:3], ReplayOptions{UntilMessage: -1})
	resumed := Replay(prefix, log[3:], ReplayOptions{UntilMessage: -1})
	if !reflect.DeepEqual(full, resumed) {
		t.Fatal("prefix-then-remainder replay diverged from full replay")
	}
}

func TestReplaySkipsDeleted(t *testing.T) {
	log := testLog()
	log[2].Deleted = true
	result := Replay(snapshot.New(), log, ReplayOptions{UntilMessage: -1})
	if result.Location.Props.Contains("menu") {
		t.Fatal("tombstoned event should not fold")
	}
}

func TestReplayUntilMessage(t *testing.T) {
	result := Replay(snapshot.New(), testLog(), ReplayOptions{UntilMessage: 1})
	if result.Location.Place != "Cafe" {
		t.Fatalf("place = %q, want Cafe", result.Location.Place)
	}
	if result.Location.Props.Contains("menu") {
		t.Fatal("events past the bound should not fold")
	}
	if _, ok := result.LookupCharacter("Mira"); ok {
		t.Fatal("events past the bound should not fold")
	}
}

func TestReplayDoesNotMutateBase(t *testing.T) {
	base := snapshot.New()
	Replay(base, testLog(), ReplayOptions{UntilMessage: -1})
	if base.Time.Known || len(base.Characters) != 0 {
		t.Fatal("replay mutated the base snapshot")
	}
}
