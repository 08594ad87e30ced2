package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/marisbel/chronicle/internal/errors"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "chronicle.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEventsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	events := []event.Event{
		{
			ID:        "e1",
			Seq:       1,
			Type:      event.TypeLocationMoved,
			Source:    event.Source{MessageID: 0, SwipeID: 0},
			Timestamp: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			Payload:   event.LocationMovedPayload{NewArea: "Harbor", NewPlace: "Cafe"},
		},
		{
			ID:        "e2",
			Seq:       2,
			Type:      event.TypePropAdded,
			Source:    event.Source{MessageID: 1, SwipeID: 2},
			Timestamp: time.Date(2024, 6, 1, 9, 5, 0, 0, time.UTC),
			Deleted:   true,
			Payload:   event.PropPayload{Prop: "menu"},
		},
	}
	if err := s.AppendEvents(ctx, "chat-1", events); err != nil {
		t.Fatalf("AppendEvents returned error: %v", err)
	}

	loaded, err := s.Events(ctx, "chat-1")
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d events, want 2", len(loaded))
	}
	if loaded[0].ID != "e1" || loaded[1].ID != "e2" {
		t.Fatalf("order = %s, %s, want e1, e2", loaded[0].ID, loaded[1].ID)
	}
	moved, ok := loaded[0].Payload.(event.LocationMovedPayload)
	if !ok || moved.NewPlace != "Cafe" {
		t.Fatalf("payload = %+v, want location move to Cafe", loaded[0].Payload)
	}
	if !loaded[1].Deleted {
		t.Fatal("tombstone flag did not round-trip")
	}
	if loaded[1].Source.SwipeID != 2 {
		t.Fatalf("swipe id = %d, want 2", loaded[1].Source.SwipeID)
	}
	if !loaded[0].Timestamp.Equal(events[0].Timestamp) {
		t.Fatalf("timestamp = %v, want %v", loaded[0].Timestamp, events[0].Timestamp)
	}
}

func TestEventsIsolatedByChat(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	evt := event.Event{
		ID: "e1", Seq: 1, Type: event.TypePropAdded,
		Timestamp: time.Now(), Payload: event.PropPayload{Prop: "menu"},
	}
	if err := s.AppendEvents(ctx, "chat-1", []event.Event{evt}); err != nil {
		t.Fatalf("AppendEvents returned error: %v", err)
	}
	other, err := s.Events(ctx, "chat-2")
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("chat-2 has %d events, want 0", len(other))
	}
}

func TestSetDeleted(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	evt := event.Event{
		ID: "e1", Seq: 1, Type: event.TypePropAdded,
		Timestamp: time.Now(), Payload: event.PropPayload{Prop: "menu"},
	}
	if err := s.AppendEvents(ctx, "chat-1", []event.Event{evt}); err != nil {
		t.Fatalf("AppendEvents returned error: %v", err)
	}
	if err := s.SetDeleted(ctx, "chat-1", "e1", true); err != nil {
		t.Fatalf("SetDeleted returned error: %v", err)
	}
	loaded, err := s.Events(ctx, "chat-1")
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if !loaded[0].Deleted {
		t.Fatal("event should be tombstoned")
	}

	err = s.SetDeleted(ctx, "chat-1", "missing", true)
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestInitialSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.InitialSnapshot(ctx, "chat-1"); err != nil || ok {
		t.Fatalf("expected no snapshot, got ok=%v err=%v", ok, err)
	}

	base := snapshot.New()
	base.Location.Area = "Harbor"
	base.Location.Props = base.Location.Props.Add("menu")
	base.Character("Mira").Activity = "reading"
	if err := s.SaveInitialSnapshot(ctx, "chat-1", base); err != nil {
		t.Fatalf("SaveInitialSnapshot returned error: %v", err)
	}

	loaded, ok, err := s.InitialSnapshot(ctx, "chat-1")
	if err != nil || !ok {
		t.Fatalf("InitialSnapshot ok=%v err=%v", ok, err)
	}
	if loaded.Location.Area != "Harbor" || !loaded.Location.Props.Contains("menu") {
		t.Fatalf("location = %+v", loaded.Location)
	}
	ch, found := loaded.LookupCharacter("Mira")
	if !found || ch.Activity != "reading" {
		t.Fatalf("character = %+v, found=%v", ch, found)
	}

	// Saving again replaces the stored base.
	base.Location.Area = "Uptown"
	if err := s.SaveInitialSnapshot(ctx, "chat-1", base); err != nil {
		t.Fatalf("SaveInitialSnapshot returned error: %v", err)
	}
	loaded, _, err = s.InitialSnapshot(ctx, "chat-1")
	if err != nil {
		t.Fatalf("InitialSnapshot returned error: %v", err)
	}
	if loaded.Location.Area != "Uptown" {
		t.Fatalf("area = %q, want Uptown", loaded.Location.Area)
	}
}
