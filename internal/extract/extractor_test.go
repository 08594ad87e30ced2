package extract

import (
	"testing"

	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/store"
)

func TestShouldRunGatesOnCategory(t *testing.T) {
	x := Extractor{
		Name:     "tension",
		Category: CategoryScene,
		Trigger:  EveryMessage{},
	}
	rc := RunContext{Settings: Settings{Track: map[Category]bool{CategoryScene: false}}}
	if x.ShouldRun(rc) {
		t.Fatal("disabled category must short-circuit the trigger")
	}
	rc.Settings = Settings{}
	if !x.ShouldRun(rc) {
		t.Fatal("tracked category with everyMessage should run")
	}
}

func TestWindowAppliesGlobalCap(t *testing.T) {
	x := Extractor{
		Name:     "narrative",
		Messages: window.FixedNumber{N: 30},
	}
	rc := RunContext{
		Store:    store.New(),
		Settings: Settings{MaxMessagesToSend: 10},
		Current:  event.Source{MessageID: 49},
	}
	r := x.Window(rc)
	if r.Start != 40 || r.End != 49 {
		t.Fatalf("window = %+v, want {40 49}", r)
	}
}

func TestTemperaturePrefersSettings(t *testing.T) {
	x := Extractor{Category: CategoryScene, DefaultTemperature: 0.5}
	rc := RunContext{Settings: Settings{Temperatures: map[Category]float32{CategoryScene: 0.8}}}
	if got := x.Temperature(rc); got != 0.8 {
		t.Fatalf("temperature = %v, want settings override", got)
	}
	if got := x.Temperature(RunContext{}); got != 0.5 {
		t.Fatalf("temperature = %v, want default", got)
	}
}

func TestNewEventFillsIdentity(t *testing.T) {
	source := event.Source{MessageID: 7, SwipeID: 1}
	evt, err := NewEvent(source, event.TypePropAdded, event.PropPayload{Prop: "menu"})
	if err != nil {
		t.Fatalf("NewEvent returned error: %v", err)
	}
	if evt.ID == "" {
		t.Fatal("event id not assigned")
	}
	if evt.Source != source {
		t.Fatalf("source = %+v, want %+v", evt.Source, source)
	}
	if evt.Timestamp.IsZero() {
		t.Fatal("timestamp not assigned")
	}
	if evt.Deleted {
		t.Fatal("new events must not be tombstoned")
	}
}
