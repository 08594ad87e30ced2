package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/marisbel/chronicle/internal/chatctx"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/lore"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/store"
	"github.com/marisbel/chronicle/internal/platform/id"
)

// Phase orders extractor commits within a turn.
type Phase int

const (
	// PhasePrimitive extractors observe only the transcript and prior
	// state; they run and commit first.
	PhasePrimitive Phase = 1
	// PhaseDerived extractors consume this turn's primitive events
	// (confirmations, chapter boundaries); they run after the phase
	// barrier.
	PhaseDerived Phase = 2
)

// RunContext is the read surface a trigger predicate and producer see.
type RunContext struct {
	Store    *store.Store
	Chat     *chatctx.Context
	Settings Settings
	Lore     lore.Book
	// Current is the turn being processed.
	Current event.Source
	// TurnEvents accumulates events earlier extractors produced this
	// same turn.
	TurnEvents []event.Event
	// RanAt records, per extractor name, the messages it fired on.
	RanAt map[string][]int
	// ProducedAt records, per extractor name, the messages it produced
	// events on.
	ProducedAt map[string][]int
}

// Output is what a producer resolved to: zero or more new events,
// plus ids of prior events to tombstone (corrections that would
// otherwise duplicate a value within the same turn).
type Output struct {
	Events     []event.Event
	RetractIDs []string
}

// Producer constructs a prompt, invokes the oracle, and maps the reply
// onto an output. Failures are recovered by the caller; only
// cancellation carries meaning beyond "no events".
type Producer func(ctx context.Context, gen generate.Provider, rc RunContext) (Output, error)

// Extractor is a named, stateless extraction task descriptor.
type Extractor struct {
	// Name is unique within a deployment.
	Name string
	// Category gates the extractor via settings toggles.
	Category Category
	// DefaultTemperature is the sampling temperature when settings
	// carry no override for the category.
	DefaultTemperature float32
	// Phase places the extractor relative to the turn's phase barrier.
	Phase Phase
	// Messages selects the transcript slice the prompt may see.
	Messages window.Strategy
	// Trigger decides whether the extractor fires this turn.
	Trigger RunStrategy
	// Produce is the asynchronous producer.
	Produce Producer
}

// ShouldRun reports whether the extractor fires this turn. A disabled
// category always declines.
func (x Extractor) ShouldRun(rc RunContext) bool {
	if !rc.Settings.Enabled(x.Category) {
		return false
	}
	if x.Trigger == nil {
		return false
	}
	return x.Trigger.ShouldRun(rc)
}

// Window computes the clamped transcript range for this extractor.
func (x Extractor) Window(rc RunContext) window.Range {
	r := window.Select(x.Messages, rc.Current.MessageID, rc.Store)
	return window.LimitRange(r, rc.Settings.CapFor(x.Name))
}

// Temperature resolves the sampling temperature for this extractor.
func (x Extractor) Temperature(rc RunContext) float32 {
	return rc.Settings.TemperatureFor(x.Category, x.DefaultTemperature)
}

// NewEvent mints an event for the current turn with a fresh id and
// creation timestamp.
func NewEvent(source event.Source, t event.Type, payload event.Payload) (event.Event, error) {
	eventID, err := id.NewID()
	if err != nil {
		return event.Event{}, fmt.Errorf("generate event id: %w", err)
	}
	return event.Event{
		ID:        eventID,
		Type:      t,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}, nil
}
