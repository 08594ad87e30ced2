// Package orchestrator schedules the registered extractors for each
// incoming transcript turn.
//
// Primitive extractors dispatch concurrently and never observe each
// other's same-turn output; their appends are serialized in
// registration order regardless of completion order. Derived
// extractors run one at a time in registration order, each trigger
// observing every earlier commit for the turn — including same-phase
// ones, so a derived producer can feed a later derived consumer.
package orchestrator

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marisbel/chronicle/internal/chatctx"
	apperrors "github.com/marisbel/chronicle/internal/errors"
	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/lore"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/store"
	"github.com/marisbel/chronicle/internal/telemetry"
)

// Orchestrator runs extraction turns against a shared event store.
// The generator and limiter are constructor-injected; their lifetime
// is scoped to the orchestrator.
type Orchestrator struct {
	gen        generate.Provider
	store      *store.Store
	chat       *chatctx.Context
	settings   extract.Settings
	loreBook   lore.Book
	extractors []extract.Extractor
	diag       *telemetry.Emitter
	tracer     trace.Tracer

	ranAt      map[string][]int
	producedAt map[string][]int
}

// Option configures an orchestrator.
type Option func(*Orchestrator)

// WithLore supplies a world-info book for prompt context.
func WithLore(book lore.Book) Option {
	return func(o *Orchestrator) {
		o.loreBook = book
	}
}

// WithDiagnostics supplies a telemetry emitter for per-run outcomes.
func WithDiagnostics(diag *telemetry.Emitter) Option {
	return func(o *Orchestrator) {
		o.diag = diag
	}
}

// New creates an orchestrator over the given registration-ordered
// extractors.
func New(gen generate.Provider, eventStore *store.Store, chat *chatctx.Context, settings extract.Settings, extractors []extract.Extractor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:        gen,
		store:      eventStore,
		chat:       chat,
		settings:   settings,
		extractors: extractors,
		tracer:     otel.Tracer("chronicle/orchestrator"),
		ranAt:      map[string][]int{},
		producedAt: map[string][]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// TurnResult summarizes one processed turn.
type TurnResult struct {
	// Events are the committed events, in commit order.
	Events []event.Event
	// Retracted lists ids tombstoned by corrections this turn.
	Retracted []string
	// Outcomes records how each registered extractor resolved.
	Outcomes map[string]telemetry.Outcome
}

type runResult struct {
	output extract.Output
	err    error
}

// ProcessTurn runs the registered extractors for one incoming turn and
// commits accepted events to the store. Extractor failures never
// propagate; a cancelled extractor contributes zero events and the
// turn continues.
func (o *Orchestrator) ProcessTurn(ctx context.Context, current event.Source) (TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return TurnResult{}, err
	}

	ctx, span := o.tracer.Start(ctx, "turn",
		trace.WithAttributes(attribute.Int("message_id", current.MessageID)))
	defer span.End()

	result := TurnResult{Outcomes: map[string]telemetry.Outcome{}}
	turnEvents := o.runPrimitive(ctx, current, &result)
	o.runDerived(ctx, current, turnEvents, &result)

	span.SetAttributes(attribute.Int("events", len(result.Events)))
	return result, nil
}

// runPrimitive dispatches the firing primitive extractors concurrently
// and commits their outputs in registration order.
func (o *Orchestrator) runPrimitive(ctx context.Context, current event.Source, result *TurnResult) []event.Event {
	var turnEvents []event.Event
	rc := o.runContext(current, turnEvents)

	// Every primitive trigger and producer sees the same pre-turn
	// state: no mutual visibility within the phase.
	firing := make([]bool, len(o.extractors))
	for i, x := range o.extractors {
		if x.Phase != extract.PhasePrimitive {
			continue
		}
		firing[i] = o.gate(x, rc, current, result)
	}

	results := make([]runResult, len(o.extractors))
	var wg sync.WaitGroup
	for i := range o.extractors {
		if !firing[i] {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := o.extractors[i]
			runCtx, runSpan := o.tracer.Start(ctx, "extract."+x.Name)
			defer runSpan.End()
			output, err := x.Produce(runCtx, o.gen, rc)
			results[i] = runResult{output: output, err: err}
		}(i)
	}
	wg.Wait()

	// Commit in registration order, not completion order.
	for i, x := range o.extractors {
		if !firing[i] {
			continue
		}
		o.ranAt[x.Name] = append(o.ranAt[x.Name], current.MessageID)
		turnEvents = o.commit(x, current, results[i], turnEvents, result)
	}
	return turnEvents
}

// runDerived evaluates derived extractors one at a time in
// registration order. Each trigger observes every commit made earlier
// in the turn, so a chapter.ended produced here still reaches the
// description task's newEventsOfKind trigger in the same turn.
func (o *Orchestrator) runDerived(ctx context.Context, current event.Source, turnEvents []event.Event, result *TurnResult) {
	for _, x := range o.extractors {
		if x.Phase != extract.PhaseDerived {
			continue
		}
		rc := o.runContext(current, turnEvents)
		if !o.gate(x, rc, current, result) {
			continue
		}
		o.ranAt[x.Name] = append(o.ranAt[x.Name], current.MessageID)
		runCtx, runSpan := o.tracer.Start(ctx, "extract."+x.Name)
		output, err := x.Produce(runCtx, o.gen, rc)
		runSpan.End()
		turnEvents = o.commit(x, current, runResult{output: output, err: err}, turnEvents, result)
	}
}

// gate applies the settings toggle and the trigger predicate,
// recording the outcome when the extractor does not fire.
func (o *Orchestrator) gate(x extract.Extractor, rc extract.RunContext, current event.Source, result *TurnResult) bool {
	if !o.settings.Enabled(x.Category) {
		result.Outcomes[x.Name] = telemetry.OutcomeDisabled
		o.emit(x, current, telemetry.OutcomeDisabled, 0, "")
		return false
	}
	if !x.ShouldRun(rc) {
		result.Outcomes[x.Name] = telemetry.OutcomeSkipped
		return false
	}
	return true
}

func (o *Orchestrator) commit(x extract.Extractor, current event.Source, run runResult, turnEvents []event.Event, result *TurnResult) []event.Event {
	outcome := telemetry.OutcomeEmpty
	detail := ""

	switch {
	case run.err != nil && generate.IsCancellation(run.err):
		outcome = telemetry.OutcomeCancelled
		detail = run.err.Error()
	case run.err != nil && apperrors.IsCode(run.err, apperrors.CodeMalformedReply):
		outcome = telemetry.OutcomeMalformed
		detail = run.err.Error()
	case run.err != nil:
		outcome = telemetry.OutcomeFailed
		detail = run.err.Error()
	}

	if run.err == nil {
		for _, retractID := range run.output.RetractIDs {
			if o.store.MarkDeleted(retractID) {
				result.Retracted = append(result.Retracted, retractID)
				turnEvents = markDeleted(turnEvents, retractID)
				outcome = telemetry.OutcomeProduced
			}
		}
		if len(run.output.Events) > 0 {
			stored := o.store.AppendEvents(run.output.Events)
			turnEvents = append(turnEvents, stored...)
			result.Events = append(result.Events, stored...)
			o.producedAt[x.Name] = append(o.producedAt[x.Name], current.MessageID)
			outcome = telemetry.OutcomeProduced
		}
	}

	result.Outcomes[x.Name] = outcome
	o.emit(x, current, outcome, len(run.output.Events), detail)
	return turnEvents
}

func (o *Orchestrator) runContext(current event.Source, turnEvents []event.Event) extract.RunContext {
	return extract.RunContext{
		Store:      o.store,
		Chat:       o.chat,
		Settings:   o.settings,
		Lore:       o.loreBook,
		Current:    current,
		TurnEvents: append([]event.Event(nil), turnEvents...),
		RanAt:      o.ranAt,
		ProducedAt: o.producedAt,
	}
}

func (o *Orchestrator) emit(x extract.Extractor, current event.Source, outcome telemetry.Outcome, events int, detail string) {
	o.diag.Emit(telemetry.Record{
		Extractor: x.Name,
		Category:  string(x.Category),
		MessageID: current.MessageID,
		Outcome:   outcome,
		Events:    events,
		Detail:    detail,
	})
}

func markDeleted(events []event.Event, id string) []event.Event {
	for i := range events {
		if events[i].ID == id {
			events[i].Deleted = true
		}
	}
	return events
}
