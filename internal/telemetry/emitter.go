// Package telemetry records extraction diagnostics.
//
// Diagnostics are not narrative events: they capture how each
// extractor run resolved (disabled, skipped, produced, failed…) so
// operators can tell "category disabled" apart from "extractor ran and
// produced nothing".
package telemetry

import (
	"log"
	"time"
)

// Outcome classifies how one extractor run resolved.
type Outcome string

const (
	// OutcomeDisabled means the extractor's category is toggled off.
	OutcomeDisabled Outcome = "disabled"
	// OutcomeSkipped means the run trigger declined this turn.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeProduced means the extractor appended events.
	OutcomeProduced Outcome = "produced"
	// OutcomeEmpty means the extractor ran and produced nothing.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed means the oracle call failed; recovered locally.
	OutcomeFailed Outcome = "failed"
	// OutcomeCancelled means the oracle call was aborted.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeMalformed means the oracle reply did not parse.
	OutcomeMalformed Outcome = "malformed"
)

// Record is one extraction diagnostic.
type Record struct {
	Extractor string
	Category  string
	MessageID int
	Outcome   Outcome
	Events    int
	Detail    string
	Timestamp time.Time
}

// Sink receives diagnostics.
type Sink interface {
	Append(record Record)
}

// Emitter writes diagnostics to a sink with timestamps attached.
// A nil emitter or nil sink drops records silently.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter creates an emitter writing to sink.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now}
}

// Emit timestamps and appends a record.
func (e *Emitter) Emit(record Record) {
	if e == nil || e.sink == nil {
		return
	}
	if record.Timestamp.IsZero() {
		clock := e.clock
		if clock == nil {
			clock = time.Now
		}
		record.Timestamp = clock().UTC()
	}
	e.sink.Append(record)
}

// LogSink writes diagnostics to the process log.
type LogSink struct{}

// Append implements Sink.
func (LogSink) Append(record Record) {
	if record.Detail != "" {
		log.Printf("extract %s message=%d outcome=%s events=%d: %s",
			record.Extractor, record.MessageID, record.Outcome, record.Events, record.Detail)
		return
	}
	log.Printf("extract %s message=%d outcome=%s events=%d",
		record.Extractor, record.MessageID, record.Outcome, record.Events)
}
