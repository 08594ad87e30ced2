package projection

import (
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

// ReplayOptions configures event replay behavior.
type ReplayOptions struct {
	// UntilMessage bounds replay to events whose source message id is
	// at most this value. Negative means unbounded.
	UntilMessage int
	// Filter, when set, restricts which events are folded. Deleted
	// events are always skipped regardless of the filter.
	Filter func(event.Event) bool
}

// Replay folds the log over a copy of the base snapshot in log order
// and returns the result. The base is never mutated, so replaying the
// same inputs twice yields identical snapshots.
func Replay(base snapshot.Snapshot, log []event.Event, options ReplayOptions) snapshot.Snapshot {
	result := base.Clone()
	for _, evt := range log {
		if evt.Deleted {
			continue
		}
		if options.UntilMessage >= 0 && evt.Source.MessageID > options.UntilMessage {
			continue
		}
		if options.Filter != nil && !options.Filter(evt) {
			continue
		}
		Apply(&result, evt)
	}
	return result
}
