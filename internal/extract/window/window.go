// Package window selects the bounded transcript slice an extraction
// prompt may see.
package window

import (
	"github.com/marisbel/chronicle/internal/narrative/event"
)

// Range is an inclusive span of transcript message ids.
type Range struct {
	Start int
	End   int
}

// Strategy decides which transcript slice is relevant to an
// extraction. The set of implementations is closed so dispatch stays
// exhaustive.
type Strategy interface {
	isStrategy()
}

// FixedNumber selects the last N turns up to the current one.
type FixedNumber struct {
	N int
}

// SinceLastEventOfKind selects every turn since the most recent active
// event matching any of the matchers, or the whole transcript when
// none exists.
type SinceLastEventOfKind struct {
	Matchers []event.Matcher
}

func (FixedNumber) isStrategy()          {}
func (SinceLastEventOfKind) isStrategy() {}

// EventIndex answers "where was the last event of kind" lookups.
type EventIndex interface {
	LastEventOfKind(matchers []event.Matcher) (event.Event, bool)
}

// Select computes the transcript slice for the strategy, ending at the
// current message.
func Select(strategy Strategy, current int, index EventIndex) Range {
	r := Range{Start: 0, End: current}
	switch s := strategy.(type) {
	case FixedNumber:
		if s.N > 0 {
			r.Start = current - s.N + 1
		}
	case SinceLastEventOfKind:
		if index != nil {
			if evt, ok := index.LastEventOfKind(s.Matchers); ok {
				r.Start = evt.Source.MessageID
			}
		}
	}
	if r.Start < 0 {
		r.Start = 0
	}
	return r
}

// LimitRange clamps the range to at most max turns, moving the start
// forward and never dropping the end. A max of zero or less means
// unlimited.
func LimitRange(r Range, max int) Range {
	if max <= 0 {
		return r
	}
	if r.End-r.Start+1 > max {
		r.Start = r.End - max + 1
	}
	return r
}
