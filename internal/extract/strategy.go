package extract

import (
	"github.com/marisbel/chronicle/internal/narrative/event"
)

// RunStrategy decides whether an extractor fires this turn. The set of
// implementations is closed; predicates are pure and synchronous.
type RunStrategy interface {
	ShouldRun(rc RunContext) bool
}

// EveryMessage fires on every turn.
type EveryMessage struct{}

// ShouldRun implements RunStrategy.
func (EveryMessage) ShouldRun(RunContext) bool {
	return true
}

// EveryNMessages fires periodically, with an optional phase offset so
// two periodic extractors don't collide on the same turns.
type EveryNMessages struct {
	N      int
	Offset int
}

// ShouldRun implements RunStrategy.
func (s EveryNMessages) ShouldRun(rc RunContext) bool {
	if s.N <= 0 {
		return false
	}
	return (rc.Current.MessageID+1+s.Offset)%s.N == s.Offset
}

// NewEventsOfKind fires when this turn has already produced a
// non-deleted event matching one of the matchers.
type NewEventsOfKind struct {
	Matchers []event.Matcher
}

// ShouldRun implements RunStrategy.
func (s NewEventsOfKind) ShouldRun(rc RunContext) bool {
	for _, evt := range rc.TurnEvents {
		if evt.Deleted {
			continue
		}
		if event.MatchesAny(evt.Type, s.Matchers) {
			return true
		}
	}
	return false
}

// Custom fires when an extractor-specific predicate holds.
type Custom struct {
	Predicate func(rc RunContext) bool
}

// ShouldRun implements RunStrategy.
func (s Custom) ShouldRun(rc RunContext) bool {
	return s.Predicate != nil && s.Predicate(rc)
}
