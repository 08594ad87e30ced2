package store

import (
	"sync"

	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/projection"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

// SwipeResolver reports the canonical swipe id for a transcript
// message. The host chat application owns swipe resolution; when no
// resolver is configured the canonical swipe is 0.
type SwipeResolver func(messageID int) int

// Store owns the initial snapshot and the ordered narrative event log.
// It is the single logical writer's log: appends are serialized by the
// orchestrator, reads are pure and safe for any number of concurrent
// readers. The store does not deduplicate or validate cross-event
// consistency; that is the producers' responsibility.
type Store struct {
	mu sync.RWMutex

	initial    snapshot.Snapshot
	hasInitial bool
	log        []event.Event
	nextSeq    uint64
	resolver   SwipeResolver
}

// New returns an empty store. The baseline is a fresh snapshot (story
// opens in chapter 1) until ReplaceInitialSnapshot supplies one.
func New() *Store {
	return &Store{initial: snapshot.New(), nextSeq: 1}
}

// SetSwipeResolver installs the canonical-swipe resolution function.
func (s *Store) SetSwipeResolver(resolver SwipeResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver = resolver
}

// ReplaceInitialSnapshot sets the baseline state. It is supplied once,
// from the first turn's extraction; replacing it after events exist
// invalidates downstream projections.
func (s *Store) ReplaceInitialSnapshot(base snapshot.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = base.Clone()
	s.hasInitial = true
}

// HasInitialSnapshot reports whether a baseline has been supplied.
func (s *Store) HasInitialSnapshot() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasInitial
}

// InitialSnapshot returns a copy of the baseline state.
func (s *Store) InitialSnapshot() snapshot.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initial.Clone()
}

// AppendEvents appends events in call order, assigning log sequence
// numbers. It returns the stored copies so callers can persist the
// assigned sequences.
func (s *Store) AppendEvents(events []event.Event) []event.Event {
	if len(events) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]event.Event, 0, len(events))
	for _, evt := range events {
		evt.Seq = s.nextSeq
		s.nextSeq++
		s.log = append(s.log, evt)
		stored = append(stored, evt)
	}
	return stored
}

// ActiveEvents returns all non-deleted events in log order.
func (s *Store) ActiveEvents() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.Event, 0, len(s.log))
	for _, evt := range s.log {
		if !evt.Deleted {
			out = append(out, evt)
		}
	}
	return out
}

// AllEvents returns every event, including tombstoned ones, in log
// order. Used by persistence, which must round-trip Deleted flags.
func (s *Store) AllEvents() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]event.Event(nil), s.log...)
}

// MarkDeleted flips the tombstone flag on the event with the given id
// and reports whether it was found. This is the only permitted
// mutation of an appended event.
func (s *Store) MarkDeleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.log {
		if s.log[i].ID == id {
			s.log[i].Deleted = true
			return true
		}
	}
	return false
}

// ProjectAt replays state as of the given message, using canonical
// swipe resolution for every turn.
func (s *Store) ProjectAt(messageID int) snapshot.Snapshot {
	return s.project(messageID, nil)
}

// ProjectAtSwipe replays state as of the given message, overriding the
// canonical swipe for that message only.
func (s *Store) ProjectAtSwipe(messageID, swipeID int) snapshot.Snapshot {
	return s.project(messageID, &swipeID)
}

func (s *Store) project(messageID int, swipeOverride *int) snapshot.Snapshot {
	s.mu.RLock()
	base := s.initial
	log := append([]event.Event(nil), s.log...)
	resolver := s.resolver
	s.mu.RUnlock()

	canonical := func(id int) int {
		if swipeOverride != nil && id == messageID {
			return *swipeOverride
		}
		if resolver == nil {
			return 0
		}
		return resolver(id)
	}

	result := projection.Replay(base, log, projection.ReplayOptions{
		UntilMessage: messageID,
		Filter: func(evt event.Event) bool {
			return evt.Source.SwipeID == canonical(evt.Source.MessageID)
		},
	})
	result.Source = event.Source{MessageID: messageID, SwipeID: canonical(messageID)}
	return result
}

// DeepClone returns an independent copy of the store. Appends and
// tombstones on the clone do not affect the original; reconciliation
// passes use clones for speculative evaluation.
func (s *Store) DeepClone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Store{
		initial:    s.initial.Clone(),
		hasInitial: s.hasInitial,
		log:        append([]event.Event(nil), s.log...),
		nextSeq:    s.nextSeq,
		resolver:   s.resolver,
	}
}

// LastEventOfKind returns the most recent active event matching any of
// the matchers, scanning the log backwards.
func (s *Store) LastEventOfKind(matchers []event.Matcher) (event.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.log) - 1; i >= 0; i-- {
		evt := s.log[i]
		if evt.Deleted {
			continue
		}
		if event.MatchesAny(evt.Type, matchers) {
			return evt, true
		}
	}
	return event.Event{}, false
}
