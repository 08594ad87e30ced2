// Package reconcile implements the diff algorithms that keep the
// append-only log convergent despite noisy, repeated, or contradicting
// oracle outputs.
//
// Consolidation diffs an oracle-proposed canonical list against the
// projected list and emits the minimal additive/retractive delta.
// Confirmation retracts previously-established items the oracle no
// longer asserts. Both compare case-insensitively.
package reconcile

import (
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

// Diff computes the delta between the currently-projected list and an
// oracle-proposed canonical list. Removed holds projected items absent
// from canonical; Added holds canonical items absent from projected.
// Containment is case-insensitive, so a pure casing change yields no
// delta. Display casing of additions comes from the canonical list.
func Diff(projected, canonical []string) (removed, added []string) {
	canonicalSet := snapshot.OrderedSet(canonical)
	projectedSet := snapshot.OrderedSet(projected)
	for _, item := range projected {
		if !canonicalSet.Contains(item) {
			removed = append(removed, item)
		}
	}
	for _, item := range canonical {
		if !projectedSet.Contains(item) {
			added = append(added, item)
		}
	}
	return removed, added
}

// Missing returns the established items absent from the oracle's
// "still true" list. Used by confirmation passes, which only retract.
func Missing(established, stillTrue []string) []string {
	removed, _ := Diff(established, stillTrue)
	return removed
}

// DuplicateSubject reports whether this turn's non-deleted events
// already assert the same relationship subject value for the same
// pair, excluding the event being corrected by id. The guard is
// same-turn only: the same subject recurring in a different turn is
// meaningful re-affirmation, not a duplicate.
func DuplicateSubject(turnEvents []event.Event, pair [2]string, value, excludeID string) bool {
	for _, evt := range turnEvents {
		if evt.ID == excludeID {
			continue
		}
		payload, ok := event.AsSubject(evt)
		if !ok {
			continue
		}
		if snapshot.SamePair(payload.Pair, pair) && snapshot.SameName(payload.Subject, value) {
			return true
		}
	}
	return false
}
