package event

// AsSubject narrows an event to its relationship.subject payload.
func AsSubject(evt Event) (SubjectPayload, bool) {
	if evt.Type != TypeRelationshipSubject || evt.Deleted {
		return SubjectPayload{}, false
	}
	p, ok := evt.Payload.(SubjectPayload)
	return p, ok
}

// AsProp narrows an event to a prop payload for the given type.
func AsProp(evt Event, t Type) (PropPayload, bool) {
	if evt.Type != t || evt.Deleted {
		return PropPayload{}, false
	}
	p, ok := evt.Payload.(PropPayload)
	return p, ok
}

// AsTimeDelta narrows an event to its time.delta payload.
func AsTimeDelta(evt Event) (TimeDeltaPayload, bool) {
	if evt.Type != TypeTimeDelta || evt.Deleted {
		return TimeDeltaPayload{}, false
	}
	p, ok := evt.Payload.(TimeDeltaPayload)
	return p, ok
}

// AsLocationMoved narrows an event to its location.moved payload.
func AsLocationMoved(evt Event) (LocationMovedPayload, bool) {
	if evt.Type != TypeLocationMoved || evt.Deleted {
		return LocationMovedPayload{}, false
	}
	p, ok := evt.Payload.(LocationMovedPayload)
	return p, ok
}

// HasLargeTimeSkip reports whether any event in the slice is a time
// delta of at least six hours or one day.
func HasLargeTimeSkip(events []Event) bool {
	for _, evt := range events {
		delta, ok := AsTimeDelta(evt)
		if !ok {
			continue
		}
		if delta.Days >= 1 || delta.Hours >= 6 {
			return true
		}
	}
	return false
}

// HasClimateSet reports whether any event in the slice is an active
// climate.set event.
func HasClimateSet(events []Event) bool {
	for _, evt := range events {
		if evt.Type == TypeClimateSet && !evt.Deleted {
			return true
		}
	}
	return false
}

// HasLocationMove reports whether any event in the slice is a
// location.moved event.
func HasLocationMove(events []Event) bool {
	for _, evt := range events {
		if _, ok := AsLocationMoved(evt); ok {
			return true
		}
	}
	return false
}
