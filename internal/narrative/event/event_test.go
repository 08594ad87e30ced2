package event

import "testing"

func TestTypeKindSubkind(t *testing.T) {
	cases := []struct {
		eventType Type
		kind      string
		subkind   string
	}{
		{TypeLocationMoved, "location", "moved"},
		{TypePropAdded, "location", "prop_added"},
		{TypeTimeInitial, "time", "initial"},
		{TypeTopicTone, "topic_tone", ""},
		{TypeNarrativeDescription, "narrative_description", ""},
	}
	for _, tc := range cases {
		if got := tc.eventType.Kind(); got != tc.kind {
			t.Fatalf("Kind(%s) = %q, want %q", tc.eventType, got, tc.kind)
		}
		if got := tc.eventType.Subkind(); got != tc.subkind {
			t.Fatalf("Subkind(%s) = %q, want %q", tc.eventType, got, tc.subkind)
		}
	}
}

func TestMatcherMatches(t *testing.T) {
	kindOnly := Matcher{Kind: "location"}
	if !kindOnly.Matches(TypeLocationMoved) {
		t.Fatal("kind-only matcher should match location.moved")
	}
	if !kindOnly.Matches(TypePropAdded) {
		t.Fatal("kind-only matcher should match location.prop_added")
	}
	if kindOnly.Matches(TypeTimeDelta) {
		t.Fatal("kind-only matcher should not match time.delta")
	}

	exact := Matcher{Kind: "location", Subkind: "moved"}
	if !exact.Matches(TypeLocationMoved) {
		t.Fatal("exact matcher should match location.moved")
	}
	if exact.Matches(TypePropAdded) {
		t.Fatal("exact matcher should not match location.prop_added")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	original := AttitudePayload{
		Pair:      [2]string{"Mira", "Joss"},
		Direction: DirectionBToA,
		Value:     "admiration",
	}
	encoded, err := EncodePayload(original)
	if err != nil {
		t.Fatalf("EncodePayload returned error: %v", err)
	}
	decoded, err := DecodePayload(TypeFeelingAdded, encoded)
	if err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	payload, ok := decoded.(AttitudePayload)
	if !ok {
		t.Fatalf("decoded payload has type %T, want AttitudePayload", decoded)
	}
	if payload != original {
		t.Fatalf("payload = %+v, want %+v", payload, original)
	}
}

func TestDecodePayloadRejectsUnknownType(t *testing.T) {
	if _, err := DecodePayload(Type("bogus.kind"), []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestHasLargeTimeSkip(t *testing.T) {
	small := Event{Type: TypeTimeDelta, Payload: TimeDeltaPayload{Minutes: 30}}
	if HasLargeTimeSkip([]Event{small}) {
		t.Fatal("30 minutes should not count as a large skip")
	}
	sixHours := Event{Type: TypeTimeDelta, Payload: TimeDeltaPayload{Hours: 6}}
	if !HasLargeTimeSkip([]Event{small, sixHours}) {
		t.Fatal("6 hours should count as a large skip")
	}
	deleted := Event{Type: TypeTimeDelta, Deleted: true, Payload: TimeDeltaPayload{Days: 2}}
	if HasLargeTimeSkip([]Event{deleted}) {
		t.Fatal("tombstoned events should be ignored")
	}
}

func TestHasClimateSet(t *testing.T) {
	set := Event{Type: TypeClimateSet, Payload: ClimateSetPayload{Condition: "rain"}}
	if !HasClimateSet([]Event{set}) {
		t.Fatal("climate.set should be detected")
	}
	deleted := Event{Type: TypeClimateSet, Deleted: true, Payload: ClimateSetPayload{Condition: "rain"}}
	if HasClimateSet([]Event{deleted}) {
		t.Fatal("tombstoned climate.set should be ignored")
	}
	if HasClimateSet([]Event{{Type: TypeLocationMoved, Payload: LocationMovedPayload{NewArea: "pier"}}}) {
		t.Fatal("a move is not a climate change")
	}
}
