package event

import (
	"encoding/json"
	"fmt"
)

// EncodePayload serializes a payload to its flat JSON record form.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("payload is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return data, nil
}

// DecodePayload deserializes a flat JSON record into the typed payload
// for the given event type.
func DecodePayload(t Type, data []byte) (Payload, error) {
	switch t {
	case TypeTimeInitial:
		return decodeInto(t, data, TimeInitialPayload{})
	case TypeTimeDelta:
		return decodeInto(t, data, TimeDeltaPayload{})
	case TypeLocationMoved:
		return decodeInto(t, data, LocationMovedPayload{})
	case TypePropAdded, TypePropRemoved:
		return decodeInto(t, data, PropPayload{})
	case TypeClimateSet:
		return decodeInto(t, data, ClimateSetPayload{})
	case TypeForecastGenerated:
		return decodeInto(t, data, ForecastPayload{})
	case TypePositionChanged:
		return decodeInto(t, data, PositionChangedPayload{})
	case TypeActivityChanged:
		return decodeInto(t, data, ActivityChangedPayload{})
	case TypeMoodAdded, TypeMoodRemoved:
		return decodeInto(t, data, MoodPayload{})
	case TypeOutfitChanged:
		return decodeInto(t, data, OutfitChangedPayload{})
	case TypePhysicalAdded, TypePhysicalRemoved:
		return decodeInto(t, data, PhysicalPayload{})
	case TypeRelationshipSubject:
		return decodeInto(t, data, SubjectPayload{})
	case TypeFeelingAdded, TypeFeelingRemoved,
		TypeWantAdded, TypeWantRemoved,
		TypeSecretAdded, TypeSecretRemoved:
		return decodeInto(t, data, AttitudePayload{})
	case TypeStatusChanged:
		return decodeInto(t, data, StatusChangedPayload{})
	case TypeTopicTone:
		return decodeInto(t, data, TopicTonePayload{})
	case TypeTension:
		return decodeInto(t, data, TensionPayload{})
	case TypeChapterEnded:
		return decodeInto(t, data, ChapterEndedPayload{})
	case TypeChapterDescribed:
		return decodeInto(t, data, ChapterDescribedPayload{})
	case TypeNarrativeDescription:
		return decodeInto(t, data, NarrativePayload{})
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}

func decodeInto[T Payload](t Type, data []byte, target T) (Payload, error) {
	if err := json.Unmarshal(data, &target); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return target, nil
}
