package event

import (
	"strings"
	"time"
)

// Type identifies the type of a narrative event. Types use a
// "kind.subkind" form; a few kinds carry no subkind.
type Type string

// Time events.
const (
	// TypeTimeInitial records the narrative starting date and time.
	TypeTimeInitial Type = "time.initial"
	// TypeTimeDelta records elapsed narrative time.
	TypeTimeDelta Type = "time.delta"
)

// Location events.
const (
	// TypeLocationMoved records a change of area or place.
	TypeLocationMoved Type = "location.moved"
	// TypePropAdded records a prop appearing in the current location.
	TypePropAdded Type = "location.prop_added"
	// TypePropRemoved records a prop leaving the current location.
	TypePropRemoved Type = "location.prop_removed"
)

// Climate events.
const (
	// TypeClimateSet records current weather and daylight conditions.
	TypeClimateSet Type = "climate.set"
	// TypeForecastGenerated records a weather forecast for upcoming scenes.
	TypeForecastGenerated Type = "forecast_generated"
)

// Character events.
const (
	// TypePositionChanged records a character's position in the scene.
	TypePositionChanged Type = "character.position_changed"
	// TypeActivityChanged records what a character is doing.
	TypeActivityChanged Type = "character.activity_changed"
	// TypeMoodAdded records a mood a character has taken on.
	TypeMoodAdded Type = "character.mood_added"
	// TypeMoodRemoved records a mood a character has shed.
	TypeMoodRemoved Type = "character.mood_removed"
	// TypeOutfitChanged records a change to one outfit slot.
	TypeOutfitChanged Type = "character.outfit_changed"
	// TypePhysicalAdded records a physical state a character has taken on.
	TypePhysicalAdded Type = "character.physical_added"
	// TypePhysicalRemoved records a physical state a character has shed.
	TypePhysicalRemoved Type = "character.physical_removed"
)

// Relationship events.
const (
	// TypeRelationshipSubject records the classified subject of a pair's dynamic.
	TypeRelationshipSubject Type = "relationship.subject"
	// TypeFeelingAdded records a directed feeling between a pair.
	TypeFeelingAdded Type = "relationship.feeling_added"
	// TypeFeelingRemoved records a directed feeling that no longer holds.
	TypeFeelingRemoved Type = "relationship.feeling_removed"
	// TypeWantAdded records a directed want between a pair.
	TypeWantAdded Type = "relationship.want_added"
	// TypeWantRemoved records a directed want that no longer holds.
	TypeWantRemoved Type = "relationship.want_removed"
	// TypeSecretAdded records a directed secret between a pair.
	TypeSecretAdded Type = "relationship.secret_added"
	// TypeSecretRemoved records a directed secret that no longer holds.
	TypeSecretRemoved Type = "relationship.secret_removed"
	// TypeStatusChanged records a pair's relationship status.
	TypeStatusChanged Type = "relationship.status_changed"
)

// Scene and chapter events.
const (
	// TypeTopicTone records the scene's topic and tone.
	TypeTopicTone Type = "topic_tone"
	// TypeTension records the scene's tension level and direction.
	TypeTension Type = "tension"
	// TypeChapterEnded records that a story chapter has closed.
	TypeChapterEnded Type = "chapter.ended"
	// TypeChapterDescribed records a title and summary for a closed chapter.
	TypeChapterDescribed Type = "chapter.described"
	// TypeNarrativeDescription records a notable narrative beat.
	TypeNarrativeDescription Type = "narrative_description"
)

// Source identifies the transcript turn and alternate generation
// ("swipe") that produced a fact. Immutable once set.
type Source struct {
	MessageID int `json:"message_id"`
	SwipeID   int `json:"swipe_id"`
}

// Event is an immutable record in the narrative event log. Events are
// never mutated after creation except flipping Deleted; all state
// transitions are represented as new events.
type Event struct {
	// ID is the unique, stable identifier assigned at creation.
	ID string
	// Seq is the position in the log (starts at 1). Assigned by the
	// store on append.
	Seq uint64
	// Type identifies the kind of event.
	Type Type
	// Source is the transcript turn that produced the event.
	Source Source
	// Timestamp is when the event was created.
	Timestamp time.Time
	// Deleted soft-retracts the event. Readers must filter on it.
	Deleted bool
	// Payload holds the type-specific fields.
	Payload Payload
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Kind returns the kind prefix of the event type (e.g. "location").
// Types without a subkind return themselves.
func (t Type) Kind() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Subkind returns the suffix of the event type, or "" when the type
// carries no subkind.
func (t Type) Subkind() string {
	for i, c := range t {
		if c == '.' {
			return string(t[i+1:])
		}
	}
	return ""
}

// Matcher selects event types by kind and, optionally, subkind.
// An empty Subkind matches every subkind of the kind.
type Matcher struct {
	Kind    string
	Subkind string
}

// Matches reports whether the event type satisfies the matcher.
func (m Matcher) Matches(t Type) bool {
	if t.Kind() != m.Kind {
		return false
	}
	return m.Subkind == "" || t.Subkind() == m.Subkind
}

// MatchesAny reports whether any matcher selects the event type.
func MatchesAny(t Type, matchers []Matcher) bool {
	for _, m := range matchers {
		if m.Matches(t) {
			return true
		}
	}
	return false
}
