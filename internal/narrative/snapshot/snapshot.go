package snapshot

import (
	"time"

	"github.com/marisbel/chronicle/internal/narrative/event"
)

// Snapshot represents the aggregate narrative state at a point in the
// event log. A snapshot requested for a transcript position is derived
// by replay; it is never stored long-term except as a cache.
type Snapshot struct {
	// Source is the transcript turn the snapshot reflects.
	Source event.Source
	// Time is the current narrative moment.
	Time TimeState
	// Location is where the scene takes place.
	Location LocationState
	// Climate is the current weather and daylight.
	Climate ClimateState
	// Scene is the conversational topic, tone, and tension.
	Scene SceneState
	// Characters holds per-character state keyed by display name.
	Characters map[string]*CharacterState
	// Relationships holds pairwise state keyed by PairKey.
	Relationships map[string]*RelationshipState
	// CurrentChapter is the one-based story chapter in progress.
	CurrentChapter int
	// CharactersPresent lists characters in the current scene.
	CharactersPresent OrderedSet
	// NarrativeEvents lists notable beats in occurrence order.
	NarrativeEvents []NarrativeEvent
	// Chapters lists described chapters in order.
	Chapters []Chapter
	// Forecast is the most recent weather forecast, if any.
	Forecast string
}

// TimeState tracks the narrative clock.
type TimeState struct {
	// Current is the narrative moment, valid once Known is true.
	Current time.Time
	// Known reports whether an initial time was ever established.
	Known bool
}

// LocationState tracks where the scene takes place.
type LocationState struct {
	Area         string
	Place        string
	Position     string
	LocationType string
	Props        OrderedSet
}

// ClimateState tracks weather and daylight conditions.
type ClimateState struct {
	TemperatureC float64
	FeelsLikeC   float64
	Condition    string
	Daylight     string
	Indoor       bool
}

// Tension describes the scene's dramatic tension.
type Tension struct {
	Level     int
	Type      string
	Direction string
}

// SceneState tracks the conversational register of the scene.
type SceneState struct {
	Topic   string
	Tone    string
	Tension Tension
}

// CharacterState tracks one character's observable state.
type CharacterState struct {
	Position      string
	Activity      string
	Mood          OrderedSet
	PhysicalState OrderedSet
	// Outfit maps slot names to the worn item; an empty item means the
	// slot is bare.
	Outfit  map[string]string
	AKAs    OrderedSet
	Profile string
}

// Attitude holds one direction of a relationship's state.
type Attitude struct {
	Feelings OrderedSet
	Secrets  OrderedSet
	Wants    OrderedSet
}

// RelationshipState tracks the state between a pair of characters.
// Pair preserves display casing; AToB is held by Pair[0] toward
// Pair[1].
type RelationshipState struct {
	Pair    [2]string
	Subject string
	Status  string
	AToB    Attitude
	BToA    Attitude
}

// NarrativeEvent is one recorded story beat.
type NarrativeEvent struct {
	Source      event.Source
	Description string
}

// Chapter is one described story chapter.
type Chapter struct {
	Number      int
	Title       string
	Description string
}

// New returns an empty snapshot positioned before any transcript turn.
func New() Snapshot {
	return Snapshot{
		Characters:     map[string]*CharacterState{},
		Relationships:  map[string]*RelationshipState{},
		CurrentChapter: 1,
	}
}

// Character returns the state for name, creating it (and marking the
// character present) on first reference. Lookup is case-insensitive;
// the first-seen display casing is retained.
func (s *Snapshot) Character(name string) *CharacterState {
	if s.Characters == nil {
		s.Characters = map[string]*CharacterState{}
	}
	for have, state := range s.Characters {
		if SameName(have, name) {
			return state
		}
	}
	state := &CharacterState{Outfit: map[string]string{}}
	s.Characters[name] = state
	s.CharactersPresent = s.CharactersPresent.Add(name)
	return state
}

// LookupCharacter returns the state for name without creating it.
func (s *Snapshot) LookupCharacter(name string) (*CharacterState, bool) {
	for have, state := range s.Characters {
		if SameName(have, name) {
			return state, true
		}
	}
	return nil, false
}

// LookupRelationship returns the state for the pair without creating it.
func (s *Snapshot) LookupRelationship(pair [2]string) (*RelationshipState, bool) {
	state, ok := s.Relationships[PairKey(pair[0], pair[1])]
	return state, ok
}

// Relationship returns the state for the pair, creating it on first
// reference. The key is order-independent and case-folded.
func (s *Snapshot) Relationship(pair [2]string) *RelationshipState {
	if s.Relationships == nil {
		s.Relationships = map[string]*RelationshipState{}
	}
	key := PairKey(pair[0], pair[1])
	if state, ok := s.Relationships[key]; ok {
		return state
	}
	state := &RelationshipState{Pair: pair}
	s.Relationships[key] = state
	return state
}

// Attitude returns the directed attitude for the stored pair
// orientation. The direction is relative to the payload's pair order,
// so callers pass the payload pair alongside it.
func (r *RelationshipState) Attitude(pair [2]string, direction event.Direction) *Attitude {
	// The payload pair may be reversed relative to the stored pair.
	aligned := SameName(pair[0], r.Pair[0])
	toward := direction == event.DirectionAToB
	if aligned == toward {
		return &r.AToB
	}
	return &r.BToA
}

// Clone returns an independent deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Location.Props = s.Location.Props.Clone()
	out.CharactersPresent = s.CharactersPresent.Clone()

	out.Characters = make(map[string]*CharacterState, len(s.Characters))
	for name, state := range s.Characters {
		cloned := *state
		cloned.Mood = state.Mood.Clone()
		cloned.PhysicalState = state.PhysicalState.Clone()
		cloned.AKAs = state.AKAs.Clone()
		cloned.Outfit = make(map[string]string, len(state.Outfit))
		for slot, item := range state.Outfit {
			cloned.Outfit[slot] = item
		}
		out.Characters[name] = &cloned
	}

	out.Relationships = make(map[string]*RelationshipState, len(s.Relationships))
	for key, state := range s.Relationships {
		cloned := *state
		cloned.AToB = state.AToB.clone()
		cloned.BToA = state.BToA.clone()
		out.Relationships[key] = &cloned
	}

	out.NarrativeEvents = append([]NarrativeEvent(nil), s.NarrativeEvents...)
	out.Chapters = append([]Chapter(nil), s.Chapters...)
	return out
}

func (a Attitude) clone() Attitude {
	return Attitude{
		Feelings: a.Feelings.Clone(),
		Secrets:  a.Secrets.Clone(),
		Wants:    a.Wants.Clone(),
	}
}
