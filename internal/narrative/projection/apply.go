package projection

import (
	"time"

	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

// Apply folds one event into the snapshot. Folding is a pure function
// of (snapshot, event): it mutates only the sub-structure the event's
// kind owns and performs no I/O. Folding a removal for an item that is
// not present is a no-op. Deleted events are skipped by callers, not
// here.
func Apply(s *snapshot.Snapshot, evt event.Event) {
	switch payload := evt.Payload.(type) {
	case event.TimeInitialPayload:
		applyTimeInitial(s, payload)
	case event.TimeDeltaPayload:
		applyTimeDelta(s, payload)
	case event.LocationMovedPayload:
		applyLocationMoved(s, payload)
	case event.PropPayload:
		applyProp(s, evt.Type, payload)
	case event.ClimateSetPayload:
		s.Climate = snapshot.ClimateState{
			TemperatureC: payload.TemperatureC,
			FeelsLikeC:   payload.FeelsLikeC,
			Condition:    payload.Condition,
			Daylight:     payload.Daylight,
			Indoor:       payload.Indoor,
		}
	case event.ForecastPayload:
		s.Forecast = payload.Summary
	case event.PositionChangedPayload:
		s.Character(payload.Character).Position = payload.Position
	case event.ActivityChangedPayload:
		s.Character(payload.Character).Activity = payload.Activity
	case event.MoodPayload:
		applyMood(s, evt.Type, payload)
	case event.OutfitChangedPayload:
		applyOutfit(s, payload)
	case event.PhysicalPayload:
		applyPhysical(s, evt.Type, payload)
	case event.SubjectPayload:
		s.Relationship(payload.Pair).Subject = payload.Subject
	case event.AttitudePayload:
		applyAttitude(s, evt.Type, payload)
	case event.StatusChangedPayload:
		s.Relationship(payload.Pair).Status = payload.Status
	case event.TopicTonePayload:
		s.Scene.Topic = payload.Topic
		s.Scene.Tone = payload.Tone
	case event.TensionPayload:
		s.Scene.Tension = snapshot.Tension{
			Level:     payload.Level,
			Type:      payload.Type,
			Direction: payload.Direction,
		}
	case event.ChapterEndedPayload:
		if payload.Chapter >= s.CurrentChapter {
			s.CurrentChapter = payload.Chapter + 1
		}
	case event.ChapterDescribedPayload:
		s.Chapters = append(s.Chapters, snapshot.Chapter{
			Number:      payload.Chapter,
			Title:       payload.Title,
			Description: payload.Description,
		})
	case event.NarrativePayload:
		s.NarrativeEvents = append(s.NarrativeEvents, snapshot.NarrativeEvent{
			Source:      evt.Source,
			Description: payload.Description,
		})
	}
}

func applyTimeInitial(s *snapshot.Snapshot, payload event.TimeInitialPayload) {
	parsed, err := time.Parse(time.RFC3339, payload.DateTime)
	if err != nil {
		return
	}
	s.Time = snapshot.TimeState{Current: parsed, Known: true}
}

func applyTimeDelta(s *snapshot.Snapshot, payload event.TimeDeltaPayload) {
	if !s.Time.Known {
		return
	}
	s.Time.Current = s.Time.Current.
		AddDate(0, 0, payload.Days).
		Add(time.Duration(payload.Hours)*time.Hour + time.Duration(payload.Minutes)*time.Minute)
}

func applyLocationMoved(s *snapshot.Snapshot, payload event.LocationMovedPayload) {
	// Moving resets the prop inventory; props belong to a place.
	s.Location = snapshot.LocationState{
		Area:         payload.NewArea,
		Place:        payload.NewPlace,
		Position:     payload.Position,
		LocationType: payload.LocationType,
	}
}

func applyProp(s *snapshot.Snapshot, t event.Type, payload event.PropPayload) {
	switch t {
	case event.TypePropAdded:
		s.Location.Props = s.Location.Props.Add(payload.Prop)
	case event.TypePropRemoved:
		s.Location.Props = s.Location.Props.Remove(payload.Prop)
	}
}

func applyMood(s *snapshot.Snapshot, t event.Type, payload event.MoodPayload) {
	switch t {
	case event.TypeMoodAdded:
		s.Character(payload.Character).Mood = s.Character(payload.Character).Mood.Add(payload.Mood)
	case event.TypeMoodRemoved:
		if state, ok := s.LookupCharacter(payload.Character); ok {
			state.Mood = state.Mood.Remove(payload.Mood)
		}
	}
}

func applyOutfit(s *snapshot.Snapshot, payload event.OutfitChangedPayload) {
	state := s.Character(payload.Character)
	if state.Outfit == nil {
		state.Outfit = map[string]string{}
	}
	state.Outfit[payload.Slot] = payload.Item
}

func applyPhysical(s *snapshot.Snapshot, t event.Type, payload event.PhysicalPayload) {
	switch t {
	case event.TypePhysicalAdded:
		state := s.Character(payload.Character)
		state.PhysicalState = state.PhysicalState.Add(payload.State)
	case event.TypePhysicalRemoved:
		if state, ok := s.LookupCharacter(payload.Character); ok {
			state.PhysicalState = state.PhysicalState.Remove(payload.State)
		}
	}
}

func applyAttitude(s *snapshot.Snapshot, t event.Type, payload event.AttitudePayload) {
	switch t {
	case event.TypeFeelingAdded:
		attitude := s.Relationship(payload.Pair).Attitude(payload.Pair, payload.Direction)
		attitude.Feelings = attitude.Feelings.Add(payload.Value)
	case event.TypeWantAdded:
		attitude := s.Relationship(payload.Pair).Attitude(payload.Pair, payload.Direction)
		attitude.Wants = attitude.Wants.Add(payload.Value)
	case event.TypeSecretAdded:
		attitude := s.Relationship(payload.Pair).Attitude(payload.Pair, payload.Direction)
		attitude.Secrets = attitude.Secrets.Add(payload.Value)
	case event.TypeFeelingRemoved:
		if state, ok := s.LookupRelationship(payload.Pair); ok {
			attitude := state.Attitude(payload.Pair, payload.Direction)
			attitude.Feelings = attitude.Feelings.Remove(payload.Value)
		}
	case event.TypeWantRemoved:
		if state, ok := s.LookupRelationship(payload.Pair); ok {
			attitude := state.Attitude(payload.Pair, payload.Direction)
			attitude.Wants = attitude.Wants.Remove(payload.Value)
		}
	case event.TypeSecretRemoved:
		if state, ok := s.LookupRelationship(payload.Pair); ok {
			attitude := state.Attitude(payload.Pair, payload.Direction)
			attitude.Secrets = attitude.Secrets.Remove(payload.Value)
		}
	}
}
