package event

// Payload holds the type-specific fields of an event. The set of
// implementations is closed; the projection fold switches over it
// exhaustively.
type Payload interface {
	isPayload()
}

// Direction identifies which side of a relationship pair a directed
// attitude belongs to.
type Direction string

const (
	// DirectionAToB is an attitude held by the first name toward the second.
	DirectionAToB Direction = "a_to_b"
	// DirectionBToA is an attitude held by the second name toward the first.
	DirectionBToA Direction = "b_to_a"
)

// TimeInitialPayload captures the payload for time.initial events.
type TimeInitialPayload struct {
	// DateTime is the narrative starting moment in RFC 3339 form.
	DateTime string `json:"date_time"`
}

// TimeDeltaPayload captures the payload for time.delta events.
type TimeDeltaPayload struct {
	Days    int    `json:"days,omitempty"`
	Hours   int    `json:"hours,omitempty"`
	Minutes int    `json:"minutes,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// LocationMovedPayload captures the payload for location.moved events.
type LocationMovedPayload struct {
	NewArea      string `json:"new_area"`
	NewPlace     string `json:"new_place"`
	Position     string `json:"position,omitempty"`
	LocationType string `json:"location_type,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// PropPayload captures the payload for location.prop_added and
// location.prop_removed events.
type PropPayload struct {
	Prop string `json:"prop"`
}

// ClimateSetPayload captures the payload for climate.set events.
type ClimateSetPayload struct {
	TemperatureC float64 `json:"temperature_c"`
	FeelsLikeC   float64 `json:"feels_like_c,omitempty"`
	Condition    string  `json:"condition"`
	Daylight     string  `json:"daylight,omitempty"`
	Indoor       bool    `json:"indoor,omitempty"`
}

// ForecastPayload captures the payload for forecast_generated events.
type ForecastPayload struct {
	Summary   string  `json:"summary"`
	Condition string  `json:"condition,omitempty"`
	HighC     float64 `json:"high_c,omitempty"`
	LowC      float64 `json:"low_c,omitempty"`
}

// PositionChangedPayload captures the payload for character.position_changed events.
type PositionChangedPayload struct {
	Character string `json:"character"`
	Position  string `json:"position"`
}

// ActivityChangedPayload captures the payload for character.activity_changed events.
type ActivityChangedPayload struct {
	Character string `json:"character"`
	Activity  string `json:"activity"`
}

// MoodPayload captures the payload for character.mood_added and
// character.mood_removed events.
type MoodPayload struct {
	Character string `json:"character"`
	Mood      string `json:"mood"`
}

// OutfitChangedPayload captures the payload for character.outfit_changed
// events. An empty Item clears the slot.
type OutfitChangedPayload struct {
	Character string `json:"character"`
	Slot      string `json:"slot"`
	Item      string `json:"item,omitempty"`
}

// PhysicalPayload captures the payload for character.physical_added and
// character.physical_removed events.
type PhysicalPayload struct {
	Character string `json:"character"`
	State     string `json:"state"`
}

// SubjectPayload captures the payload for relationship.subject events.
type SubjectPayload struct {
	Pair    [2]string `json:"pair"`
	Subject string    `json:"subject"`
}

// AttitudePayload captures the payload for directed relationship
// attitude events (feelings, wants, secrets, added and removed).
type AttitudePayload struct {
	Pair      [2]string `json:"pair"`
	Direction Direction `json:"direction"`
	Value     string    `json:"value"`
}

// StatusChangedPayload captures the payload for relationship.status_changed events.
type StatusChangedPayload struct {
	Pair   [2]string `json:"pair"`
	Status string    `json:"status"`
}

// TopicTonePayload captures the payload for topic_tone events.
type TopicTonePayload struct {
	Topic string `json:"topic"`
	Tone  string `json:"tone"`
}

// TensionPayload captures the payload for tension events.
type TensionPayload struct {
	Level     int    `json:"level"`
	Type      string `json:"type,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// ChapterEndedPayload captures the payload for chapter.ended events.
type ChapterEndedPayload struct {
	Chapter int    `json:"chapter"`
	Reason  string `json:"reason,omitempty"`
}

// ChapterDescribedPayload captures the payload for chapter.described events.
type ChapterDescribedPayload struct {
	Chapter     int    `json:"chapter"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NarrativePayload captures the payload for narrative_description events.
type NarrativePayload struct {
	Description string `json:"description"`
}

func (TimeInitialPayload) isPayload()      {}
func (TimeDeltaPayload) isPayload()        {}
func (LocationMovedPayload) isPayload()    {}
func (PropPayload) isPayload()             {}
func (ClimateSetPayload) isPayload()       {}
func (ForecastPayload) isPayload()         {}
func (PositionChangedPayload) isPayload()  {}
func (ActivityChangedPayload) isPayload()  {}
func (MoodPayload) isPayload()             {}
func (OutfitChangedPayload) isPayload()    {}
func (PhysicalPayload) isPayload()         {}
func (SubjectPayload) isPayload()          {}
func (AttitudePayload) isPayload()         {}
func (StatusChangedPayload) isPayload()    {}
func (TopicTonePayload) isPayload()        {}
func (TensionPayload) isPayload()          {}
func (ChapterEndedPayload) isPayload()     {}
func (ChapterDescribedPayload) isPayload() {}
func (NarrativePayload) isPayload()        {}
