package extract

// Category is a tracked narrative facet. Each extractor belongs to one
// category, and settings toggle categories on and off.
type Category string

const (
	CategoryTime          Category = "time"
	CategoryLocation      Category = "location"
	CategoryProps         Category = "props"
	CategoryClimate       Category = "climate"
	CategoryCharacters    Category = "characters"
	CategoryRelationships Category = "relationships"
	CategoryScene         Category = "scene"
	CategoryNarrative     Category = "narrative"
	CategoryChapters      Category = "chapters"
)

// Categories lists every tracked facet.
var Categories = []Category{
	CategoryTime,
	CategoryLocation,
	CategoryProps,
	CategoryClimate,
	CategoryCharacters,
	CategoryRelationships,
	CategoryScene,
	CategoryNarrative,
	CategoryChapters,
}

// NameChapterDescription is the extractor name that uses the larger,
// separately configured message cap.
const NameChapterDescription = "chapterDescription"

// Settings configures extraction for a deployment.
type Settings struct {
	// Track toggles categories. A category absent from the map is
	// tracked.
	Track map[Category]bool
	// Temperatures overrides sampling temperature per category.
	Temperatures map[Category]float32
	// MaxMessagesToSend caps the transcript window for every extractor
	// except chapter description. Zero means unlimited.
	MaxMessagesToSend int
	// MaxChapterMessagesToSend caps the chapter-description window,
	// which needs a whole chapter's worth of context. Zero means
	// unlimited.
	MaxChapterMessagesToSend int
	// CustomPrompts overrides the task instruction per extractor name.
	// Contents are opaque to the engine.
	CustomPrompts map[string]string
}

// Enabled reports whether the category is tracked.
func (s Settings) Enabled(category Category) bool {
	if s.Track == nil {
		return true
	}
	enabled, ok := s.Track[category]
	if !ok {
		return true
	}
	return enabled
}

// TemperatureFor returns the configured temperature for the category,
// or the extractor's default when unset.
func (s Settings) TemperatureFor(category Category, fallback float32) float32 {
	if temp, ok := s.Temperatures[category]; ok {
		return temp
	}
	return fallback
}

// CapFor returns the window cap for the named extractor. Zero means
// unlimited.
func (s Settings) CapFor(name string) int {
	if name == NameChapterDescription {
		return s.MaxChapterMessagesToSend
	}
	return s.MaxMessagesToSend
}

// PromptFor returns the custom instruction override for the named
// extractor, or fallback when none is configured.
func (s Settings) PromptFor(name, fallback string) string {
	if prompt, ok := s.CustomPrompts[name]; ok && prompt != "" {
		return prompt
	}
	return fallback
}
