package extractors

import "github.com/marisbel/chronicle/internal/extract"

// All returns the built-in roster in registration order. Commit order
// within a phase follows this order, so results are deterministic for
// a given set of oracle replies.
func All() []extract.Extractor {
	return []extract.Extractor{
		// Primitive: transcript plus prior state only.
		Time(),
		Location(),
		Characters(),
		TopicTone(),
		Tension(),
		RelationshipSubjects(),
		RelationshipAttitudes(),
		Narrative(),

		// Derived: may read this turn's primitive events.
		Climate(),
		PropConfirmation(),
		MoodConsolidation(),
		PhysicalConsolidation(),
		AttitudeConsolidation(),
		SubjectCorrection(),
		ChapterEnded(),
		ChapterDescription(),
		Forecast(),
	}
}
