package extractors

import (
	"context"
	"fmt"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var chapterEndedSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"ended": {"type": "boolean"},
		"reason": {"type": "string"}
	},
	"required": ["ended"],
	"additionalProperties": false
}`)

type chapterEndedReply struct {
	Ended  bool   `json:"ended"`
	Reason string `json:"reason"`
}

const chapterEndedInstruction = `The scene just shifted (a move or a jump in time). Does this excerpt
close a story chapter, the way a novel would break here? Reply with JSON:
{"ended": false, "reason": ""}
Chapters end on meaningful narrative boundaries, not every scene change.`

var chapterDescribedSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"description": {"type": "string"}
	},
	"required": ["title", "description"],
	"additionalProperties": false
}`)

type chapterDescribedReply struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const chapterDescriptionInstruction = `This excerpt spans a full story chapter that just closed. Reply with JSON:
{"title": "a short evocative chapter title", "description": "a one-paragraph summary of the chapter"}`

// ChapterEnded checks for a chapter boundary when the scene moved or
// the clock jumped this turn.
func ChapterEnded() extract.Extractor {
	x := extract.Extractor{
		Name:               "chapterEnded",
		Category:           extract.CategoryChapters,
		DefaultTemperature: 0.6,
		Phase:              extract.PhaseDerived,
		Messages:           window.FixedNumber{N: 6},
		Trigger: extract.Custom{Predicate: func(rc extract.RunContext) bool {
			return event.HasLocationMove(rc.TurnEvents) || event.HasLargeTimeSkip(rc.TurnEvents)
		}},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		state := fmt.Sprintf("Current chapter: %d\n", projected.CurrentChapter)

		var reply chapterEndedReply
		if err := callOracle(ctx, gen, x, rc, state, chapterEndedInstruction, 0, chapterEndedSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		if !reply.Ended {
			return extract.Output{}, nil
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeChapterEnded, event.ChapterEndedPayload{
			Chapter: projected.CurrentChapter,
			Reason:  reply.Reason,
		})
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}

// ChapterDescription titles and summarizes a chapter closed this turn.
// Its window spans back to the previous described chapter, so it reads
// the whole chapter subject to the chapter-sized cap.
func ChapterDescription() extract.Extractor {
	x := extract.Extractor{
		Name:               extract.NameChapterDescription,
		Category:           extract.CategoryChapters,
		DefaultTemperature: 0.6,
		Phase:              extract.PhaseDerived,
		Messages: window.SinceLastEventOfKind{
			Matchers: []event.Matcher{{Kind: "chapter", Subkind: "described"}},
		},
		Trigger: extract.NewEventsOfKind{
			Matchers: []event.Matcher{{Kind: "chapter", Subkind: "ended"}},
		},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		chapter := 0
		for _, evt := range rc.TurnEvents {
			if evt.Deleted || evt.Type != event.TypeChapterEnded {
				continue
			}
			if payload, ok := evt.Payload.(event.ChapterEndedPayload); ok {
				chapter = payload.Chapter
			}
		}
		if chapter == 0 {
			return extract.Output{}, nil
		}

		var reply chapterDescribedReply
		if err := callOracle(ctx, gen, x, rc, "", chapterDescriptionInstruction, chapterMaxReplyTokens, chapterDescribedSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeChapterDescribed, event.ChapterDescribedPayload{
			Chapter:     chapter,
			Title:       reply.Title,
			Description: reply.Description,
		})
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}
