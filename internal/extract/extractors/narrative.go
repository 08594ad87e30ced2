package extractors

import (
	"context"
	"strings"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var narrativeSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"events": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["events"],
	"additionalProperties": false
}`)

type narrativeReply struct {
	Events []string `json:"events"`
}

const narrativeInstruction = `List the notable story beats in this excerpt, one short past-tense
sentence each. Reply with JSON: {"events": ["..."]}
Only beats that advance the story; an empty list is a fine answer.`

// Narrative records story beats as they accumulate.
func Narrative() extract.Extractor {
	x := extract.Extractor{
		Name:               "narrative",
		Category:           extract.CategoryNarrative,
		DefaultTemperature: 0.7,
		Phase:              extract.PhasePrimitive,
		Messages: window.SinceLastEventOfKind{
			Matchers: []event.Matcher{{Kind: "narrative_description"}},
		},
		Trigger: extract.EveryNMessages{N: 4, Offset: 1},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		var reply narrativeReply
		if err := callOracle(ctx, gen, x, rc, "", narrativeInstruction, 0, narrativeSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		var out extract.Output
		for _, beat := range reply.Events {
			if strings.TrimSpace(beat) == "" {
				continue
			}
			evt, err := extract.NewEvent(rc.Current, event.TypeNarrativeDescription, event.NarrativePayload{
				Description: beat,
			})
			if err != nil {
				return extract.Output{}, err
			}
			out.Events = append(out.Events, evt)
		}
		return out, nil
	}
	return x
}
