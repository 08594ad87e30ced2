package extractors

import (
	"context"
	"fmt"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var topicToneSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"topic": {"type": "string"},
		"tone": {"type": "string"}
	},
	"required": ["topic", "tone"],
	"additionalProperties": false
}`)

var tensionSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"level": {"type": "integer", "minimum": 1, "maximum": 10},
		"type": {"type": "string"},
		"direction": {"type": "string", "enum": ["rising", "steady", "falling"]}
	},
	"required": ["level"],
	"additionalProperties": false
}`)

const topicToneInstruction = `What are the characters talking about, and in what register? Reply with JSON:
{"topic": "short noun phrase", "tone": "one or two words"}`

const tensionInstruction = `Rate the scene's dramatic tension. Reply with JSON:
{"level": 3, "type": "romantic|conflict|suspense|comedic|none", "direction": "rising|steady|falling"}
Level runs 1 (none) to 10 (breaking point).`

// TopicTone periodically reclassifies the scene's subject and register.
func TopicTone() extract.Extractor {
	x := extract.Extractor{
		Name:               "topicTone",
		Category:           extract.CategoryScene,
		DefaultTemperature: 0.5,
		Phase:              extract.PhasePrimitive,
		Messages:           window.FixedNumber{N: 6},
		Trigger:            extract.EveryNMessages{N: 3},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		var reply event.TopicTonePayload
		if err := callOracle(ctx, gen, x, rc, "", topicToneInstruction, 0, topicToneSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		if reply.Topic == projected.Scene.Topic && reply.Tone == projected.Scene.Tone {
			return extract.Output{}, nil
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeTopicTone, reply)
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}

// Tension periodically re-rates dramatic tension.
func Tension() extract.Extractor {
	x := extract.Extractor{
		Name:               "tension",
		Category:           extract.CategoryScene,
		DefaultTemperature: 0.5,
		Phase:              extract.PhasePrimitive,
		Messages:           window.FixedNumber{N: 6},
		Trigger:            extract.EveryNMessages{N: 3, Offset: 1},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		state := ""
		if projected.Scene.Tension.Level > 0 {
			state = fmt.Sprintf("Previous tension: level %d, %s\n",
				projected.Scene.Tension.Level, projected.Scene.Tension.Type)
		}
		var reply event.TensionPayload
		if err := callOracle(ctx, gen, x, rc, state, tensionInstruction, 0, tensionSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeTension, reply)
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}
