package extractors

import (
	"context"
	"fmt"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var climateSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"temperature_c": {"type": "number"},
		"feels_like_c": {"type": "number"},
		"condition": {"type": "string"},
		"daylight": {"type": "string"},
		"indoor": {"type": "boolean"}
	},
	"required": ["temperature_c", "condition"],
	"additionalProperties": false
}`)

type climateReply struct {
	TemperatureC float64 `json:"temperature_c"`
	FeelsLikeC   float64 `json:"feels_like_c"`
	Condition    string  `json:"condition"`
	Daylight     string  `json:"daylight"`
	Indoor       bool    `json:"indoor"`
}

const climateInstruction = `Describe the current weather and daylight at the scene. Reply with JSON:
{"temperature_c": 18, "feels_like_c": 16, "condition": "light rain",
 "daylight": "dusk", "indoor": false}
Infer plausible values from season, location, and time of day when the
text is silent.`

// Climate re-derives weather after the scene or the clock moved. It
// runs in the derived phase because its trigger reads this turn's
// location and time events.
func Climate() extract.Extractor {
	x := extract.Extractor{
		Name:               "climate",
		Category:           extract.CategoryClimate,
		DefaultTemperature: 0.4,
		Phase:              extract.PhaseDerived,
		Messages:           window.FixedNumber{N: 6},
		Trigger: extract.Custom{Predicate: func(rc extract.RunContext) bool {
			return event.HasLocationMove(rc.TurnEvents) || event.HasLargeTimeSkip(rc.TurnEvents)
		}},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		state := ""
		if projected.Location.Place != "" {
			state = fmt.Sprintf("Location: %s, %s\n", projected.Location.Place, projected.Location.Area)
		}
		if projected.Time.Known {
			state += fmt.Sprintf("Story clock: %s\n", projected.Time.Current.Format("2006-01-02 15:04"))
		}

		var reply climateReply
		if err := callOracle(ctx, gen, x, rc, state, climateInstruction, 0, climateSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeClimateSet, event.ClimateSetPayload{
			TemperatureC: reply.TemperatureC,
			FeelsLikeC:   reply.FeelsLikeC,
			Condition:    reply.Condition,
			Daylight:     reply.Daylight,
			Indoor:       reply.Indoor,
		})
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}
