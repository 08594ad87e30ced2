package extractors

import (
	"context"
	"fmt"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var forecastSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"condition": {"type": "string"},
		"high_c": {"type": "number"},
		"low_c": {"type": "number"}
	},
	"required": ["summary"],
	"additionalProperties": false
}`)

type forecastReply struct {
	Summary   string  `json:"summary"`
	Condition string  `json:"condition"`
	HighC     float64 `json:"high_c"`
	LowC      float64 `json:"low_c"`
}

const forecastInstruction = `Given current weather, season, and location, write a plausible weather
forecast for the story's near future. Reply with JSON:
{"summary": "one sentence", "condition": "", "high_c": 0, "low_c": 0}`

// Forecast projects upcoming weather after a scene change or a jump in
// the story clock.
func Forecast() extract.Extractor {
	x := extract.Extractor{
		Name:               "forecast",
		Category:           extract.CategoryClimate,
		DefaultTemperature: 0.6,
		Phase:              extract.PhaseDerived,
		Messages:           window.FixedNumber{N: 6},
		// Registered after the climate extractor, so a climate.set
		// committed this turn is visible here.
		Trigger: extract.Custom{Predicate: func(rc extract.RunContext) bool {
			return event.HasClimateSet(rc.TurnEvents) || event.HasLargeTimeSkip(rc.TurnEvents)
		}},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		state := ""
		if projected.Climate.Condition != "" {
			state = fmt.Sprintf("Current weather: %s, %.0f C\n",
				projected.Climate.Condition, projected.Climate.TemperatureC)
		}
		if projected.Time.Known {
			state += fmt.Sprintf("Story clock: %s\n", projected.Time.Current.Format("2006-01-02 15:04"))
		}

		var reply forecastReply
		if err := callOracle(ctx, gen, x, rc, state, forecastInstruction, 0, forecastSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeForecastGenerated, event.ForecastPayload{
			Summary:   reply.Summary,
			Condition: reply.Condition,
			HighC:     reply.HighC,
			LowC:      reply.LowC,
		})
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}
