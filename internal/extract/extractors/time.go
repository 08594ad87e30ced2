package extractors

import (
	"context"
	"fmt"
	"time"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var timeSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"date_time": {"type": "string"},
		"days": {"type": "integer", "minimum": 0},
		"hours": {"type": "integer", "minimum": 0},
		"minutes": {"type": "integer", "minimum": 0},
		"reason": {"type": "string"}
	},
	"additionalProperties": false
}`)

type timeReply struct {
	DateTime string `json:"date_time"`
	Days     int    `json:"days"`
	Hours    int    `json:"hours"`
	Minutes  int    `json:"minutes"`
	Reason   string `json:"reason"`
}

const timeInstructionKnown = `How much in-story time passed over this excerpt? Reply with JSON:
{"days": 0, "hours": 0, "minutes": 0, "reason": "short justification"}
All three numbers zero means no perceptible passage of time.`

const timeInstructionUnknown = `What is the in-story date and time at the end of this excerpt? Reply with JSON:
{"date_time": "2024-06-01T18:30:00Z", "reason": "short justification"}
Use RFC 3339 format. If the story gives no anchor, pick a plausible one from context.`

// Time tracks story-clock passage. Until an anchor is established it
// asks for an absolute date-time; afterwards it asks only for deltas
// since its previous run.
func Time() extract.Extractor {
	x := extract.Extractor{
		Name:               "time",
		Category:           extract.CategoryTime,
		DefaultTemperature: 0.2,
		Phase:              extract.PhasePrimitive,
		Messages: window.SinceLastEventOfKind{
			Matchers: []event.Matcher{{Kind: "time"}},
		},
		Trigger: extract.EveryMessage{},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		if !projected.Time.Known {
			var reply timeReply
			if err := callOracle(ctx, gen, x, rc, "", timeInstructionUnknown, 0, timeSchema, &reply); err != nil {
				return extract.Output{}, err
			}
			if _, err := time.Parse(time.RFC3339, reply.DateTime); err != nil {
				return extract.Output{}, fmt.Errorf("time extractor: bad date_time %q: %w", reply.DateTime, err)
			}
			evt, err := extract.NewEvent(rc.Current, event.TypeTimeInitial, event.TimeInitialPayload{
				DateTime: reply.DateTime,
			})
			if err != nil {
				return extract.Output{}, err
			}
			return extract.Output{Events: []event.Event{evt}}, nil
		}

		state := fmt.Sprintf("Story clock: %s\n", projected.Time.Current.Format(time.RFC3339))
		var reply timeReply
		if err := callOracle(ctx, gen, x, rc, state, timeInstructionKnown, 0, timeSchema, &reply); err != nil {
			return extract.Output{}, err
		}
		if reply.Days == 0 && reply.Hours == 0 && reply.Minutes == 0 {
			return extract.Output{}, nil
		}
		evt, err := extract.NewEvent(rc.Current, event.TypeTimeDelta, event.TimeDeltaPayload{
			Days:    reply.Days,
			Hours:   reply.Hours,
			Minutes: reply.Minutes,
			Reason:  reply.Reason,
		})
		if err != nil {
			return extract.Output{}, err
		}
		return extract.Output{Events: []event.Event{evt}}, nil
	}
	return x
}
