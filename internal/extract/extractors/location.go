package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var locationSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"moved": {"type": "boolean"},
		"new_area": {"type": "string"},
		"new_place": {"type": "string"},
		"position": {"type": "string"},
		"location_type": {"type": "string"},
		"reason": {"type": "string"},
		"props_added": {"type": "array", "items": {"type": "string"}},
		"props_removed": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["moved"],
	"additionalProperties": false
}`)

type locationReply struct {
	Moved        bool     `json:"moved"`
	NewArea      string   `json:"new_area"`
	NewPlace     string   `json:"new_place"`
	Position     string   `json:"position"`
	LocationType string   `json:"location_type"`
	Reason       string   `json:"reason"`
	PropsAdded   []string `json:"props_added"`
	PropsRemoved []string `json:"props_removed"`
}

const locationInstruction = `Did the scene move to a different place over this excerpt, and did any
notable props appear or leave the scene? Reply with JSON:
{"moved": false, "new_area": "", "new_place": "", "position": "", "location_type": "indoor|outdoor",
 "reason": "", "props_added": [], "props_removed": []}
Only set moved when area or place actually changed. Props are concrete
objects characters interact with, not scenery.`

// Location tracks scene moves and prop arrivals and departures.
func Location() extract.Extractor {
	x := extract.Extractor{
		Name:               "location",
		Category:           extract.CategoryLocation,
		DefaultTemperature: 0.3,
		Phase:              extract.PhasePrimitive,
		Messages:           window.FixedNumber{N: 4},
		Trigger:            extract.EveryMessage{},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		var state strings.Builder
		if projected.Location.Place != "" || projected.Location.Area != "" {
			fmt.Fprintf(&state, "Location: %s, %s\n", projected.Location.Place, projected.Location.Area)
		}
		state.WriteString(joinLines("Props present", projected.Location.Props))

		var reply locationReply
		if err := callOracle(ctx, gen, x, rc, state.String(), locationInstruction, 0, locationSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		if reply.Moved && (reply.NewArea != "" || reply.NewPlace != "") {
			evt, err := extract.NewEvent(rc.Current, event.TypeLocationMoved, event.LocationMovedPayload{
				NewArea:      reply.NewArea,
				NewPlace:     reply.NewPlace,
				Position:     reply.Position,
				LocationType: reply.LocationType,
				Reason:       reply.Reason,
			})
			if err != nil {
				return extract.Output{}, err
			}
			out.Events = append(out.Events, evt)
		}
		for _, prop := range reply.PropsAdded {
			if strings.TrimSpace(prop) == "" {
				continue
			}
			evt, err := extract.NewEvent(rc.Current, event.TypePropAdded, event.PropPayload{Prop: prop})
			if err != nil {
				return extract.Output{}, err
			}
			out.Events = append(out.Events, evt)
		}
		// A move already resets the prop list; explicit removals only
		// matter when the scene stayed put.
		if !reply.Moved {
			for _, prop := range reply.PropsRemoved {
				if strings.TrimSpace(prop) == "" {
					continue
				}
				evt, err := extract.NewEvent(rc.Current, event.TypePropRemoved, event.PropPayload{Prop: prop})
				if err != nil {
					return extract.Output{}, err
				}
				out.Events = append(out.Events, evt)
			}
		}
		return out, nil
	}
	return x
}
