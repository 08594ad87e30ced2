package extractors

import (
	"context"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/reconcile"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
)

var propConfirmationSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"props": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["props"],
	"additionalProperties": false
}`)

type propConfirmationReply struct {
	Props []string `json:"props"`
}

const propConfirmationInstruction = `Of the listed props, which are still present and relevant in the scene?
Reply with JSON: {"props": ["..."]}
List only props from the given list; never invent new ones.`

// PropConfirmation re-checks the accumulated prop list whenever new
// props were recorded this turn, retracting the ones the scene no
// longer supports. Confirmation never adds props.
func PropConfirmation() extract.Extractor {
	x := extract.Extractor{
		Name:               "propConfirmation",
		Category:           extract.CategoryProps,
		DefaultTemperature: 0.2,
		Phase:              extract.PhaseDerived,
		Messages: window.SinceLastEventOfKind{
			Matchers: []event.Matcher{{Kind: "location", Subkind: "moved"}},
		},
		Trigger: extract.NewEventsOfKind{
			Matchers: []event.Matcher{{Kind: "location", Subkind: "prop_added"}},
		},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		if len(projected.Location.Props) == 0 {
			return extract.Output{}, nil
		}
		state := joinLines("Established props", projected.Location.Props)

		var reply propConfirmationReply
		if err := callOracle(ctx, gen, x, rc, state, propConfirmationInstruction, 0, propConfirmationSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		for _, prop := range reconcile.Missing(projected.Location.Props, reply.Props) {
			evt, err := extract.NewEvent(rc.Current, event.TypePropRemoved, event.PropPayload{Prop: prop})
			if err != nil {
				return extract.Output{}, err
			}
			out.Events = append(out.Events, evt)
		}
		return out, nil
	}
	return x
}
