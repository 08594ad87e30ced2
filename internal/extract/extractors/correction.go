package extractors

import (
	"context"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/reconcile"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

const subjectCorrectionInstruction = `Re-examine the classified subject of each pair's dynamic below against
the excerpt. Reply with JSON giving your best classification for each
pair, corrected where the given one misses the mark:
{"pairs": [{"a": "", "b": "", "subject": "short phrase"}]}`

// SubjectCorrection double-checks relationship subjects classified
// earlier this turn. A corrected value that another event this turn
// already carries tombstones the original instead of duplicating it.
func SubjectCorrection() extract.Extractor {
	x := extract.Extractor{
		Name:               "subjectCorrection",
		Category:           extract.CategoryRelationships,
		DefaultTemperature: 0.3,
		Phase:              extract.PhaseDerived,
		Messages:           window.FixedNumber{N: 8},
		Trigger: extract.NewEventsOfKind{
			Matchers: []event.Matcher{{Kind: "relationship", Subkind: "subject"}},
		},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		type classified struct {
			id      string
			payload event.SubjectPayload
		}
		var subjects []classified
		state := ""
		for _, evt := range rc.TurnEvents {
			payload, ok := event.AsSubject(evt)
			if !ok {
				continue
			}
			subjects = append(subjects, classified{id: evt.ID, payload: payload})
			state += payload.Pair[0] + " & " + payload.Pair[1] + ": " + payload.Subject + "\n"
		}
		if len(subjects) == 0 {
			return extract.Output{}, nil
		}

		var reply subjectsReply
		if err := callOracle(ctx, gen, x, rc, state, subjectCorrectionInstruction, 0, subjectsSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		for _, p := range reply.Pairs {
			pair, ok := validPair(p.A, p.B)
			if !ok || p.Subject == "" {
				continue
			}
			for _, subject := range subjects {
				if !snapshot.SamePair(pair, subject.payload.Pair) {
					continue
				}
				if snapshot.SameName(p.Subject, subject.payload.Subject) {
					break
				}
				if reconcile.DuplicateSubject(rc.TurnEvents, pair, p.Subject, subject.id) {
					out.RetractIDs = append(out.RetractIDs, subject.id)
					break
				}
				evt, err := extract.NewEvent(rc.Current, event.TypeRelationshipSubject, event.SubjectPayload{
					Pair: pair, Subject: p.Subject,
				})
				if err != nil {
					return extract.Output{}, err
				}
				out.Events = append(out.Events, evt)
				break
			}
		}
		return out, nil
	}
	return x
}
