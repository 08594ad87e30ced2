package extractors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

var subjectsSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"pairs": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"a": {"type": "string"},
					"b": {"type": "string"},
					"subject": {"type": "string"},
					"status": {"type": "string"}
				},
				"required": ["a", "b"],
				"additionalProperties": false
			}
		}
	},
	"required": ["pairs"],
	"additionalProperties": false
}`)

type subjectsReply struct {
	Pairs []struct {
		A       string `json:"a"`
		B       string `json:"b"`
		Subject string `json:"subject"`
		Status  string `json:"status"`
	} `json:"pairs"`
}

const subjectsInstruction = `For each pair of characters interacting in this excerpt, classify the
current subject of their dynamic (what their interaction is fundamentally
about right now) and their relationship status. Reply with JSON:
{"pairs": [{"a": "", "b": "", "subject": "short phrase", "status": "strangers|friends|lovers|rivals|..."}]}
Only include pairs that actually interact in the excerpt.`

var attitudesSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"pairs": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"a": {"type": "string"},
					"b": {"type": "string"},
					"a_to_b": {"$ref": "#/$defs/attitude"},
					"b_to_a": {"$ref": "#/$defs/attitude"}
				},
				"required": ["a", "b"],
				"additionalProperties": false
			}
		}
	},
	"required": ["pairs"],
	"additionalProperties": false,
	"$defs": {
		"attitude": {
			"type": "object",
			"properties": {
				"feelings": {"type": "array", "items": {"type": "string"}},
				"wants": {"type": "array", "items": {"type": "string"}},
				"secrets": {"type": "array", "items": {"type": "string"}}
			},
			"additionalProperties": false
		}
	}
}`)

type attitudeLists struct {
	Feelings []string `json:"feelings"`
	Wants    []string `json:"wants"`
	Secrets  []string `json:"secrets"`
}

type attitudesReply struct {
	Pairs []struct {
		A    string        `json:"a"`
		B    string        `json:"b"`
		AToB attitudeLists `json:"a_to_b"`
		BToA attitudeLists `json:"b_to_a"`
	} `json:"pairs"`
}

const attitudesInstruction = `For each pair of characters interacting in this excerpt, report any NEW
directed feelings, wants, and secrets revealed by the excerpt, in each
direction. Reply with JSON:
{"pairs": [{"a": "", "b": "",
 "a_to_b": {"feelings": [], "wants": [], "secrets": []},
 "b_to_a": {"feelings": [], "wants": [], "secrets": []}}]}
Only report what this excerpt newly establishes; omit pairs with nothing new.`

// RelationshipSubjects classifies pair dynamics and status.
func RelationshipSubjects() extract.Extractor {
	x := extract.Extractor{
		Name:               "relationshipSubjects",
		Category:           extract.CategoryRelationships,
		DefaultTemperature: 0.5,
		Phase:              extract.PhasePrimitive,
		Messages:           window.FixedNumber{N: 8},
		Trigger:            extract.EveryNMessages{N: 4, Offset: 2},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		var reply subjectsReply
		if err := callOracle(ctx, gen, x, rc, relationshipStateContext(projected), subjectsInstruction, 0, subjectsSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		for _, p := range reply.Pairs {
			pair, ok := validPair(p.A, p.B)
			if !ok {
				continue
			}
			prior, known := projected.LookupRelationship(pair)
			if p.Subject != "" && (!known || !snapshot.SameName(prior.Subject, p.Subject)) {
				evt, err := extract.NewEvent(rc.Current, event.TypeRelationshipSubject, event.SubjectPayload{
					Pair: pair, Subject: p.Subject,
				})
				if err != nil {
					return extract.Output{}, err
				}
				out.Events = append(out.Events, evt)
			}
			if p.Status != "" && (!known || !snapshot.SameName(prior.Status, p.Status)) {
				evt, err := extract.NewEvent(rc.Current, event.TypeStatusChanged, event.StatusChangedPayload{
					Pair: pair, Status: p.Status,
				})
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

// RelationshipAttitudes accumulates directed feelings, wants, and
// secrets. Additive only; attitudeConsolidation prunes stale entries.
func RelationshipAttitudes() extract.Extractor {
	x := extract.Extractor{
		Name:               "relationshipAttitudes",
		Category:           extract.CategoryRelationships,
		DefaultTemperature: 0.5,
		Phase:              extract.PhasePrimitive,
		Messages:           window.FixedNumber{N: 8},
		Trigger:            extract.EveryNMessages{N: 2, Offset: 1},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		var reply attitudesReply
		if err := callOracle(ctx, gen, x, rc, relationshipStateContext(projected), attitudesInstruction, 0, attitudesSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		for _, p := range reply.Pairs {
			pair, ok := validPair(p.A, p.B)
			if !ok {
				continue
			}
			prior, known := projected.LookupRelationship(pair)
			for _, dir := range []struct {
				direction event.Direction
				lists     attitudeLists
			}{
				{event.DirectionAToB, p.AToB},
				{event.DirectionBToA, p.BToA},
			} {
				var priorAtt *snapshot.Attitude
				if known {
					priorAtt = prior.Attitude(pair, dir.direction)
				}
				for _, spec := range []struct {
					addType event.Type
					values  []string
					held    func(*snapshot.Attitude) snapshot.OrderedSet
				}{
					{event.TypeFeelingAdded, dir.lists.Feelings, func(a *snapshot.Attitude) snapshot.OrderedSet { return a.Feelings }},
					{event.TypeWantAdded, dir.lists.Wants, func(a *snapshot.Attitude) snapshot.OrderedSet { return a.Wants }},
					{event.TypeSecretAdded, dir.lists.Secrets, func(a *snapshot.Attitude) snapshot.OrderedSet { return a.Secrets }},
				} {
					for _, value := range spec.values {
						if value == "" {
							continue
						}
						if priorAtt != nil && spec.held(priorAtt).Contains(value) {
							continue
						}
						evt, err := extract.NewEvent(rc.Current, spec.addType, event.AttitudePayload{
							Pair: pair, Direction: dir.direction, Value: value,
						})
						if err != nil {
							return extract.Output{}, err
						}
						out.Events = append(out.Events, evt)
					}
				}
			}
		}
		return out, nil
	}
	return x
}

func validPair(a, b string) ([2]string, bool) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" || snapshot.SameName(a, b) {
		return [2]string{}, false
	}
	return [2]string{a, b}, true
}

// sortedRelationships returns relationship states in pair-key order so
// identical projections render identical prompt state blocks.
func sortedRelationships(projected snapshot.Snapshot) []*snapshot.RelationshipState {
	keys := make([]string, 0, len(projected.Relationships))
	for key := range projected.Relationships {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*snapshot.RelationshipState, 0, len(keys))
	for _, key := range keys {
		out = append(out, projected.Relationships[key])
	}
	return out
}

func relationshipStateContext(projected snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(joinLines("Characters present", projected.CharactersPresent))
	for _, rel := range sortedRelationships(projected) {
		fmt.Fprintf(&b, "%s & %s:", rel.Pair[0], rel.Pair[1])
		if rel.Subject != "" {
			fmt.Fprintf(&b, " subject=%s", rel.Subject)
		}
		if rel.Status != "" {
			fmt.Fprintf(&b, " status=%s", rel.Status)
		}
		b.WriteString("\n")
	}
	return b.String()
}
