package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/reconcile"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

var consolidateCharactersSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"characters": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"values": {"type": "array", "items": {"type": "string"}}
				},
				"required": ["name", "values"],
				"additionalProperties": false
			}
		}
	},
	"required": ["characters"],
	"additionalProperties": false
}`)

type consolidateCharactersReply struct {
	Characters []struct {
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"characters"`
}

const moodConsolidationInstruction = `For each listed character, give the complete, current list of moods,
merging synonyms and dropping moods the excerpt shows have passed.
Reply with JSON: {"characters": [{"name": "", "values": ["..."]}]}`

const physicalConsolidationInstruction = `For each listed character, give the complete, current list of physical
states, merging duplicates and dropping states that have resolved.
Reply with JSON: {"characters": [{"name": "", "values": ["..."]}]}`

// characterListConsolidation builds a consolidation extractor over one
// per-character list. The oracle returns the canonical list; the
// producer emits the set difference as removal and addition events.
func characterListConsolidation(
	name string,
	trigger extract.RunStrategy,
	instruction string,
	pick func(*snapshot.CharacterState) snapshot.OrderedSet,
	removedType, addedType event.Type,
	payload func(character, value string) event.Payload,
) extract.Extractor {
	x := extract.Extractor{
		Name:               name,
		Category:           extract.CategoryCharacters,
		DefaultTemperature: 0.2,
		Phase:              extract.PhaseDerived,
		Messages:           window.FixedNumber{N: 10},
		Trigger:            trigger,
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)

		var state strings.Builder
		tracked := 0
		for _, chName := range projected.CharactersPresent {
			ch, ok := projected.LookupCharacter(chName)
			if !ok || len(pick(ch)) == 0 {
				continue
			}
			fmt.Fprintf(&state, "%s: %s\n", chName, strings.Join(pick(ch), ", "))
			tracked++
		}
		if tracked == 0 {
			return extract.Output{}, nil
		}

		var reply consolidateCharactersReply
		if err := callOracle(ctx, gen, x, rc, state.String(), instruction, 0, consolidateCharactersSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		for _, entry := range reply.Characters {
			ch, ok := projected.LookupCharacter(entry.Name)
			if !ok {
				continue
			}
			removed, added := reconcile.Diff(pick(ch), entry.Values)
			for _, value := range removed {
				evt, err := extract.NewEvent(rc.Current, removedType, payload(entry.Name, value))
				if err != nil {
					return extract.Output{}, err
				}
				out.Events = append(out.Events, evt)
			}
			for _, value := range added {
				evt, err := extract.NewEvent(rc.Current, addedType, payload(entry.Name, value))
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

// MoodConsolidation periodically rewrites mood lists to a canonical
// form, bounding the additive growth of the mood extractor.
func MoodConsolidation() extract.Extractor {
	return characterListConsolidation(
		"moodConsolidation",
		extract.EveryNMessages{N: 6},
		moodConsolidationInstruction,
		func(ch *snapshot.CharacterState) snapshot.OrderedSet { return ch.Mood },
		event.TypeMoodRemoved, event.TypeMoodAdded,
		func(character, value string) event.Payload {
			return event.MoodPayload{Character: character, Mood: value}
		},
	)
}

// PhysicalConsolidation does the same for physical states.
func PhysicalConsolidation() extract.Extractor {
	return characterListConsolidation(
		"physicalConsolidation",
		extract.EveryNMessages{N: 6, Offset: 3},
		physicalConsolidationInstruction,
		func(ch *snapshot.CharacterState) snapshot.OrderedSet { return ch.PhysicalState },
		event.TypePhysicalRemoved, event.TypePhysicalAdded,
		func(character, value string) event.Payload {
			return event.PhysicalPayload{Character: character, State: value}
		},
	)
}

var consolidateAttitudesSchema = extract.MustSchema(`{
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
				"required": ["a", "b", "a_to_b", "b_to_a"],
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

const attitudeConsolidationInstruction = `For each listed pair, give the complete, current directed feelings,
wants, and secrets in each direction, merging synonyms and dropping
entries that no longer hold. Reply with JSON:
{"pairs": [{"a": "", "b": "",
 "a_to_b": {"feelings": [], "wants": [], "secrets": []},
 "b_to_a": {"feelings": [], "wants": [], "secrets": []}}]}`

// AttitudeConsolidation periodically rewrites relationship attitude
// lists, per pair and direction.
func AttitudeConsolidation() extract.Extractor {
	x := extract.Extractor{
		Name:               "attitudeConsolidation",
		Category:           extract.CategoryRelationships,
		DefaultTemperature: 0.2,
		Phase:              extract.PhaseDerived,
		Messages:           window.FixedNumber{N: 10},
		Trigger:            extract.EveryNMessages{N: 8, Offset: 5},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)

		var state strings.Builder
		tracked := 0
		for _, rel := range sortedRelationships(projected) {
			if attitudeEmpty(rel.AToB) && attitudeEmpty(rel.BToA) {
				continue
			}
			fmt.Fprintf(&state, "%s toward %s: %s\n", rel.Pair[0], rel.Pair[1], renderAttitude(rel.AToB))
			fmt.Fprintf(&state, "%s toward %s: %s\n", rel.Pair[1], rel.Pair[0], renderAttitude(rel.BToA))
			tracked++
		}
		if tracked == 0 {
			return extract.Output{}, nil
		}

		var reply attitudesReply
		if err := callOracle(ctx, gen, x, rc, state.String(), attitudeConsolidationInstruction, 0, consolidateAttitudesSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		for _, p := range reply.Pairs {
			pair, ok := validPair(p.A, p.B)
			if !ok {
				continue
			}
			rel, known := projected.LookupRelationship(pair)
			if !known {
				continue
			}
			for _, dir := range []struct {
				direction event.Direction
				lists     attitudeLists
			}{
				{event.DirectionAToB, p.AToB},
				{event.DirectionBToA, p.BToA},
			} {
				held := rel.Attitude(pair, dir.direction)
				for _, spec := range []struct {
					removedType, addedType event.Type
					current                snapshot.OrderedSet
					canonical              []string
				}{
					{event.TypeFeelingRemoved, event.TypeFeelingAdded, held.Feelings, dir.lists.Feelings},
					{event.TypeWantRemoved, event.TypeWantAdded, held.Wants, dir.lists.Wants},
					{event.TypeSecretRemoved, event.TypeSecretAdded, held.Secrets, dir.lists.Secrets},
				} {
					removed, added := reconcile.Diff(spec.current, spec.canonical)
					for _, value := range removed {
						evt, err := extract.NewEvent(rc.Current, spec.removedType, event.AttitudePayload{
							Pair: pair, Direction: dir.direction, Value: value,
						})
						if err != nil {
							return extract.Output{}, err
						}
						out.Events = append(out.Events, evt)
					}
					for _, value := range added {
						evt, err := extract.NewEvent(rc.Current, spec.addedType, event.AttitudePayload{
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

func attitudeEmpty(a snapshot.Attitude) bool {
	return len(a.Feelings) == 0 && len(a.Wants) == 0 && len(a.Secrets) == 0
}

func renderAttitude(a snapshot.Attitude) string {
	var parts []string
	if len(a.Feelings) > 0 {
		parts = append(parts, "feels "+strings.Join(a.Feelings, "/"))
	}
	if len(a.Wants) > 0 {
		parts = append(parts, "wants "+strings.Join(a.Wants, "/"))
	}
	if len(a.Secrets) > 0 {
		parts = append(parts, "hides "+strings.Join(a.Secrets, "/"))
	}
	if len(parts) == 0 {
		return "nothing recorded"
	}
	return strings.Join(parts, "; ")
}
