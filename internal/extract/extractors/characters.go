package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/extract/window"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/narrative/event"
	"github.com/marisbel/chronicle/internal/narrative/snapshot"
)

var charactersSchema = extract.MustSchema(`{
	"type": "object",
	"properties": {
		"characters": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"position": {"type": "string"},
					"activity": {"type": "string"},
					"moods_added": {"type": "array", "items": {"type": "string"}},
					"physical_added": {"type": "array", "items": {"type": "string"}},
					"outfit_changes": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"slot": {"type": "string"},
								"item": {"type": "string"}
							},
							"required": ["slot"],
							"additionalProperties": false
						}
					}
				},
				"required": ["name"],
				"additionalProperties": false
			}
		}
	},
	"required": ["characters"],
	"additionalProperties": false
}`)

type characterReply struct {
	Characters []struct {
		Name          string   `json:"name"`
		Position      string   `json:"position"`
		Activity      string   `json:"activity"`
		MoodsAdded    []string `json:"moods_added"`
		PhysicalAdded []string `json:"physical_added"`
		OutfitChanges []struct {
			Slot string `json:"slot"`
			Item string `json:"item"`
		} `json:"outfit_changes"`
	} `json:"characters"`
}

const charactersInstruction = `For each character active in this excerpt, report only what CHANGED:
position in the scene, current activity, newly shown moods, newly
acquired physical states (wet, injured, drunk...), and clothing changes
as slot/item pairs (an empty item means the slot was bared). Reply with JSON:
{"characters": [{"name": "", "position": "", "activity": "",
 "moods_added": [], "physical_added": [], "outfit_changes": [{"slot": "", "item": ""}]}]}
Leave fields empty when nothing changed. Skip characters with no changes.`

// Characters tracks per-character observable state. It is purely
// additive; the consolidation extractors prune stale entries later.
func Characters() extract.Extractor {
	x := extract.Extractor{
		Name:               "characters",
		Category:           extract.CategoryCharacters,
		DefaultTemperature: 0.4,
		Phase:              extract.PhasePrimitive,
		Messages:           window.FixedNumber{N: 4},
		Trigger:            extract.EveryMessage{},
	}
	x.Produce = func(ctx context.Context, gen generate.Provider, rc extract.RunContext) (extract.Output, error) {
		projected := rc.Store.ProjectAt(rc.Current.MessageID)
		state := characterStateContext(projected)

		var reply characterReply
		if err := callOracle(ctx, gen, x, rc, state, charactersInstruction, 0, charactersSchema, &reply); err != nil {
			return extract.Output{}, err
		}

		var out extract.Output
		appendEvent := func(t event.Type, payload event.Payload) error {
			evt, err := extract.NewEvent(rc.Current, t, payload)
			if err != nil {
				return err
			}
			out.Events = append(out.Events, evt)
			return nil
		}
		for _, ch := range reply.Characters {
			name := strings.TrimSpace(ch.Name)
			if name == "" {
				continue
			}
			prior, known := projected.LookupCharacter(name)
			if ch.Position != "" && (!known || !snapshot.SameName(prior.Position, ch.Position)) {
				if err := appendEvent(event.TypePositionChanged, event.PositionChangedPayload{Character: name, Position: ch.Position}); err != nil {
					return extract.Output{}, err
				}
			}
			if ch.Activity != "" && (!known || !snapshot.SameName(prior.Activity, ch.Activity)) {
				if err := appendEvent(event.TypeActivityChanged, event.ActivityChangedPayload{Character: name, Activity: ch.Activity}); err != nil {
					return extract.Output{}, err
				}
			}
			for _, mood := range ch.MoodsAdded {
				if mood == "" || (known && prior.Mood.Contains(mood)) {
					continue
				}
				if err := appendEvent(event.TypeMoodAdded, event.MoodPayload{Character: name, Mood: mood}); err != nil {
					return extract.Output{}, err
				}
			}
			for _, ps := range ch.PhysicalAdded {
				if ps == "" || (known && prior.PhysicalState.Contains(ps)) {
					continue
				}
				if err := appendEvent(event.TypePhysicalAdded, event.PhysicalPayload{Character: name, State: ps}); err != nil {
					return extract.Output{}, err
				}
			}
			for _, oc := range ch.OutfitChanges {
				if oc.Slot == "" {
					continue
				}
				if err := appendEvent(event.TypeOutfitChanged, event.OutfitChangedPayload{Character: name, Slot: oc.Slot, Item: oc.Item}); err != nil {
					return extract.Output{}, err
				}
			}
		}
		return out, nil
	}
	return x
}

// characterStateContext renders the known per-character state so the
// oracle reports deltas rather than restating everything.
func characterStateContext(projected snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(joinLines("Characters present", projected.CharactersPresent))
	for _, name := range projected.CharactersPresent {
		ch, ok := projected.LookupCharacter(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:", name)
		if ch.Position != "" {
			fmt.Fprintf(&b, " position=%s", ch.Position)
		}
		if ch.Activity != "" {
			fmt.Fprintf(&b, " activity=%s", ch.Activity)
		}
		if len(ch.Mood) > 0 {
			fmt.Fprintf(&b, " moods=%s", strings.Join(ch.Mood, "/"))
		}
		if len(ch.PhysicalState) > 0 {
			fmt.Fprintf(&b, " physical=%s", strings.Join(ch.PhysicalState, "/"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
