// Package extractors provides the built-in extraction roster: the
// primitive per-turn extractors and the derived consolidation,
// confirmation, and chapter tasks layered on top of them.
package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/marisbel/chronicle/internal/extract"
	"github.com/marisbel/chronicle/internal/generate"
	"github.com/marisbel/chronicle/internal/lore"
)

const (
	defaultMaxReplyTokens = 500
	chapterMaxReplyTokens = 900
)

const systemPreamble = "You are a precise story analyst. Read the transcript excerpt " +
	"and answer with a single JSON object that matches the requested shape exactly. " +
	"Do not add commentary outside the JSON."

// callOracle assembles the standard prompt (windowed transcript, lore
// matches, current-state context, task instruction), invokes the
// generator, and decodes the JSON reply into target. The instruction
// honors per-extractor custom prompt overrides.
func callOracle(ctx context.Context, gen generate.Provider, x extract.Extractor, rc extract.RunContext, stateContext, instruction string, maxTokens int, schema *jsonschema.Schema, target any) error {
	r := x.Window(rc)
	transcript := rc.Chat.Window(r.Start, r.End)

	var b strings.Builder
	if matched := lore.Render(rc.Lore.Match(transcript, nil)); matched != "" {
		b.WriteString("World info:\n")
		b.WriteString(matched)
		b.WriteString("\n")
	}
	if stateContext != "" {
		b.WriteString("Current state:\n")
		b.WriteString(stateContext)
		b.WriteString("\n")
	}
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	b.WriteString("\n")
	b.WriteString(rc.Settings.PromptFor(x.Name, instruction))

	if maxTokens <= 0 {
		maxTokens = defaultMaxReplyTokens
	}
	reply, err := gen.Generate(ctx, generate.Request{
		Messages: []generate.Message{
			{Role: generate.RoleSystem, Content: systemPreamble},
			{Role: generate.RoleUser, Content: b.String()},
		},
		Temperature: x.Temperature(rc),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return err
	}
	return extract.DecodeReply(reply, schema, target)
}

// joinLines formats a labeled list for a state-context block.
func joinLines(label string, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s\n", label, strings.Join(items, ", "))
}
