package extract

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	apperrors "github.com/marisbel/chronicle/internal/errors"
)

// MustSchema compiles a JSON schema used to validate oracle replies.
// Schemas are package constants, so compilation failure is a
// programmer error.
func MustSchema(schemaJSON string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		panic("parse reply schema: " + err.Error())
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("reply.json", doc); err != nil {
		panic("add reply schema: " + err.Error())
	}
	schema, err := compiler.Compile("reply.json")
	if err != nil {
		panic("compile reply schema: " + err.Error())
	}
	return schema
}

// DecodeReply parses an oracle reply into target, validating against
// the schema when one is given. Malformed replies are routine with an
// unreliable oracle: the returned error carries CodeMalformedReply so
// callers can recover it as "no events" plus a diagnostic.
func DecodeReply(reply string, schema *jsonschema.Schema, target any) error {
	text := stripFences(reply)
	if strings.TrimSpace(text) == "" {
		return apperrors.New(apperrors.CodeMalformedReply, "oracle reply is empty")
	}

	instance, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeMalformedReply, "oracle reply is not valid json", err)
	}
	if schema != nil {
		if err := schema.Validate(instance); err != nil {
			return apperrors.Wrap(apperrors.CodeMalformedReply, "oracle reply failed validation", err)
		}
	}
	if err := json.Unmarshal([]byte(text), target); err != nil {
		return apperrors.Wrap(apperrors.CodeMalformedReply, "oracle reply does not match expected shape", err)
	}
	return nil
}

// stripFences unwraps a Markdown code fence if the model added one.
func stripFences(reply string) string {
	text := strings.TrimSpace(reply)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
