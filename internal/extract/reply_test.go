package extract

import (
	"testing"

	apperrors "github.com/marisbel/chronicle/internal/errors"
)

var replyTestSchema = MustSchema(`{
	"type": "object",
	"properties": {
		"topic": {"type": "string"},
		"level": {"type": "integer"}
	},
	"required": ["topic"],
	"additionalProperties": false
}`)

type replyTestTarget struct {
	Topic string `json:"topic"`
	Level int    `json:"level"`
}

func TestDecodeReply(t *testing.T) {
	var target replyTestTarget
	err := DecodeReply(`{"topic": "the storm", "level": 3}`, replyTestSchema, &target)
	if err != nil {
		t.Fatalf("DecodeReply returned error: %v", err)
	}
	if target.Topic != "the storm" || target.Level != 3 {
		t.Fatalf("target = %+v", target)
	}
}

func TestDecodeReplyStripsFences(t *testing.T) {
	var target replyTestTarget
	reply := "```json\n{\"topic\": \"the storm\"}\n```"
	if err := DecodeReply(reply, replyTestSchema, &target); err != nil {
		t.Fatalf("DecodeReply returned error: %v", err)
	}
	if target.Topic != "the storm" {
		t.Fatalf("topic = %q", target.Topic)
	}
}

func TestDecodeReplyMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"not json":         "Sure! The topic is the storm.",
		"missing required": `{"level": 3}`,
		"extra field":      `{"topic": "x", "bogus": true}`,
		"wrong type":       `{"topic": "x", "level": "three"}`,
	}
	for name, reply := range cases {
		var target replyTestTarget
		err := DecodeReply(reply, replyTestSchema, &target)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !apperrors.IsCode(err, apperrors.CodeMalformedReply) {
			t.Fatalf("%s: error code = %v, want malformed reply", name, apperrors.GetCode(err))
		}
	}
}
