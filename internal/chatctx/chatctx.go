// Package chatctx models the host chat application's side of the
// boundary: the raw transcript, the character roster, and canonical
// swipe resolution.
package chatctx

import "strings"

// Message is one transcript turn as the host application supplies it.
type Message struct {
	Text     string `json:"mes"`
	IsUser   bool   `json:"is_user"`
	IsSystem bool   `json:"is_system"`
	Name     string `json:"name,omitempty"`
}

// Context is the transcript and identity information the host chat
// application exposes to the engine.
type Context struct {
	// Messages is the append-only transcript in turn order.
	Messages []Message
	// Characters lists the roster character names.
	Characters []string
	// CharacterID indexes the active character in Characters.
	CharacterID int
	// UserName is the persona name speaking user turns.
	UserName string
	// CharacterName is the active character speaking model turns.
	CharacterName string
	// Persona is the optional user persona description.
	Persona string
	// CanonicalSwipe resolves the active alternate generation for a
	// message. Nil means every message uses swipe 0.
	CanonicalSwipe func(messageID int) int
}

// SwipeFor returns the canonical swipe id for the message, defaulting
// to 0 when unresolved.
func (c *Context) SwipeFor(messageID int) int {
	if c == nil || c.CanonicalSwipe == nil {
		return 0
	}
	return c.CanonicalSwipe(messageID)
}

// SpeakerFor returns the display name for a transcript message,
// falling back to the persona and character names.
func (c *Context) SpeakerFor(msg Message) string {
	if strings.TrimSpace(msg.Name) != "" {
		return msg.Name
	}
	if msg.IsUser {
		return c.UserName
	}
	return c.CharacterName
}

// Window renders the transcript slice [start, end] as dialogue lines
// for a prompt. Out-of-range bounds are clamped; system messages are
// skipped.
func (c *Context) Window(start, end int) string {
	if c == nil || len(c.Messages) == 0 {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end >= len(c.Messages) {
		end = len(c.Messages) - 1
	}
	var b strings.Builder
	for i := start; i <= end; i++ {
		msg := c.Messages[i]
		if msg.IsSystem {
			continue
		}
		b.WriteString(c.SpeakerFor(msg))
		b.WriteString(": ")
		b.WriteString(msg.Text)
		b.WriteString("\n")
	}
	return b.String()
}
