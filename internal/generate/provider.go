// Package generate wraps the generative text model the engine uses as
// an unreliable, rate-limited oracle.
package generate

import (
	"context"
	"errors"
)

// Roles for prompt messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one prompt message.
type Message struct {
	Role    string
	Content string
}

// Request is a single oracle call.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Provider is the interface for text-generation backends.
type Provider interface {
	// Name returns the provider name for logging.
	Name() string
	// Generate sends a prompt and returns the raw response text. It
	// may fail or be cancelled; callers recover both as "no events".
	Generate(ctx context.Context, req Request) (string, error)
}

// IsCancellation reports whether the error is the distinguished
// cancellation outcome, so callers can avoid retry-on-cancel. A missed
// deadline is an ordinary failure, not a cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
