package generate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Gate wraps a provider with a token-bucket limit on requests per
// minute. A new request blocks until a slot is free; cancelling the
// context while waiting surfaces the usual cancellation outcome.
type Gate struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewGate creates a gate allowing requestsPerMinute calls through to
// the inner provider. Zero or negative disables limiting.
func NewGate(inner Provider, requestsPerMinute int) *Gate {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		interval := time.Minute / time.Duration(requestsPerMinute)
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Gate{inner: inner, limiter: limiter}
}

// Name returns the inner provider's name.
func (g *Gate) Name() string {
	return g.inner.Name()
}

// Generate waits for a rate slot, then delegates to the inner
// provider.
func (g *Gate) Generate(ctx context.Context, req Request) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		// The limiter reports context cancellation in its own words;
		// surface the context error so callers can classify it.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return g.inner.Generate(ctx, req)
}
