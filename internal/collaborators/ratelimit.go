package collaborators

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sawpanic/marketintel/internal/config"
)

// newLimiter builds a token-bucket limiter sized to
// CollaboratorConfig.RateLimitPerSecond, burst equal to one second's
// worth of requests (at least 1).
func newLimiter(cfg config.CollaboratorConfig) *rate.Limiter {
	burst := int(cfg.RateLimitPerSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), burst)
}

// waitForSlot blocks until the limiter admits the call or ctx is done.
func waitForSlot(ctx context.Context, limiter *rate.Limiter) error {
	return limiter.Wait(ctx)
}
