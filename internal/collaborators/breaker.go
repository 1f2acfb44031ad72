// Package collaborators implements the HTTP/WebSocket clients to the
// external market-data and block-explorer providers spec.md treats as
// out-of-scope collaborators: request/response shape, rate limiting,
// and circuit breaking around them, not their internal wire formats.
package collaborators

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/sawpanic/marketintel/internal/apperrors"
	"github.com/sawpanic/marketintel/internal/config"
)

// newBreaker builds a gobreaker.CircuitBreaker from CollaboratorConfig,
// tripping on consecutive failures the same way the teacher's provider
// manager does, generalized to a single named collaborator rather than
// a whole fallback-chain registry (this domain has exactly two
// upstreams: market data and the block explorer, not an exchange
// fallback chain).
func newBreaker(name string, cfg config.CollaboratorConfig) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    time.Duration(cfg.BreakerIntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.BreakerTimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerConsecutiveFailures
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// wrapBreaker executes fn through the breaker. A breaker-open or
// too-many-requests rejection (the breaker's own sentinel errors, not
// one surfaced by fn) is translated to apperrors.TransientUpstream;
// errors returned by fn itself pass through unchanged.
func wrapBreaker[T any](breaker *gobreaker.CircuitBreaker, source string, fn func() (T, error)) (T, error) {
	var zero T
	raw, err := breaker.Execute(func() (interface{}, error) {
		v, innerErr := fn()
		return v, innerErr
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return zero, &apperrors.TransientUpstream{Source: source, Err: err}
		}
		return zero, err
	}
	return raw.(T), nil
}
