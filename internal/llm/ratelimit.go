package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider is a decorator that caps the request rate of the
// wrapped provider. Callers block until a token is available or their
// context ends.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p with a token bucket limiter. A config with zero
// RequestsPerMinute returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.RequestsPerMinute <= 0 {
		return p
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return &RateLimitProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &ErrRateLimit{Err: fmt.Errorf("local request budget: %w", err)}
	}
	return r.inner.Generate(ctx, req)
}

func (r *RateLimitProvider) Name() string {
	return r.inner.Name()
}

func (r *RateLimitProvider) ModelID() string {
	return r.inner.ModelID()
}
