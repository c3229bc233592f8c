package edgar

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond stays well under the SEC fair-access ceiling.
const DefaultRequestsPerSecond = 2.0

// RateLimiter paces requests to EDGAR with a token bucket and honours
// Retry-After backoff after a 429.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second.
// A non-positive rps disables pacing.
func NewRateLimiter(rps float64) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimited sets a backoff from a Retry-After header value,
// defaulting to ten seconds when it is missing or unparseable.
func (r *RateLimiter) RecordRateLimited(retryAfter string) {
	secs, err := strconv.Atoi(retryAfter)
	if err != nil || secs <= 0 {
		secs = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(time.Duration(secs) * time.Second)
}
