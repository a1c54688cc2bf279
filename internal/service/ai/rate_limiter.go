package ai

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultRateLimit is the default number of provider calls per minute.
const DefaultRateLimit = 60

// RateLimiter paces outgoing provider calls. It is process-wide and separate
// from the per-caller daily quota.
type RateLimiter struct {
	mu      sync.RWMutex
	limit   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing perMinute calls per minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{}
	rl.SetLimit(perMinute)
	return rl
}

// GetLimit returns the current calls-per-minute limit.
func (r *RateLimiter) GetLimit() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limit
}

// SetLimit replaces the limit; values <= 0 fall back to DefaultRateLimit.
func (r *RateLimiter) SetLimit(perMinute int) {
	if perMinute <= 0 {
		perMinute = DefaultRateLimit
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = perMinute
	every := rate.Limit(float64(perMinute) / 60.0)
	if r.limiter == nil {
		r.limiter = rate.NewLimiter(every, perMinute)
		return
	}
	r.limiter.SetLimit(every)
	r.limiter.SetBurst(perMinute)
}

// Wait blocks until a call is permitted or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.RLock()
	limiter := r.limiter
	r.mu.RUnlock()
	return limiter.Wait(ctx)
}
