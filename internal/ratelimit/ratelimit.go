// Package ratelimit keeps one token bucket per authenticated user of the
// sync API.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Registry hands out a rate.Limiter per user ID. A nil *Registry allows
// every request.
type Registry struct {
	limit rate.Limit
	burst int

	mu       sync.RWMutex
	limiters map[int64]*rate.Limiter

	now func() time.Time
}

// New returns a registry that lets each user send rps requests per second
// with bursts of up to burst requests. It returns nil when rps is not
// positive, which disables limiting. A burst below one is raised to the
// rounded-up rate.
func New(rps float64, burst int) *Registry {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = int(math.Ceil(rps))
	}

	return &Registry{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[int64]*rate.Limiter),
		now:      time.Now,
	}
}

// Allow takes one token from the bucket of userID. When the bucket is empty
// it reports false and how long the caller should wait before retrying.
func (r *Registry) Allow(userID int64) (bool, time.Duration) {
	if r == nil {
		return true, 0
	}

	now := r.now()
	limiter := r.get(userID)
	if limiter.AllowN(now, 1) {
		return true, 0
	}

	reservation := limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)

	return false, delay
}

// Len returns the number of users seen so far.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}

func (r *Registry) get(userID int64) *rate.Limiter {
	r.mu.RLock()
	limiter, ok := r.limiters[userID]
	r.mu.RUnlock()
	if ok {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, ok := r.limiters[userID]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(r.limit, r.burst)
	r.limiters[userID] = limiter

	return limiter
}
