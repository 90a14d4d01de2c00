package service

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/pkg/cmap"
)

// RateLimiterRegistry keeps one token bucket per client key (usually the
// client IP). Buckets idle for longer than the idle TTL are pruned.
type RateLimiterRegistry struct {
	limiters *cmap.Map[*limiterEntry]
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration

	now func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewRateLimiterRegistry creates a registry allowing rps requests per second
// with the given burst per key.
func NewRateLimiterRegistry(rps float64, burst int) *RateLimiterRegistry {
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &RateLimiterRegistry{
		limiters: cmap.New[*limiterEntry](),
		limit:    rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Check consumes one token for key. When the bucket is empty it returns
// domain.ErrRateLimited and the delay until a token becomes available.
func (r *RateLimiterRegistry) Check(key string) (time.Duration, error) {
	limiter := r.getOrCreate(key)

	now := r.now()
	if limiter.AllowN(now, 1) {
		return 0, nil
	}

	reservation := limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)

	return delay, domain.ErrRateLimited.WithDetails("rate limit exceeded, retry after " + delay.Round(time.Millisecond).String())
}

func (r *RateLimiterRegistry) getOrCreate(key string) *rate.Limiter {
	entry := r.limiters.GetOrCreate(key, func() *limiterEntry {
		return &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
	})
	entry.lastSeen.Store(r.now().UnixNano())
	return entry.limiter
}

// Prune removes buckets idle for longer than the idle TTL and returns how
// many were removed.
func (r *RateLimiterRegistry) Prune() int {
	cutoff := r.now().Add(-r.idleTTL).UnixNano()
	return r.limiters.DeleteFunc(func(_ string, entry *limiterEntry) bool {
		return entry.lastSeen.Load() < cutoff
	})
}

// Len returns the number of tracked keys.
func (r *RateLimiterRegistry) Len() int {
	return r.limiters.Len()
}
