package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key. The bucket holds
// quota.Requests tokens and refills one every Window/Requests.
type MemoryLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	quota       Quota
	lastCleanup time.Time
	now         func() time.Time
}

func NewMemoryLimiter(quota Quota) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		quota:    quota,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Limit(_ context.Context, key string) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	v, ok := l.visitors[key]
	if !ok {
		every := l.quota.Window / time.Duration(l.quota.Requests)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), l.quota.Requests)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Success:   allowed,
		Limit:     l.quota.Requests,
		Remaining: remaining,
		Reset:     now.Add(l.quota.Window),
	}, nil
}

// cleanup drops buckets idle for a full window; they would be full again.
func (l *MemoryLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < l.quota.Window {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.quota.Window {
			delete(l.visitors, key)
		}
	}
	l.lastCleanup = now
}
