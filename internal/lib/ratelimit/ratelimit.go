// Package ratelimit admits or rejects requests per key within a fixed
// quota. The Redis limiter is shared by every replica; the memory limiter
// is for single-process deployments and tests.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of one Limit call.
type Result struct {
	Success   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter counts one request against key.
type Limiter interface {
	Limit(ctx context.Context, key string) (*Result, error)
}

// Quota is the number of requests allowed per window.
type Quota struct {
	Requests int
	Window   time.Duration
}
