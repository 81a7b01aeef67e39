// Package ratelimit admits or rejects requests per key over a sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Defaults for the public API.
const (
	DefaultLimit  = 100
	DefaultWindow = 60 * time.Second
)

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether the next request for key is admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
