package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindow is an in-process Limiter. For each key it keeps the
// timestamps of admitted requests that are still inside the window; a
// request is admitted while fewer than limit remain.
//
// Each key has its own mutex. The key map is guarded separately, so
// requests for different keys never wait on each other.
type SlidingWindow struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *SlidingWindow) {
		s.now = now
	}
}

// NewSlidingWindow creates a limiter admitting limit requests per window.
// Non-positive values fall back to the defaults.
func NewSlidingWindow(limit int, win time.Duration, opts ...Option) *SlidingWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if win <= 0 {
		win = DefaultWindow
	}
	s := &SlidingWindow{
		limit:   limit,
		window:  win,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow admits the request when fewer than limit requests for key were
// admitted during the last window.
func (s *SlidingWindow) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	w := s.get(key)
	w.mu.Lock()
	defer w.mu.Unlock()

	now := s.now()
	w.prune(now.Add(-s.window))

	if len(w.timestamps) >= s.limit {
		resetAt := w.timestamps[0].Add(s.window)
		return Result{
			Allowed:    false,
			Limit:      s.limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	w.timestamps = append(w.timestamps, now)
	return Result{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - len(w.timestamps),
		ResetAt:   w.timestamps[0].Add(s.window),
	}, nil
}

// Sweep drops keys with no timestamps inside the window ending at now.
// It returns the number of keys removed.
func (s *SlidingWindow) Sweep(now time.Time) int {
	cutoff := now.Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		w.mu.Lock()
		w.prune(cutoff)
		idle := len(w.timestamps) == 0
		w.mu.Unlock()
		if idle {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle keys every interval until ctx is done.
func (s *SlidingWindow) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

// Keys returns the number of tracked keys.
func (s *SlidingWindow) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

func (s *SlidingWindow) get(key string) *window {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &window{}
		s.windows[key] = w
	}
	return w
}

// prune drops timestamps at or before cutoff. Timestamps are in
// admission order, so the expired ones form a prefix.
func (w *window) prune(cutoff time.Time) {
	i := 0
	for ; i < len(w.timestamps); i++ {
		if w.timestamps[i].After(cutoff) {
			break
		}
	}
	w.timestamps = w.timestamps[i:]
}
