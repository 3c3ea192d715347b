package ratelimiter

import (
	"sync"
	"time"
)

// Limiter counts failures per key inside a sliding window. It backs the
// lockout on repeated invalid session tokens; successful requests are never
// recorded, so normal traffic is unaffected.
type Limiter struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	failures    map[string][]time.Time
	stop        chan struct{}
	stopped     bool
}

// New creates a limiter that blocks a key after maxFailures failures within
// the window. A background sweep drops idle keys.
func New(maxFailures int, window time.Duration) *Limiter {
	l := &Limiter{
		maxFailures: maxFailures,
		window:      window,
		failures:    make(map[string][]time.Time),
		stop:        make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Blocked reports whether the key has reached the failure limit
func (l *Limiter) Blocked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.prune(key, time.Now())
	return len(valid) >= l.maxFailures
}

// Record registers one failure for the key
func (l *Limiter) Record(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.prune(key, time.Now())
	l.failures[key] = append(valid, time.Now())
}

// Reset clears the key, typically after a successful attempt
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
}

// RetryAfter returns the seconds until the oldest counted failure leaves the
// window, for the Retry-After response header. Zero when the key is not
// blocked.
func (l *Limiter) RetryAfter(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.prune(key, time.Now())
	if len(valid) < l.maxFailures {
		return 0
	}

	remaining := time.Until(valid[0].Add(l.window))
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// prune drops entries outside the window. Caller holds the lock. Entries are
// appended in order, so the slice stays sorted oldest first.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	entries := l.failures[key]

	idx := 0
	for idx < len(entries) && !entries[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		entries = entries[idx:]
		if len(entries) == 0 {
			delete(l.failures, key)
		} else {
			l.failures[key] = entries
		}
	}
	return entries
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key := range l.failures {
				l.prune(key, now)
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the background sweep. Safe to call more than once.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		close(l.stop)
		l.stopped = true
	}
}
