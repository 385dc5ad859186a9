// Package ratelimit bounds how many events of each name one websocket
// connection may send per window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts events per name and forgets all counts every window. Each
// connection owns one; Stop must be called when the connection goes away.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int
	window time.Duration

	quit     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter and starts its reset ticker.
func New(window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		counts: make(map[string]int),
		window: window,
		quit:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Limiter) run() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.quit:
			return
		case <-ticker.C:
			l.Reset()
		}
	}
}

// Allow records one event and reports whether it is within limit.
// Denied events are not counted.
func (l *Limiter) Allow(event string, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.counts[event] >= limit {
		return false
	}
	l.counts[event]++
	return true
}

// Count returns how many events of this name were allowed in the current window.
func (l *Limiter) Count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[event]
}

// Reset clears all counters.
func (l *Limiter) Reset() {
	l.mu.Lock()
	clear(l.counts)
	l.mu.Unlock()
}

// Stop ends the reset ticker and drops the counters. Safe to call twice.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
		l.Reset()
	})
}
