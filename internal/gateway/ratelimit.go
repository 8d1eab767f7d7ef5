package gateway

import (
	"sync"
	"time"
)

// Limiter is a fixed-window request limiter keyed by client. When a
// client exhausts its window the remaining seconds until reset are
// reported, which the chat handler surfaces as the 429 remainingTime
// payload.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	clients map[string]*windowState
	now     func() time.Time
}

type windowState struct {
	start time.Time
	count int
}

// NewLimiter allows max requests per client within each window.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		clients: make(map[string]*windowState),
		now:     time.Now,
	}
}

// Allow records one request for the client. It returns true when the
// request fits the current window, or false plus the whole seconds
// until the window resets.
func (l *Limiter) Allow(client string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.clients[client]
	if !ok || now.Sub(state.start) >= l.window {
		l.clients[client] = &windowState{start: now, count: 1}
		return true, 0
	}

	if state.count < l.max {
		state.count++
		return true, 0
	}

	remaining := int((state.start.Add(l.window).Sub(now) + time.Second - 1) / time.Second)
	return false, remaining
}
