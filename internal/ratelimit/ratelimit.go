// Package ratelimit provides per-client fixed-window request limiting.
//
// The store is an interface so a single-instance deployment can use the
// in-memory map while a multi-instance one can swap in an external cache
// without touching the gate.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter int // seconds remaining in the client's window when rejected
}

// Store records one request for a client and decides whether it is allowed.
type Store interface {
	Take(ctx context.Context, clientID string) (Decision, error)
}

type record struct {
	windowStart time.Time
	requests    int
}

// Memory is a process-local Store. Records are swept lazily: every Take
// drops entries whose window has fully elapsed.
type Memory struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	records map[string]record
}

// NewMemory returns a Memory store allowing max requests per window.
func NewMemory(window time.Duration, max int) *Memory {
	return &Memory{
		window:  window,
		max:     max,
		now:     time.Now,
		records: make(map[string]record),
	}
}

// Take registers a request from clientID and reports whether it is within
// the window's budget. Counting resets whenever a full window has elapsed
// since the client's first request in the current window.
func (m *Memory) Take(_ context.Context, clientID string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.records {
		if now.Sub(rec.windowStart) >= m.window {
			delete(m.records, id)
		}
	}

	rec, ok := m.records[clientID]
	if !ok || now.Sub(rec.windowStart) >= m.window {
		m.records[clientID] = record{windowStart: now, requests: 1}
		return Decision{Allowed: true}, nil
	}

	rec.requests++
	m.records[clientID] = rec
	if rec.requests > m.max {
		remaining := m.window - now.Sub(rec.windowStart)
		retryAfter := int(math.Ceil(remaining.Seconds()))
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true}, nil
}
