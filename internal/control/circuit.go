// Package control protects the polling loop from hammering a failing
// upstream.
package control

import "time"

// Breaker opens after a run of consecutive failures and allows a single
// probe once the cooldown has elapsed. Not safe for concurrent use; the
// poll loop is its only caller.
type Breaker struct {
	threshold int
	cooldown  time.Duration

	consecutive int
	openedAt    time.Time
	opened      bool
}

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and cools down for the given duration.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{threshold: threshold, cooldown: cooldown}
}

// Open reports whether the breaker is currently open.
func (b *Breaker) Open() bool {
	return b.opened
}

// Allow reports whether work may proceed at this instant. While open, it
// permits one probe attempt per elapsed cooldown window.
func (b *Breaker) Allow(now time.Time) bool {
	if !b.opened {
		return true
	}
	if now.Sub(b.openedAt) >= b.cooldown {
		// Probe; a failure re-arms the cooldown via Failure.
		return true
	}
	return false
}

// Success records a successful operation and closes the breaker.
func (b *Breaker) Success() {
	b.consecutive = 0
	b.opened = false
}

// Failure records a failed operation, opening the breaker once the
// consecutive-failure threshold is reached.
func (b *Breaker) Failure(now time.Time) {
	b.consecutive++
	if b.consecutive >= b.threshold {
		b.opened = true
		b.openedAt = now
	}
}
