package retry

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum delay before every call to Wait and a minimum spacing
// between the moments successive callers are released, across goroutines.
type Pacer struct {
	now   func() time.Time
	sleep Sleeper
	last  time.Time
	delay time.Duration
	mu    sync.Mutex
}

// NewPacer creates a pacer. Nil now/sleep fall back to the wall clock.
func NewPacer(delay time.Duration, now func() time.Time, sleep Sleeper) *Pacer {
	if now == nil {
		now = time.Now
	}

	if sleep == nil {
		sleep = SleepContext
	}

	return &Pacer{now: now, sleep: sleep, delay: delay}
}

// Wait blocks until this caller's slot: at least delay from now and at least delay after the previous slot.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := p.now()

	slot := now.Add(p.delay)
	if next := p.last.Add(p.delay); next.After(slot) {
		slot = next
	}

	prev := p.last
	p.last = slot
	p.mu.Unlock()

	if err := p.sleep(ctx, slot.Sub(now)); err != nil {
		p.release(slot, prev)

		return err
	}

	return nil
}

// release hands an abandoned slot back when no later caller has booked after it.
func (p *Pacer) release(slot, prev time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last.Equal(slot) {
		p.last = prev
	}
}
