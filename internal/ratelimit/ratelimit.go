// Package ratelimit paces outgoing connection attempts with a token bucket.
//
// The prober uses it to cap how many endpoints are dialled per second, on
// top of the bound the worker pool puts on concurrency.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// Limiter is a token bucket holding at most one second worth of events.
// A nil *Limiter never blocks.
type Limiter struct {
	rate       float64 // events per second
	burst      float64
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// New returns a Limiter allowing perSecond events per second, or nil if
// perSecond is not positive.
func New(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := math.Max(perSecond, 1)
	return &Limiter{
		rate:       perSecond,
		burst:      burst,
		tokens:     burst,
		lastUpdate: time.Now(),
	}
}

// Rate returns the configured events per second; zero for a nil Limiter.
func (rl *Limiter) Rate() float64 {
	if rl == nil {
		return 0
	}
	return rl.rate
}

// reserve takes one token and returns how long the caller must wait before
// the event may happen. The token may go negative; later callers then queue
// behind it.
func (rl *Limiter) reserve(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	elapsed := now.Sub(rl.lastUpdate).Seconds()
	if elapsed > 0 {
		rl.tokens = math.Min(rl.burst, rl.tokens+elapsed*rl.rate)
		rl.lastUpdate = now
	}

	rl.tokens--
	if rl.tokens >= 0 {
		return 0
	}
	return time.Duration(-rl.tokens / rl.rate * float64(time.Second))
}

// cancel returns a token taken by reserve.
func (rl *Limiter) cancel() {
	rl.mu.Lock()
	rl.tokens = math.Min(rl.burst, rl.tokens+1)
	rl.mu.Unlock()
}

// Wait blocks until one event is allowed or ctx is done.
func (rl *Limiter) Wait(ctx context.Context) error {
	if rl == nil {
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d := rl.reserve(time.Now())
	if d == 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		rl.cancel()
		return ctx.Err()
	}
}
