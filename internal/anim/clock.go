package anim

import "sync/atomic"

// Clock is the monotonic tick counter that drives the scheduler.
//
// Ticks are logical: the sync loop advances the clock once per frame and
// tests advance it directly, so playback never depends on wall time.
//
// Thread-safety: reads are safe from any goroutine (e.g. a status endpoint);
// only the scheduler's goroutine advances it.
type Clock struct {
	tick atomic.Int64
}

// NewClock creates a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at the given tick.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.tick.Store(start)
	return c
}

// Next advances the clock by one tick and returns the new tick.
func (c *Clock) Next() int64 {
	return c.tick.Add(1)
}

// Current returns the current tick without advancing.
func (c *Clock) Current() int64 {
	return c.tick.Load()
}
