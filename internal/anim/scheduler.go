package anim

import (
	"slices"
)

// Default conversion from element delays to ticks.
const (
	DefaultScale    = 10
	DefaultOverhead = 2
)

// EventKind distinguishes scheduler trace events.
type EventKind int

const (
	EventActivated EventKind = iota + 1
	EventFinished
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventFinished:
		return "finished"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is reported to the scheduler's observer.
type Event struct {
	Kind   EventKind
	Tick   int64
	Label  string
	Target any
}

// Scheduler runs animations against a tick clock.
//
// Per tick, in order: animations whose duration has elapsed finish (in
// activation order), pending animations whose start tick has arrived
// activate (in start order, then scheduling order), and every active
// animation receives a frame.
//
// Not safe for concurrent use: the session drives it from one goroutine.
type Scheduler struct {
	clock    *Clock
	scale    int64
	overhead int64
	observer func(Event)

	pending []*Animation
	running []*Animation
	active  map[any]*Animation
	seq     int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithScale sets the divisor converting element delays to ticks.
func WithScale(scale int64) Option {
	return func(s *Scheduler) {
		if scale > 0 {
			s.scale = scale
		}
	}
}

// WithOverhead sets the fixed number of ticks added between chained elements.
func WithOverhead(overhead int64) Option {
	return func(s *Scheduler) {
		if overhead >= 0 {
			s.overhead = overhead
		}
	}
}

// WithClock uses an existing clock, e.g. one positioned at a known tick.
func WithClock(c *Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithObserver registers a callback receiving every activation,
// completion and cancellation.
func WithObserver(fn func(Event)) Option {
	return func(s *Scheduler) {
		s.observer = fn
	}
}

// NewScheduler creates a scheduler with DefaultScale and DefaultOverhead.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:    NewClock(),
		scale:    DefaultScale,
		overhead: DefaultOverhead,
		active:   make(map[any]*Animation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current tick.
func (s *Scheduler) Now() int64 {
	return s.clock.Current()
}

// Duration converts an element delay to ticks.
func (s *Scheduler) Duration(delay int64) int64 {
	return delay / s.scale
}

// Step returns how far the start tick advances after an element with the
// given delay, so that chained animations play back to back.
func (s *Scheduler) Step(delay int64) int64 {
	return s.Duration(delay) + s.overhead
}

// Schedule queues a to activate at a.Start. Nothing runs until the clock
// reaches that tick (see Advance and Flush).
func (s *Scheduler) Schedule(a *Animation) {
	a.state = statePending
	s.seq++
	a.scheduled = s.seq
	i, _ := slices.BinarySearchFunc(s.pending, a, func(p, t *Animation) int {
		if p.Start != t.Start {
			if p.Start < t.Start {
				return -1
			}
			return 1
		}
		if p.scheduled < t.scheduled {
			return -1
		}
		return 1
	})
	s.pending = slices.Insert(s.pending, i, a)
}

// Start activates a immediately at the current tick, cancelling whatever
// is playing on the same target.
func (s *Scheduler) Start(a *Animation) {
	a.Start = s.Now()
	s.Schedule(a)
	s.process()
}

// Flush processes the current tick without advancing the clock.
func (s *Scheduler) Flush() {
	s.process()
}

// Advance moves the clock forward n ticks, processing each one.
func (s *Scheduler) Advance(n int64) {
	for i := int64(0); i < n; i++ {
		s.clock.Next()
		s.process()
	}
}

// Drain processes the current tick and advances until no animation is
// pending or active, or until limit ticks have passed. It reports whether
// the scheduler went idle.
func (s *Scheduler) Drain(limit int64) bool {
	s.process()
	for i := int64(0); i < limit && !s.Idle(); i++ {
		s.Advance(1)
	}
	return s.Idle()
}

// Idle reports whether nothing is pending or active.
func (s *Scheduler) Idle() bool {
	return len(s.pending) == 0 && len(s.running) == 0
}

// Active returns the animation playing on target, if any.
func (s *Scheduler) Active(target any) (*Animation, bool) {
	a, ok := s.active[target]
	return a, ok
}

func (s *Scheduler) process() {
	now := s.Now()
	for {
		progressed := s.finishDue(now)
		if s.activateDue(now) {
			progressed = true
		}
		if !progressed {
			break
		}
	}
	for _, a := range s.running {
		if a.Frame != nil {
			a.Frame(now-(a.end-s.Duration(a.Delay)), s.Duration(a.Delay))
		}
	}
}

func (s *Scheduler) finishDue(now int64) bool {
	progressed := false
	for i := 0; i < len(s.running); {
		a := s.running[i]
		if a.end > now {
			i++
			continue
		}
		s.running = slices.Delete(s.running, i, i+1)
		if s.active[a.Target] == a {
			delete(s.active, a.Target)
		}
		a.state = stateDone
		if a.Finish != nil {
			a.Finish()
		}
		s.emit(EventFinished, now, a)
		if a.OnDone != nil {
			a.OnDone()
		}
		progressed = true
	}
	return progressed
}

func (s *Scheduler) activateDue(now int64) bool {
	progressed := false
	for len(s.pending) > 0 && s.pending[0].Start <= now {
		a := s.pending[0]
		s.pending = slices.Delete(s.pending, 0, 1)

		if prev, ok := s.active[a.Target]; ok {
			s.cancel(prev, now)
		}
		a.state = stateActive
		a.end = now + s.Duration(a.Delay)
		s.active[a.Target] = a
		s.running = append(s.running, a)
		s.emit(EventActivated, now, a)
		progressed = true

		// Zero-length animations finish on the tick they start, before
		// anything scheduled after them activates.
		if a.end <= now {
			s.finishDue(now)
		}
	}
	return progressed
}

func (s *Scheduler) cancel(a *Animation, now int64) {
	if i := slices.Index(s.running, a); i >= 0 {
		s.running = slices.Delete(s.running, i, i+1)
	}
	delete(s.active, a.Target)
	a.state = stateCancelled
	s.emit(EventCancelled, now, a)
	if a.OnCancel != nil {
		a.OnCancel()
	}
}

func (s *Scheduler) emit(kind EventKind, tick int64, a *Animation) {
	if s.observer != nil {
		s.observer(Event{Kind: kind, Tick: tick, Label: a.Label, Target: a.Target})
	}
}
