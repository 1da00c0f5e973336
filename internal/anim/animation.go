// Package anim schedules the timed animations produced by replaying
// sequence elements.
//
// An element's Apply returns an Animation: a description of what to play
// and which mutation to perform when it finishes. Nothing happens until the
// Scheduler runs it. The scheduler chains animations by start tick and keeps
// at most one active animation per target entity; activating a second one on
// the same target cancels the first (last writer wins, no queuing).
package anim

// Animation is the playback descriptor for one element.
type Animation struct {
	// Target is the entity the animation runs on (a unit, or the game for
	// game-wide elements). Must be comparable.
	Target any

	// Label names the animation in traces.
	Label string

	// Start is the tick at which the animation becomes active.
	Start int64

	// Delay is the intrinsic duration in element time units. The scheduler
	// converts it to ticks with its scale.
	Delay int64

	// Frame is called on every tick while the animation is active, with
	// the ticks elapsed since activation and the total duration. Optional.
	Frame func(elapsed, total int64)

	// Finish performs the mutation the animation stands for. Optional.
	Finish func()

	// OnDone runs after Finish. The scheduler never calls it for a
	// cancelled animation.
	OnDone func()

	// OnCancel runs when a later animation on the same target cancels this
	// one. Finish and OnDone are then never called.
	OnCancel func()

	end       int64
	state     state
	scheduled int64
}

type state int

const (
	statePending state = iota
	stateActive
	stateDone
	stateCancelled
)

// Cancelled reports whether the animation was cancelled by a later one on
// the same target.
func (a *Animation) Cancelled() bool { return a.state == stateCancelled }

// Done reports whether the animation finished normally.
func (a *Animation) Done() bool { return a.state == stateDone }

// Active reports whether the animation is currently playing.
func (a *Animation) Active() bool { return a.state == stateActive }

// Then appends fn to the animation's completion callbacks.
func (a *Animation) Then(fn func()) {
	if fn == nil {
		return
	}
	prev := a.OnDone
	if prev == nil {
		a.OnDone = fn
		return
	}
	a.OnDone = func() {
		prev()
		fn()
	}
}

// Finally appends fn to both the completion and the cancellation callbacks,
// so it runs exactly once however the animation settles.
func (a *Animation) Finally(fn func()) {
	if fn == nil {
		return
	}
	a.Then(fn)
	prev := a.OnCancel
	if prev == nil {
		a.OnCancel = fn
		return
	}
	a.OnCancel = func() {
		prev()
		fn()
	}
}
