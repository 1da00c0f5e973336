package sequence

import (
	"log/slog"
	"slices"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/undo"
)

// Player schedules replayed animations. *anim.Scheduler implements it.
type Player interface {
	Schedule(a *anim.Animation)
	Step(delay int64) int64
}

// Sequence is the ordered log of one game session.
//
// INVARIANTS:
//   - count increases by exactly one per effective Commit
//   - Validated is defined iff a Commit happened and Acknowledge has not
//   - pending is empty immediately after a Commit
//
// Not safe for concurrent use: the session mutates it from one goroutine.
type Sequence struct {
	game           *game.Game
	undo           *undo.Stack
	pending        []Element
	validated      []Element
	outstanding    bool
	count          int64
	validatedCount int64
	replaying      bool
}

// Option configures a Sequence.
type Option func(*Sequence)

// WithCount starts the batch counter at n, for sessions resuming from
// stored history.
func WithCount(n int64) Option {
	return func(s *Sequence) {
		s.count = n
	}
}

// WithUndo uses s instead of the game's undo stack.
func WithUndo(stack *undo.Stack) Option {
	return func(s *Sequence) {
		s.undo = stack
	}
}

// New creates the sequence for g. By default it shares g's undo stack, so a
// player's undo rolls back entities and log together.
func New(g *game.Game, opts ...Option) *Sequence {
	s := &Sequence{game: g, undo: g.Undo()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sequence) Game() *game.Game { return s.game }
func (s *Sequence) Count() int64 { return s.count }
func (s *Sequence) Replaying() bool { return s.replaying }

// Pending returns a copy of the pending buffer.
func (s *Sequence) Pending() []Element {
	return slices.Clone(s.pending)
}

// Outstanding reports whether a committed batch awaits acknowledgement.
func (s *Sequence) Outstanding() bool {
	return s.outstanding
}

// Validated returns the committed batch awaiting acknowledgement.
// ok is false when no commit is outstanding.
func (s *Sequence) Validated() (batch []Element, ok bool) {
	if !s.outstanding {
		return nil, false
	}
	return slices.Clone(s.validated), true
}

// ValidatedCount returns the count of the outstanding batch, or 0.
func (s *Sequence) ValidatedCount() int64 {
	return s.validatedCount
}

// AddElement appends e without an undo checkpoint. Used when reconstructing
// history from stored batches.
func (s *Sequence) AddElement(e Element) {
	e.SetGame(s.game)
	s.pending = append(s.pending, e)
}

// AppendElement appends e during live play. The previous buffer is
// registered on the undo stack first, so undoing the enclosing transaction
// restores it exactly. During replay it does nothing: replay reconstructs
// history rather than recording new decisions.
func (s *Sequence) AppendElement(e Element) {
	if s.replaying {
		return
	}
	e.SetGame(s.game)
	next := append(slices.Clone(s.pending), e)
	undo.Set(s.undo, &s.pending, next)
}

// Commit freezes the pending buffer into the validated batch and bumps the
// count. An empty buffer commits an empty batch. If a batch is already
// outstanding Commit does nothing, so a failed submission can be retried
// unchanged; elements appended meanwhile wait for the next batch.
//
// Committed elements cannot be taken back, so the undo history is cleared.
func (s *Sequence) Commit() *Sequence {
	if s.outstanding {
		return s
	}
	s.validated = s.pending
	if s.validated == nil {
		s.validated = []Element{}
	}
	s.pending = nil
	s.count++
	s.validatedCount = s.count
	s.outstanding = true
	if s.undo != nil {
		s.undo.Clear()
	}

	slog.Debug("batch committed",
		"game", s.game.Name(),
		"count", s.count,
		"elements", len(s.validated),
	)
	return s
}

// Acknowledge releases the validated batch once it is durably stored,
// allowing the next Commit. Without an outstanding batch it is a no-op.
func (s *Sequence) Acknowledge() {
	if !s.outstanding {
		return
	}
	slog.Debug("batch acknowledged", "game", s.game.Name(), "count", s.validatedCount)
	s.validated = nil
	s.validatedCount = 0
	s.outstanding = false
}

// SyncCount raises the count to n after stored batches up to n have been
// loaded. It never lowers the count.
func (s *Sequence) SyncCount(n int64) {
	if n > s.count {
		s.count = n
	}
}

// Replay schedules the buffered elements in buffer order on p, starting at
// startTick. Each element starts where the previous one's step ends, so
// animations play back to back. The buffer is cleared. onDone runs when the
// last element's animation settles, finished or cancelled by a later
// animation on the same target, or immediately for an empty buffer.
// Replay returns the tick after the last element.
func (s *Sequence) Replay(p Player, startTick int64, onDone func()) int64 {
	elems := s.pending
	s.pending = nil

	if len(elems) == 0 {
		if onDone != nil {
			onDone()
		}
		return startTick
	}

	s.replaying = true
	tick := startTick
	for i, e := range elems {
		a := e.Apply(tick)
		if i == len(elems)-1 {
			a.Finally(func() {
				s.replaying = false
				if onDone != nil {
					onDone()
				}
			})
		}
		p.Schedule(a)
		tick += p.Step(e.Delay())
	}

	slog.Debug("replay scheduled",
		"game", s.game.Name(),
		"elements", len(elems),
		"start", startTick,
		"end", tick,
	)
	return tick
}
