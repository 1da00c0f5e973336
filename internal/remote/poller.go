// Package remote replicates a game from a persistence service by polling.
//
// The loop is pull-based. Every poll asks for the batches after the locally
// known count. When nothing arrives the next poll is scheduled right away;
// when batches arrive they are replayed in count order, and the next poll is
// scheduled only once the last replayed animation has finished.
package remote

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/sequence"
)

// Defaults for the poll and frame intervals.
const (
	DefaultInterval      = 2 * time.Second
	DefaultFrameInterval = 20 * time.Millisecond
)

// ErrLocalPending is returned by PollOnce when the sequence holds local
// elements that have not been committed.
var ErrLocalPending = errors.New("sequence has uncommitted local elements")

// Poller owns the replica's sequence and scheduler. All of its state is
// touched from the goroutine calling Run (or PollOnce, in tests).
type Poller struct {
	adapter  *persist.Adapter
	seq      *sequence.Sequence
	sched    *anim.Scheduler
	interval time.Duration
	frame    time.Duration
	onReplay func(count int64)

	replaying bool
	rearm     bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithFrameInterval sets the wall time of one scheduler tick.
func WithFrameInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.frame = d
		}
	}
}

// WithScheduler replays onto s instead of a default scheduler.
func WithScheduler(s *anim.Scheduler) Option {
	return func(p *Poller) {
		p.sched = s
	}
}

// WithOnReplayed registers fn, called with the sequence count each time a
// fetched group of batches has finished playing.
func WithOnReplayed(fn func(count int64)) Option {
	return func(p *Poller) {
		p.onReplay = fn
	}
}

// New creates a poller replicating seq's game through a.
func New(a *persist.Adapter, seq *sequence.Sequence, opts ...Option) *Poller {
	p := &Poller{
		adapter:  a,
		seq:      seq,
		interval: DefaultInterval,
		frame:    DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sched == nil {
		p.sched = anim.NewScheduler()
	}
	return p
}

// Scheduler returns the scheduler replays run on.
func (p *Poller) Scheduler() *anim.Scheduler { return p.sched }

// Replaying reports whether fetched batches are still playing.
func (p *Poller) Replaying() bool { return p.replaying }

// Run polls and plays until ctx ends. It returns ctx's error.
func (p *Poller) Run(ctx context.Context) error {
	frames := time.NewTicker(p.frame)
	defer frames.Stop()
	poll := time.NewTimer(0)
	defer poll.Stop()

	gameName := p.seq.Game().Name()
	slog.Info("sync started", "game", gameName, "count", p.seq.Count(), "interval", p.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync stopped", "game", gameName, "count", p.seq.Count())
			return ctx.Err()

		case <-frames.C:
			p.sched.Advance(1)
			if p.rearm {
				p.rearm = false
				poll.Reset(p.interval)
			}

		case <-poll.C:
			n, err := p.PollOnce(ctx)
			if err != nil {
				slog.Warn("poll failed", "game", gameName, "error", err)
			}
			if err != nil || n == 0 {
				poll.Reset(p.interval)
			}
		}
	}
}

// PollOnce fetches the batches after the sequence count and schedules their
// replay from the current tick. It returns the number of batches fetched.
// While a previous replay is still playing it does nothing.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	if p.replaying {
		return 0, nil
	}
	if len(p.seq.Pending()) > 0 {
		return 0, ErrLocalPending
	}

	n, err := p.adapter.Load(ctx, p.seq)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		slog.Debug("poll: nothing new", "game", p.seq.Game().Name(), "count", p.seq.Count())
		return 0, nil
	}

	p.replaying = true
	p.seq.Replay(p.sched, p.sched.Now(), p.replayed)
	return n, nil
}

func (p *Poller) replayed() {
	p.replaying = false
	p.rearm = true
	count := p.seq.Count()
	slog.Debug("replay finished", "game", p.seq.Game().Name(), "count", count)
	if p.onReplay != nil {
		p.onReplay(count)
	}
}
