package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/sequence"
	"github.com/roach88/hexwar/internal/testutil"
)

// errInjected is returned by the service for submissions a scenario marks
// as failing.
var errInjected = errors.New("injected submit failure")

// Harness is the test execution engine for one scenario.
type Harness struct {
	scenario *Scenario
	svc      *testutil.MemService
	adapter  *persist.Adapter
	logger   *slog.Logger
}

// Run executes a scenario and returns the result. The error is non-nil only
// when the scenario could not be executed at all; failed checks are
// reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	local, err := scenario.Roster.Build()
	if err != nil {
		return nil, fmt.Errorf("build local roster: %w", err)
	}
	remote, err := scenario.Roster.Build()
	if err != nil {
		return nil, fmt.Errorf("build remote roster: %w", err)
	}

	svc := testutil.NewMemService()
	h := &Harness{
		scenario: scenario,
		svc:      svc,
		adapter:  persist.NewAdapter(svc, sequence.DefaultRegistry()),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.record(ctx, local); err != nil {
		return nil, fmt.Errorf("failed to record batches: %w", err)
	}
	result.Submits = svc.Puts()

	stored, err := svc.Batches(ctx, local.Name(), 1)
	if err != nil {
		return nil, fmt.Errorf("list stored batches: %w", err)
	}
	for _, b := range stored {
		hash, err := b.Hash()
		if err != nil {
			return nil, fmt.Errorf("hash batch %d: %w", b.Count, err)
		}
		result.Batches = append(result.Batches, BatchRecord{Count: b.Count, Hash: hash, Elements: len(b.Elements)})
	}

	svc.Reverse(scenario.Delivery == DeliveryReversed)
	if err := h.replay(ctx, remote, result); err != nil {
		return nil, fmt.Errorf("failed to replay batches: %w", err)
	}

	for _, msg := range Converge(local, remote) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, remote) {
		result.AddError(msg)
	}
	return result, nil
}

// record performs every step on the local game and submits each batch.
func (h *Harness) record(ctx context.Context, local *game.Game) error {
	seq := sequence.New(local)
	stack := local.Undo()

	for i, batch := range h.scenario.Batches {
		for j, step := range batch.Steps {
			if step.Type == StepUndo {
				if !stack.Undo() {
					return fmt.Errorf("batch %d step %d: nothing to undo", i, j)
				}
				continue
			}

			e, err := buildElement(local, step)
			if err != nil {
				return fmt.Errorf("batch %d step %d: %w", i, j, err)
			}
			stack.Transact(func() {
				playLocal(e)
				seq.AppendElement(e)
			})
		}

		if batch.FailSubmits > 0 {
			h.svc.FailPuts(errInjected)
			for k := 0; k < batch.FailSubmits; k++ {
				if err := h.adapter.Submit(ctx, seq); !errors.Is(err, errInjected) {
					return fmt.Errorf("batch %d: submission %d should have failed, got %v", i, k, err)
				}
			}
			h.svc.FailPuts(nil)
		}
		if err := h.adapter.Submit(ctx, seq); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
		h.logger.Debug("batch recorded", "batch", i, "count", seq.Count())
	}
	return nil
}

// replay loads every stored batch into a fresh sequence for remote and plays
// it to completion.
func (h *Harness) replay(ctx context.Context, remote *game.Game, result *Result) error {
	opts := []anim.Option{
		anim.WithObserver(func(ev anim.Event) {
			result.Trace = append(result.Trace, TraceEvent{Tick: ev.Tick, Kind: ev.Kind.String(), Label: ev.Label})
		}),
	}
	if h.scenario.Scale > 0 {
		opts = append(opts, anim.WithScale(h.scenario.Scale))
	}
	if h.scenario.Overhead != nil {
		opts = append(opts, anim.WithOverhead(*h.scenario.Overhead))
	}
	sched := anim.NewScheduler(opts...)

	seq := sequence.New(remote)
	n, err := h.adapter.Load(ctx, seq)
	if err != nil {
		return err
	}

	done := false
	end := seq.Replay(sched, sched.Now(), func() { done = true })
	sched.Drain(end - sched.Now() + 1)
	if !done {
		result.AddError(fmt.Sprintf("replay of %d batches did not finish by tick %d", n, sched.Now()))
	}

	result.Count = seq.Count()
	result.Turn = remote.Turn()
	result.Ticks = sched.Now()
	h.logger.Debug("replay finished", "batches", n, "count", result.Count, "ticks", result.Ticks)
	return nil
}

// playLocal performs e's mutation immediately, the way live play does.
func playLocal(e sequence.Element) {
	if a := e.Apply(0); a.Finish != nil {
		a.Finish()
	}
}
