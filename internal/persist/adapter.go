package persist

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/sequence"
)

// Service is the persistence endpoint pair: create or update a batch, and
// fetch a game's batches from a count onward.
type Service interface {
	PutBatch(ctx context.Context, b Batch) error
	Batches(ctx context.Context, game string, from int64) ([]Batch, error)
}

// Adapter runs the commit and load protocols between a Sequence and a
// Service.
type Adapter struct {
	svc Service
	reg *sequence.Registry
}

// NewAdapter creates an adapter. reg resolves element type tags on load.
func NewAdapter(svc Service, reg *sequence.Registry) *Adapter {
	return &Adapter{svc: svc, reg: reg}
}

// Submit commits seq's pending elements and stores the resulting batch.
// The batch is acknowledged only once PutBatch succeeds. On failure the
// batch stays outstanding and the next Submit sends it again unchanged.
func (a *Adapter) Submit(ctx context.Context, seq *sequence.Sequence) error {
	seq.Commit()
	b, ok := NewBatch(seq)
	if !ok {
		return fmt.Errorf("submit: no outstanding batch after commit")
	}

	if err := a.svc.PutBatch(ctx, b); err != nil {
		slog.Error("batch submission failed",
			"game", b.Game,
			"count", b.Count,
			"elements", len(b.Elements),
			"error", err,
		)
		return fmt.Errorf("submit batch %d: %w", b.Count, err)
	}

	seq.Acknowledge()
	slog.Info("batch stored", "game", b.Game, "count", b.Count, "elements", len(b.Elements))
	return nil
}

// Fetch returns the game's batches with count >= from, in ascending count
// order regardless of the order the service returned them in.
func (a *Adapter) Fetch(ctx context.Context, game string, from int64) ([]Batch, error) {
	batches, err := a.svc.Batches(ctx, game, from)
	if err != nil {
		return nil, fmt.Errorf("fetch batches for %q from %d: %w", game, from, err)
	}
	for _, b := range batches {
		if err := b.CheckVersion(); err != nil {
			return nil, err
		}
	}
	SortBatches(batches)
	return batches, nil
}

// Restore decodes batches against lk and appends their elements to seq in
// ascending count order, then raises seq's count to the highest batch
// count. Nothing is appended unless every element decodes.
// It returns the number of elements appended.
func (a *Adapter) Restore(seq *sequence.Sequence, batches []Batch, lk game.Lookup) (int, error) {
	if len(batches) == 0 {
		return 0, nil
	}
	ordered := slices.Clone(batches)
	SortBatches(ordered)

	gameName := seq.Game().Name()
	var elems []sequence.Element
	for _, b := range ordered {
		if b.Game != gameName {
			return 0, fmt.Errorf("restore: batch %d belongs to game %q, not %q", b.Count, b.Game, gameName)
		}
		if err := b.CheckVersion(); err != nil {
			return 0, err
		}
		decoded, err := a.reg.DecodeAll(b.Elements, lk)
		if err != nil {
			return 0, fmt.Errorf("restore batch %d: %w", b.Count, err)
		}
		elems = append(elems, decoded...)
	}

	for _, e := range elems {
		seq.AddElement(e)
	}
	seq.SyncCount(ordered[len(ordered)-1].Count)
	return len(elems), nil
}

// Load fetches every batch after seq's count and restores it into seq,
// resolving references against the game's current entities. The elements
// are left pending for Replay. It returns the number of batches loaded.
func (a *Adapter) Load(ctx context.Context, seq *sequence.Sequence) (int, error) {
	g := seq.Game()
	batches, err := a.Fetch(ctx, g.Name(), seq.Count()+1)
	if err != nil {
		return 0, err
	}
	n, err := a.Restore(seq, batches, g.Lookup())
	if err != nil {
		return 0, err
	}
	if len(batches) > 0 {
		slog.Debug("batches loaded", "game", g.Name(), "batches", len(batches), "elements", n, "count", seq.Count())
	}
	return len(batches), nil
}

// SortBatches orders batches by ascending count.
func SortBatches(batches []Batch) {
	slices.SortStableFunc(batches, func(a, b Batch) int {
		return cmp.Compare(a.Count, b.Count)
	})
}
