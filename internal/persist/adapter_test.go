package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/ir"
	"github.com/roach88/hexwar/internal/sequence"
)

func TestSubmit_StoresAndAcknowledges(t *testing.T) {
	ctx := context.Background()
	g := newTestGame(t)
	svc := newMemService()
	a := NewAdapter(svc, sequence.DefaultRegistry())
	seq := sequence.New(g)

	seq.AppendElement(sequence.NewNextTurn(g))
	require.NoError(t, a.Submit(ctx, seq))

	assert.False(t, seq.Outstanding())
	assert.Equal(t, int64(1), seq.Count())
	require.Len(t, svc.puts, 1)
	assert.Equal(t, int64(1), svc.puts[0].Count)
	assert.Equal(t, "test-game", svc.puts[0].Game)
	assert.Equal(t, ir.WireVersion, svc.puts[0].Version)
	require.Len(t, svc.puts[0].Elements, 1)
}

func TestSubmit_EmptyBatch(t *testing.T) {
	g := newTestGame(t)
	svc := newMemService()
	seq := sequence.New(g)

	require.NoError(t, NewAdapter(svc, sequence.DefaultRegistry()).Submit(context.Background(), seq))

	require.Len(t, svc.puts, 1)
	assert.NotNil(t, svc.puts[0].Elements)
	assert.Empty(t, svc.puts[0].Elements)
}

func TestSubmit_FailureRetriesSameBatch(t *testing.T) {
	ctx := context.Background()
	g := newTestGame(t)
	svc := newMemService()
	a := NewAdapter(svc, sequence.DefaultRegistry())
	seq := sequence.New(g)
	hussars := unit(t, g, "1st-Hussars")

	seq.AppendElement(sequence.NewRotate(hussars, hussars.State(), 60))
	svc.putErr = errUnavailable
	err := a.Submit(ctx, seq)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)
	assert.True(t, seq.Outstanding(), "failed batch stays outstanding")

	// Played on while offline.
	seq.AppendElement(sequence.NewNextTurn(g))

	svc.putErr = nil
	require.NoError(t, a.Submit(ctx, seq))

	require.Len(t, svc.puts, 2)
	first, err := JSONCodec{}.Marshal(svc.puts[0])
	require.NoError(t, err)
	retry, err := JSONCodec{}.Marshal(svc.puts[1])
	require.NoError(t, err)
	assert.Equal(t, string(first), string(retry), "retry is byte-for-byte")

	assert.Equal(t, int64(1), seq.Count())
	require.Len(t, seq.Pending(), 1, "later element waits for the next batch")

	require.NoError(t, a.Submit(ctx, seq))
	assert.Equal(t, int64(2), seq.Count())
	assert.Equal(t, int64(2), svc.puts[2].Count)
}

func TestFetch_SortsAndChecksVersion(t *testing.T) {
	ctx := context.Background()
	g := newTestGame(t)
	svc := newMemService()
	svc.reverse = true
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, svc.PutBatch(ctx, committedBatch(t, g, i)))
	}
	a := NewAdapter(svc, sequence.DefaultRegistry())

	got, err := a.Fetch(ctx, "test-game", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Count)
	assert.Equal(t, int64(3), got[1].Count)

	stale := committedBatch(t, g, 4)
	stale.Version = 0
	require.NoError(t, svc.PutBatch(ctx, stale))
	_, err = a.Fetch(ctx, "test-game", 1)
	assert.ErrorIs(t, err, ErrVersionMismatch)

	svc.listErr = errUnavailable
	_, err = a.Fetch(ctx, "test-game", 1)
	assert.ErrorIs(t, err, errUnavailable)
}

// Scenario: batches arriving out of order replay in count order.
func TestRestore_OutOfOrderArrival(t *testing.T) {
	author := newTestGame(t)
	hussars := unit(t, author, "1st-Hussars")
	st := hussars.State()
	four := committedBatch(t, author, 4, sequence.NewMove(hussars, st, game.Hex{Col: 1, Row: 1}, game.Top))
	five := committedBatch(t, author, 5, sequence.NewMove(hussars, st, game.Hex{Col: 9, Row: 9}, game.Top))

	replica := newTestGame(t)
	seq := sequence.New(replica, sequence.WithCount(3))
	a := NewAdapter(newMemService(), sequence.DefaultRegistry())

	n, err := a.Restore(seq, []Batch{five, four}, replica.Lookup())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(5), seq.Count())

	var trace []string
	sched := anim.NewScheduler(anim.WithObserver(func(e anim.Event) {
		if e.Kind == anim.EventFinished {
			trace = append(trace, e.Label)
		}
	}))
	seq.Replay(sched, 0, nil)
	require.True(t, sched.Drain(1000))

	require.Len(t, trace, 2)
	assert.Contains(t, trace[0], "hex=(1,1)")
	assert.Contains(t, trace[1], "hex=(9,9)")
	assert.Equal(t, game.Hex{Col: 9, Row: 9}, unit(t, replica, "1st-Hussars").Hex())
}

func TestRestore_ResolvesAgainstLiveGame(t *testing.T) {
	author := newTestGame(t)
	b := committedBatch(t, author, 1, sequence.NewState(unit(t, author, "2nd-Foot"), game.UnitState{Steps: 2}))

	replica := newTestGame(t)
	seq := sequence.New(replica)
	_, err := NewAdapter(newMemService(), sequence.DefaultRegistry()).Restore(seq, []Batch{b}, replica.Lookup())
	require.NoError(t, err)

	pending := seq.Pending()
	require.Len(t, pending, 1)
	rec := pending[0].(*sequence.State).Record
	assert.Same(t, unit(t, replica, "2nd-Foot"), rec.Unit)
	assert.Same(t, replica, pending[0].Game())
}

func TestRestore_FailsWithoutPartialAppend(t *testing.T) {
	g := newTestGame(t)
	good := committedBatch(t, g, 1, sequence.NewNextTurn(g))
	bad := committedBatch(t, g, 2)
	bad.Elements = []ir.IRObject{{"version": ir.IRInt(1), "type": ir.IRString("teleport")}}

	seq := sequence.New(g)
	_, err := NewAdapter(newMemService(), sequence.DefaultRegistry()).Restore(seq, []Batch{good, bad}, g.Lookup())
	require.Error(t, err)
	assert.True(t, sequence.IsUnknownType(err))
	assert.Empty(t, seq.Pending())
	assert.Equal(t, int64(0), seq.Count())
}

func TestRestore_RejectsOtherGame(t *testing.T) {
	g := newTestGame(t)
	b := committedBatch(t, g, 1)
	b.Game = "other"

	_, err := NewAdapter(newMemService(), sequence.DefaultRegistry()).Restore(sequence.New(g), []Batch{b}, g.Lookup())
	assert.Error(t, err)
}

func TestLoad_FromCount(t *testing.T) {
	ctx := context.Background()
	author := newTestGame(t)
	svc := newMemService()
	a := NewAdapter(svc, sequence.DefaultRegistry())

	authorSeq := sequence.New(author)
	for i := 0; i < 3; i++ {
		authorSeq.AppendElement(sequence.NewNextTurn(author))
		require.NoError(t, a.Submit(ctx, authorSeq))
	}

	replica := newTestGame(t)
	seq := sequence.New(replica, sequence.WithCount(1))
	n, err := a.Load(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "batch 1 is already known")
	assert.Equal(t, int64(3), seq.Count())
	assert.Len(t, seq.Pending(), 2)

	n, err = a.Load(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
