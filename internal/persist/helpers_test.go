package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/sequence"
)

func newTestGame(t *testing.T) *game.Game {
	t.Helper()
	g := game.New("test-game", game.WithMap(12, 10))
	require.NoError(t, g.AddUnit(game.NewUnit("1st-Hussars", 4)))
	require.NoError(t, g.AddUnit(game.NewUnit("2nd-Foot", 6)))
	return g
}

func unit(t *testing.T, g *game.Game, name string) *game.Unit {
	t.Helper()
	u, ok := g.Unit(name)
	require.True(t, ok, "unit %q", name)
	return u
}

var errUnavailable = errors.New("service unavailable")

// memService is an in-memory Service with failure injection.
type memService struct {
	mu      sync.Mutex
	batches map[int64]Batch
	puts    []Batch
	putErr  error
	listErr error
	reverse bool
}

func newMemService() *memService {
	return &memService{batches: make(map[int64]Batch)}
}

func (m *memService) PutBatch(_ context.Context, b Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts = append(m.puts, b)
	if m.putErr != nil {
		return m.putErr
	}
	m.batches[b.Count] = b
	return nil
}

func (m *memService) Batches(_ context.Context, gameName string, from int64) ([]Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []Batch
	for _, b := range m.batches {
		if b.Game == gameName && b.Count >= from {
			out = append(out, b)
		}
	}
	SortBatches(out)
	if m.reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// committedBatch commits elems on a fresh sequence positioned at count-1
// and returns the resulting document.
func committedBatch(t *testing.T, g *game.Game, count int64, elems ...sequence.Element) Batch {
	t.Helper()
	s := sequence.New(g, sequence.WithCount(count-1))
	for _, e := range elems {
		s.AppendElement(e)
	}
	s.Commit()
	b, ok := NewBatch(s)
	require.True(t, ok)
	return b
}
