package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/roach88/hexwar/internal/persist"
)

// MemService is an in-memory persist.Service with failure injection.
//
// Batches returns results in descending count order when Reverse is set, to
// exercise out-of-order delivery.
//
// Thread-safety: safe for concurrent use via internal mutex.
type MemService struct {
	mu      sync.Mutex
	batches map[string]map[int64]persist.Batch
	puts    int
	lists   int
	putErr  error
	listErr error
	reverse bool
}

// NewMemService creates an empty service.
func NewMemService() *MemService {
	return &MemService{batches: make(map[string]map[int64]persist.Batch)}
}

// FailPuts makes every PutBatch return err until called with nil.
func (m *MemService) FailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErr = err
}

// FailLists makes every Batches call return err until called with nil.
func (m *MemService) FailLists(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// Reverse toggles descending result order.
func (m *MemService) Reverse(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reverse = on
}

// Puts returns the number of PutBatch calls, including failed ones.
func (m *MemService) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Lists returns the number of Batches calls, including failed ones.
func (m *MemService) Lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

func (m *MemService) PutBatch(_ context.Context, b persist.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	g, ok := m.batches[b.Game]
	if !ok {
		g = make(map[int64]persist.Batch)
		m.batches[b.Game] = g
	}
	g[b.Count] = b
	return nil
}

func (m *MemService) Batches(_ context.Context, game string, from int64) ([]persist.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []persist.Batch{}
	for count, b := range m.batches[game] {
		if count >= from {
			out = append(out, b)
		}
	}
	persist.SortBatches(out)
	if m.reverse {
		slices.Reverse(out)
	}
	return out, nil
}
