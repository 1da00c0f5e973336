package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator returns prefix-1, prefix-2, ... in order.
//
// This enables deterministic submission IDs in store rows and golden
// output. It satisfies store.IDGenerator.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator producing prefix-N IDs.
// An empty prefix becomes "id".
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
