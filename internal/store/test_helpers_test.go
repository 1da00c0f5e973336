package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/hexwar/internal/ir"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/testutil"
)

// createTestStore creates a new temp-dir store with deterministic
// submission IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("sub")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBatch creates a batch of next-turn elements.
func createTestBatch(game string, count int64, elements int) persist.Batch {
	b := persist.Batch{
		Version:  ir.WireVersion,
		Game:     game,
		Count:    count,
		Elements: make([]ir.IRObject, elements),
	}
	for i := range b.Elements {
		b.Elements[i] = ir.IRObject{
			"version": ir.IRInt(ir.WireVersion),
			"type":    ir.IRString("next-turn"),
		}
	}
	return b
}
