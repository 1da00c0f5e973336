package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/persist"
	"github.com/roach88/hexwar/internal/sequence"
	"github.com/roach88/hexwar/internal/store"
)

const testRoster = `game: ligny
map:
  cols: 12
  rows: 10
units:
  - name: 1st-Hussars
    steps: 4
    col: 2
    row: 3
  - name: 2nd-Foot
    steps: 6
    col: 5
    row: 5
    angle: 180
`

// writeRoster writes testRoster to dir and returns its path.
func writeRoster(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ligny.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRoster), 0o644))
	return path
}

func rosterGame(t *testing.T) *game.Game {
	t.Helper()
	r, err := game.ParseRoster(strings.NewReader(testRoster))
	require.NoError(t, err)
	g, err := r.Build()
	require.NoError(t, err)
	return g
}

func mustUnit(t *testing.T, g *game.Game, name string) *game.Unit {
	t.Helper()
	u, ok := g.Unit(name)
	require.True(t, ok, "unit %q", name)
	return u
}

// seedDatabase stores two batches for ligny: the hussars move to (3,3) and
// rotate to 60, then the turn ends.
func seedDatabase(t *testing.T, dbPath string) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	g := rosterGame(t)
	seq := sequence.New(g)
	adapter := persist.NewAdapter(st, sequence.DefaultRegistry())

	hussars := mustUnit(t, g, "1st-Hussars")
	seq.AppendElement(sequence.NewMove(hussars, hussars.State(), game.Hex{Col: 3, Row: 3}, game.Top))
	seq.AppendElement(sequence.NewRotate(hussars, hussars.State(), 60))
	require.NoError(t, adapter.Submit(ctx, seq))

	seq.AppendElement(sequence.NewNextTurn(g))
	require.NoError(t, adapter.Submit(ctx, seq))
}

func createEmptyDatabase(t *testing.T, dbPath string) {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
