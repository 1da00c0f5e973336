package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceNonExistentDatabase(t *testing.T) {
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "--db", "/nonexistent/path/test.db", "--game", "ligny")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceListGames(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	seedDatabase(t, dbPath)

	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Games:")
	assert.Contains(t, out, "ligny")
	assert.Contains(t, out, "last count 2")
}

func TestTraceListGamesEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	createEmptyDatabase(t, dbPath)

	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No games found in database.")
}

func TestTraceUnknownGame(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedDatabase(t, dbPath)

	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", dbPath, "--game", "wavre")
	require.NoError(t, err)
	assert.Contains(t, out, "No batches found for game: wavre")
}

func TestTraceRawElements(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	seedDatabase(t, dbPath)

	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", dbPath, "--game", "ligny")
	require.NoError(t, err)
	assert.Contains(t, out, "Game: ligny")
	assert.Contains(t, out, "Batches: 2")
	assert.Contains(t, out, "[1] v1  2 element(s)")
	assert.Contains(t, out, "[2] v1  1 element(s)")
	assert.Contains(t, out, "move{")
	assert.Contains(t, out, "hexCol=3")
	assert.Contains(t, out, "unit=1st-Hussars")
	assert.Contains(t, out, "rotate{")
	assert.Contains(t, out, "next-turn{version=1}")
}

func TestTraceDecodedJSON(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	seedDatabase(t, dbPath)
	roster := writeRoster(t, dir)

	cmd := NewTraceCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--db", dbPath, "--game", "ligny", "--roster", roster)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ligny", resp.Data.Game)
	require.Len(t, resp.Data.Batches, 2)

	first := resp.Data.Batches[0]
	assert.Equal(t, int64(1), first.Count)
	assert.Equal(t, 2, first.Elements)
	assert.Len(t, first.Hash, 64)
	assert.NotEmpty(t, first.SubmissionID)
	require.Len(t, first.Items, 2)
	assert.Contains(t, first.Items[0], "move{")
	assert.Contains(t, first.Items[1], "rotate{")

	assert.Equal(t, []string{"next-turn{}"}, resp.Data.Batches[1].Items)
}

func TestTraceDecodeAgainstWrongRoster(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	seedDatabase(t, dbPath)

	other := filepath.Join(dir, "other.yaml")
	writeFile(t, other, "game: ligny\nunits:\n  - name: Uhlans\n    steps: 3\n    col: 0\n    row: 0\n")

	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "--db", dbPath, "--game", "ligny", "--roster", other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNRESOLVED_REF")
}
