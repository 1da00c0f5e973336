package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/game"
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

// oneOfEach returns one element of every built-in type, keyed by type tag.
func oneOfEach(t *testing.T, g *game.Game) map[string]Element {
	t.Helper()
	hussars := unit(t, g, "1st-Hussars")
	foot := unit(t, g, "2nd-Foot")

	tired := game.UnitState{Steps: 3, Cohesion: game.Disrupted, Tiredness: game.Tired, Munitions: game.Scarce}
	engaged := game.UnitState{Steps: 6, Engaging: true, OrderGiven: true, Played: true}

	return map[string]Element{
		TypeState:     NewState(hussars, tired),
		TypeMove:      NewMove(hussars, tired, game.Hex{Col: 3, Row: 4}, game.Bottom).WithHexAngle(120),
		TypeRotate:    NewRotate(foot, engaged, 60),
		TypeReorient:  NewReorient(foot, engaged, 240),
		TypeTurn:      NewTurn(hussars, tired, game.Hex{Col: 5, Row: 1}, game.Top, 300),
		TypeNextTurn:  NewNextTurn(g),
		TypeRally:     NewRally(hussars, game.UnitState{Steps: 3}, 5),
		TypeCombat:    NewCombat(foot, engaged, 2, 6),
		TypeDisengage: NewDisengage(hussars, tired, game.Hex{Col: 0, Row: 9}, game.Top, 4, 1),
		TypeGiveOrder: NewGiveOrder(foot, engaged, game.AttackOrder),
	}
}
