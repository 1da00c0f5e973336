package game

import (
	"fmt"

	"github.com/roach88/hexwar/internal/undo"
)

// Game is one game session: its map extent, units and turn counter.
// It owns the undo stack shared by every mutable part of the session.
type Game struct {
	name  string
	cols  int
	rows  int
	turn  int
	units []*Unit
	index map[string]*Unit
	undo  *undo.Stack
}

// Option configures a Game.
type Option func(*Game)

// WithMap sets the map extent. Hexes outside [0,cols)x[0,rows) cannot be
// referenced. A zero extent (the default) accepts any hex.
func WithMap(cols, rows int) Option {
	return func(g *Game) {
		g.cols = cols
		g.rows = rows
	}
}

// WithUndo shares an existing undo stack with the game.
func WithUndo(s *undo.Stack) Option {
	return func(g *Game) {
		g.undo = s
	}
}

// New creates an empty game.
func New(name string, opts ...Option) *Game {
	g := &Game{
		name:  name,
		index: make(map[string]*Unit),
		undo:  undo.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) Name() string { return g.name }
func (g *Game) Turn() int { return g.turn }
func (g *Game) Undo() *undo.Stack { return g.undo }
func (g *Game) Units() []*Unit { return append([]*Unit(nil), g.units...) }
func (g *Game) String() string { return g.name }
func (g *Game) MapSize() (int, int) { return g.cols, g.rows }

// AddUnit adds u to the game. Unit names are unique within a game.
func (g *Game) AddUnit(u *Unit) error {
	if _, exists := g.index[u.name]; exists {
		return fmt.Errorf("add unit: duplicate name %q", u.name)
	}
	if !g.OnMap(u.hex) {
		return fmt.Errorf("add unit %q: hex %s outside map", u.name, u.hex)
	}
	u.game = g
	g.units = append(g.units, u)
	g.index[u.name] = u
	return nil
}

// Unit returns the unit with the given name.
func (g *Game) Unit(name string) (*Unit, bool) {
	u, ok := g.index[name]
	return u, ok
}

// OnMap reports whether h lies on the map.
func (g *Game) OnMap(h Hex) bool {
	if g.cols == 0 && g.rows == 0 {
		return true
	}
	return h.Col >= 0 && h.Row >= 0 && h.Col < g.cols && h.Row < g.rows
}

// SetTurn sets the turn counter.
func (g *Game) SetTurn(turn int) {
	undo.Set(g.undo, &g.turn, turn)
}

// NextTurn advances the turn and clears the played flag of every unit.
func (g *Game) NextTurn() {
	g.SetTurn(g.turn + 1)
	for _, u := range g.units {
		if u.state.Played {
			s := u.state
			s.Played = false
			u.SetState(s)
		}
	}
}
