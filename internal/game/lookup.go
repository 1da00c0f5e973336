package game

// Lookup resolves the entity references carried by serialized elements.
// Decoders take a Lookup rather than consulting global state.
type Lookup interface {
	Game() *Game
	Unit(name string) (*Unit, bool)
	Hex(col, row int) (Hex, bool)
}

// Index is a Lookup built from a game's entities at one point in time.
type Index struct {
	game  *Game
	units map[string]*Unit
}

// Lookup builds an Index over the game's current units.
func (g *Game) Lookup() *Index {
	units := make(map[string]*Unit, len(g.units))
	for _, u := range g.units {
		units[u.name] = u
	}
	return &Index{game: g, units: units}
}

func (ix *Index) Game() *Game {
	return ix.game
}

func (ix *Index) Unit(name string) (*Unit, bool) {
	u, ok := ix.units[name]
	return u, ok
}

func (ix *Index) Hex(col, row int) (Hex, bool) {
	h := Hex{Col: col, Row: row}
	return h, ix.game.OnMap(h)
}
