package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodesRoundTrip(t *testing.T) {
	for _, c := range []Cohesion{GoodOrder, Disrupted, Routed, Destroyed} {
		got, err := ParseCohesion(c.Code())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	for _, v := range []Tiredness{Fresh, Tired, Exhausted} {
		got, err := ParseTiredness(v.Code())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []Munitions{Plenty, Scarce, OutOfMunitions} {
		got, err := ParseMunitions(v.Code())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []Charging{NoCharge, BeginCharge, CanCharge, Charge} {
		got, err := ParseCharging(v.Code())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []Order{AttackOrder, DefendOrder, FireOrder, RegroupOrder} {
		got, err := ParseOrder(v.Code())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestWireCodes(t *testing.T) {
	assert.Equal(t, []string{"GO", "D", "R", "X"},
		[]string{GoodOrder.Code(), Disrupted.Code(), Routed.Code(), Destroyed.Code()})
	assert.Equal(t, []string{"F", "T", "E"},
		[]string{Fresh.Code(), Tired.Code(), Exhausted.Code()})
	assert.Equal(t, []string{"P", "S", "E"},
		[]string{Plenty.Code(), Scarce.Code(), OutOfMunitions.Code()})
	assert.Equal(t, []string{"N", "BC", "CC", "C"},
		[]string{NoCharge.Code(), BeginCharge.Code(), CanCharge.Code(), Charge.Code()})
	assert.Equal(t, []string{"T", "B"}, []string{Top.Code(), Bottom.Code()})
}

func TestParseUnknownCode(t *testing.T) {
	_, err := ParseCohesion("Z")
	assert.True(t, errors.Is(err, ErrUnknownCode))

	_, err = ParseOrder("")
	assert.True(t, errors.Is(err, ErrUnknownCode))
}

func TestAddUnit(t *testing.T) {
	g := New("g", WithMap(4, 4))
	a := NewUnit("A", 4)
	require.NoError(t, g.AddUnit(a))
	assert.Same(t, g, a.Game())

	err := g.AddUnit(NewUnit("A", 2))
	assert.ErrorContains(t, err, "duplicate")

	far := NewUnit("far", 1)
	far.hex = Hex{Col: 9, Row: 0}
	assert.ErrorContains(t, g.AddUnit(far), "outside map")
}

func TestUnitMutationsAreUndoable(t *testing.T) {
	g := New("g")
	u := NewUnit("A", 4)
	require.NoError(t, g.AddUnit(u))

	g.Undo().Transact(func() {
		u.SetState(UnitState{Steps: 3, Cohesion: Disrupted})
		u.Place(Hex{Col: 2, Row: 1}, Bottom)
		u.SetAngle(-60)
		u.SetOrder(FireOrder)
	})
	assert.Equal(t, Disrupted, u.State().Cohesion)
	assert.Equal(t, Hex{Col: 2, Row: 1}, u.Hex())
	assert.Equal(t, Bottom, u.Stacking())
	assert.Equal(t, 300, u.Angle())
	assert.Equal(t, FireOrder, u.Order())

	require.True(t, g.Undo().Undo())
	assert.Equal(t, UnitState{Steps: 4}, u.State())
	assert.Equal(t, Hex{}, u.Hex())
	assert.Equal(t, Top, u.Stacking())
	assert.Equal(t, 0, u.Angle())
	assert.Equal(t, NoOrder, u.Order())
}

func TestNextTurnClearsPlayed(t *testing.T) {
	g := New("g")
	u := NewUnit("A", 4)
	require.NoError(t, g.AddUnit(u))
	u.SetState(UnitState{Steps: 4, Played: true})

	g.NextTurn()
	assert.Equal(t, 1, g.Turn())
	assert.False(t, u.State().Played)
}

func TestLookup(t *testing.T) {
	g := New("g", WithMap(3, 3))
	u := NewUnit("A", 4)
	require.NoError(t, g.AddUnit(u))

	ix := g.Lookup()
	assert.Same(t, g, ix.Game())

	got, ok := ix.Unit("A")
	require.True(t, ok)
	assert.Same(t, u, got)

	_, ok = ix.Unit("B")
	assert.False(t, ok)

	h, ok := ix.Hex(2, 1)
	assert.True(t, ok)
	assert.Equal(t, Hex{Col: 2, Row: 1}, h)

	_, ok = ix.Hex(3, 0)
	assert.False(t, ok)
}

const testRoster = `
game: skirmish
turn: 2
map: {cols: 10, rows: 8}
units:
  - name: 1st Hussars
    steps: 4
    col: 3
    row: 4
    angle: 420
  - name: Old Guard
    steps: 6
    col: 5
    row: 4
    stacking: B
    cohesion: D
    tiredness: T
    ammunition: S
    charging: BC
    engaging: true
`

func TestParseRosterAndBuild(t *testing.T) {
	r, err := ParseRoster(strings.NewReader(testRoster))
	require.NoError(t, err)

	g, err := r.Build()
	require.NoError(t, err)
	assert.Equal(t, "skirmish", g.Name())
	assert.Equal(t, 2, g.Turn())
	require.Len(t, g.Units(), 2)

	h, _ := g.Unit("1st Hussars")
	assert.Equal(t, 60, h.Angle())
	assert.Equal(t, UnitState{Steps: 4}, h.State())

	og, _ := g.Unit("Old Guard")
	assert.Equal(t, Bottom, og.Stacking())
	assert.Equal(t, UnitState{
		Steps:     6,
		Cohesion:  Disrupted,
		Tiredness: Tired,
		Munitions: Scarce,
		Charging:  BeginCharge,
		Engaging:  true,
	}, og.State())
	assert.False(t, g.Undo().CanUndo())
}

func TestParseRosterRejectsUnknownFields(t *testing.T) {
	_, err := ParseRoster(strings.NewReader("game: g\nunits: []\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestRosterRejectsBadCode(t *testing.T) {
	r, err := ParseRoster(strings.NewReader("game: g\nunits:\n  - name: A\n    cohesion: Q\n"))
	require.NoError(t, err)
	_, err = r.Build()
	assert.True(t, errors.Is(err, ErrUnknownCode))
}
