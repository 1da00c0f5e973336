package game

import (
	"fmt"

	"github.com/roach88/hexwar/internal/undo"
)

// Hex is a map coordinate. Geometry (neighbours, pixel projection) is the
// client's business; the log only needs to name a hex.
type Hex struct {
	Col int
	Row int
}

func (h Hex) String() string {
	return fmt.Sprintf("(%d,%d)", h.Col, h.Row)
}

// UnitState is the recorded portion of a unit's state.
type UnitState struct {
	Steps      int
	Cohesion   Cohesion
	Tiredness  Tiredness
	Munitions  Munitions
	Charging   Charging
	Engaging   bool
	OrderGiven bool
	Played     bool
}

func (s UnitState) String() string {
	return fmt.Sprintf("steps=%d cohesion=%s tiredness=%s ammunition=%s charging=%s engaging=%t orderGiven=%t played=%t",
		s.Steps, s.Cohesion.Code(), s.Tiredness.Code(), s.Munitions.Code(), s.Charging.Code(),
		s.Engaging, s.OrderGiven, s.Played)
}

// Unit is a counter on the map. Units are referenced by pointer identity;
// two units with equal fields are still different units.
//
// Setters record undo commands on the owning game's stack when a
// transaction is open.
type Unit struct {
	name     string
	state    UnitState
	hex      Hex
	stacking Stacking
	angle    int
	order    Order
	game     *Game
}

// NewUnit creates a fresh unit: good order, fresh, plenty of munitions, not charging.
func NewUnit(name string, steps int) *Unit {
	return &Unit{
		name:  name,
		state: UnitState{Steps: steps},
	}
}

func (u *Unit) Name() string { return u.name }
func (u *Unit) State() UnitState { return u.state }
func (u *Unit) Hex() Hex { return u.hex }
func (u *Unit) Stacking() Stacking { return u.stacking }
func (u *Unit) Angle() int { return u.angle }
func (u *Unit) Order() Order { return u.order }
func (u *Unit) Game() *Game { return u.game }

func (u *Unit) String() string {
	return u.name
}

func (u *Unit) stack() *undo.Stack {
	if u.game == nil {
		return nil
	}
	return u.game.undo
}

// SetState replaces the recorded state.
func (u *Unit) SetState(s UnitState) {
	undo.Set(u.stack(), &u.state, s)
}

// Place moves the unit to hex h at the given stacking position.
func (u *Unit) Place(h Hex, st Stacking) {
	undo.Set(u.stack(), &u.hex, h)
	undo.Set(u.stack(), &u.stacking, st)
}

// SetAngle sets the unit's facing in degrees, normalized to [0, 360).
func (u *Unit) SetAngle(angle int) {
	undo.Set(u.stack(), &u.angle, NormalizeAngle(angle))
}

// SetOrder records the instruction given to the unit.
func (u *Unit) SetOrder(o Order) {
	undo.Set(u.stack(), &u.order, o)
}

// NormalizeAngle maps any angle in degrees to [0, 360).
func NormalizeAngle(angle int) int {
	angle %= 360
	if angle < 0 {
		angle += 360
	}
	return angle
}
