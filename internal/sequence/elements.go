package sequence

import (
	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
)

// Type tags.
const (
	TypeState     = "state"
	TypeMove      = "move"
	TypeRotate    = "rotate"
	TypeReorient  = "reorient"
	TypeTurn      = "turn"
	TypeNextTurn  = "next-turn"
	TypeRally     = "rally"
	TypeCombat    = "combat"
	TypeDisengage = "disengage"
	TypeGiveOrder = "give-order"
)

// Playback durations, in element time units (milliseconds of animation).
const (
	StateDelay     = 0
	MoveDelay      = 500
	RotateDelay    = 300
	ReorientDelay  = 100
	TurnDelay      = 500
	NextTurnDelay  = 0
	DiceDelay      = 800
	DisengageDelay = 900
	OrderDelay     = 200
)

func unitAnimation(e Element, u *game.Unit, tick int64, finish func()) *anim.Animation {
	return &anim.Animation{
		Target: u,
		Label:  e.String(),
		Start:  tick,
		Delay:  e.Delay(),
		Finish: finish,
	}
}

// State records a unit's state without moving it.
type State struct {
	Base
	Record UnitRecord
}

// NewState records unit u in state st.
func NewState(u *game.Unit, st game.UnitState) *State {
	return &State{Base: Base{kind: TypeState}, Record: UnitRecord{Unit: u, State: st}}
}

// Fragments returns the unit record.
func (e *State) Fragments() []Fragment { return []Fragment{&e.Record} }

// Delay returns StateDelay.
func (e *State) Delay() int64 { return StateDelay }

// Equal reports whether other is a State with equal fragments.
func (e *State) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *State) String() string { return Describe(e) }

// Apply animates the unit and sets its recorded state on finish.
func (e *State) Apply(tick int64) *anim.Animation {
	u, st := e.Record.Unit, e.Record.State
	return unitAnimation(e, u, tick, func() { u.SetState(st) })
}

// Move records a unit moving to a hex.
type Move struct {
	Base
	Record    UnitRecord
	Placement Placement
}

// NewMove records u moving to h at stacking position s, arriving in state st.
func NewMove(u *game.Unit, st game.UnitState, h game.Hex, s game.Stacking) *Move {
	return &Move{
		Base:      Base{kind: TypeMove},
		Record:    UnitRecord{Unit: u, State: st},
		Placement: Placement{Hex: h, Stacking: s},
	}
}

// WithHexAngle sets the facing the unit takes on arrival.
func (e *Move) WithHexAngle(angle int) *Move {
	e.Placement.HexAngle = &angle
	return e
}

// Fragments returns the unit record and the placement.
func (e *Move) Fragments() []Fragment { return []Fragment{&e.Record, &e.Placement} }

// Delay returns MoveDelay.
func (e *Move) Delay() int64 { return MoveDelay }

// Equal reports whether other is a Move with equal fragments.
func (e *Move) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Move) String() string { return Describe(e) }

// Apply animates the unit and places it in the target hex on finish.
func (e *Move) Apply(tick int64) *anim.Animation {
	u, st, p := e.Record.Unit, e.Record.State, e.Placement
	return unitAnimation(e, u, tick, func() {
		place(u, p)
		u.SetState(st)
	})
}

// Rotate records a unit turning in place.
type Rotate struct {
	Base
	Record      UnitRecord
	Orientation Orientation
}

// NewRotate records u rotating to angle.
func NewRotate(u *game.Unit, st game.UnitState, angle int) *Rotate {
	return &Rotate{
		Base:        Base{kind: TypeRotate},
		Record:      UnitRecord{Unit: u, State: st},
		Orientation: Orientation{Angle: angle},
	}
}

// Fragments returns the unit record and the orientation.
func (e *Rotate) Fragments() []Fragment { return []Fragment{&e.Record, &e.Orientation} }

// Delay returns RotateDelay.
func (e *Rotate) Delay() int64 { return RotateDelay }

// Equal reports whether other is a Rotate with equal fragments.
func (e *Rotate) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Rotate) String() string { return Describe(e) }

// Apply animates the unit and sets its facing on finish.
func (e *Rotate) Apply(tick int64) *anim.Animation {
	u, st, angle := e.Record.Unit, e.Record.State, e.Orientation.Angle
	return unitAnimation(e, u, tick, func() {
		u.SetAngle(angle)
		u.SetState(st)
	})
}

// Reorient records a change of facing that is not a rotation manoeuvre
// (e.g. a unit turning to face an attacker). It plays faster than Rotate.
type Reorient struct {
	Base
	Record      UnitRecord
	Orientation Orientation
}

// NewReorient records u facing angle.
func NewReorient(u *game.Unit, st game.UnitState, angle int) *Reorient {
	return &Reorient{
		Base:        Base{kind: TypeReorient},
		Record:      UnitRecord{Unit: u, State: st},
		Orientation: Orientation{Angle: angle},
	}
}

// Fragments returns the unit record and the orientation.
func (e *Reorient) Fragments() []Fragment { return []Fragment{&e.Record, &e.Orientation} }

// Delay returns ReorientDelay.
func (e *Reorient) Delay() int64 { return ReorientDelay }

// Equal reports whether other is a Reorient with equal fragments.
func (e *Reorient) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Reorient) String() string { return Describe(e) }

// Apply animates the unit and sets its facing on finish.
func (e *Reorient) Apply(tick int64) *anim.Animation {
	u, st, angle := e.Record.Unit, e.Record.State, e.Orientation.Angle
	return unitAnimation(e, u, tick, func() {
		u.SetAngle(angle)
		u.SetState(st)
	})
}

// Turn records a unit moving to a hex and facing a new direction.
type Turn struct {
	Base
	Record      UnitRecord
	Placement   Placement
	Orientation Orientation
}

// NewTurn records u moving to h and facing angle.
func NewTurn(u *game.Unit, st game.UnitState, h game.Hex, s game.Stacking, angle int) *Turn {
	return &Turn{
		Base:        Base{kind: TypeTurn},
		Record:      UnitRecord{Unit: u, State: st},
		Placement:   Placement{Hex: h, Stacking: s},
		Orientation: Orientation{Angle: angle},
	}
}

// Fragments returns the unit record, placement and orientation.
func (e *Turn) Fragments() []Fragment {
	return []Fragment{&e.Record, &e.Placement, &e.Orientation}
}

// Delay returns TurnDelay.
func (e *Turn) Delay() int64 { return TurnDelay }

// Equal reports whether other is a Turn with equal fragments.
func (e *Turn) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Turn) String() string { return Describe(e) }

// Apply animates the unit, then places it and sets its facing.
func (e *Turn) Apply(tick int64) *anim.Animation {
	u, st, p, angle := e.Record.Unit, e.Record.State, e.Placement, e.Orientation.Angle
	return unitAnimation(e, u, tick, func() {
		place(u, p)
		u.SetAngle(angle)
		u.SetState(st)
	})
}

// NextTurn records the end of a game turn.
type NextTurn struct {
	Base
}

// NewNextTurn records the end of the current turn of g.
func NewNextTurn(g *game.Game) *NextTurn {
	return &NextTurn{Base: Base{kind: TypeNextTurn, game: g}}
}

// Fragments returns nil: a turn change carries no fields.
func (e *NextTurn) Fragments() []Fragment { return nil }

// Delay returns NextTurnDelay.
func (e *NextTurn) Delay() int64 { return NextTurnDelay }

// Equal reports whether other is a NextTurn with equal fragments.
func (e *NextTurn) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *NextTurn) String() string { return Describe(e) }

// Apply animates the game and advances it to the next turn on finish.
func (e *NextTurn) Apply(tick int64) *anim.Animation {
	g := e.game
	return &anim.Animation{
		Target: g,
		Label:  e.String(),
		Start:  tick,
		Delay:  e.Delay(),
		Finish: g.NextTurn,
	}
}

// Rally records a unit's recovery attempt and the dice that decided it.
type Rally struct {
	Base
	Record UnitRecord
	Dice   DiceRoll
}

// NewRally records u rallying into st with the given dice. At least one die
// is always recorded.
func NewRally(u *game.Unit, st game.UnitState, die int, more ...int) *Rally {
	return &Rally{
		Base:   Base{kind: TypeRally},
		Record: UnitRecord{Unit: u, State: st},
		Dice:   rolled(die, more),
	}
}

// Fragments returns the unit record and the dice.
func (e *Rally) Fragments() []Fragment { return []Fragment{&e.Record, &e.Dice} }

// Delay returns DiceDelay.
func (e *Rally) Delay() int64 { return DiceDelay }

// Equal reports whether other is a Rally with equal fragments.
func (e *Rally) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Rally) String() string { return Describe(e) }

// Apply animates the unit and sets its rallied state on finish.
func (e *Rally) Apply(tick int64) *anim.Animation {
	u, st := e.Record.Unit, e.Record.State
	return unitAnimation(e, u, tick, func() { u.SetState(st) })
}

// Combat records the outcome of a fight for one unit and the dice rolled.
type Combat struct {
	Base
	Record UnitRecord
	Dice   DiceRoll
}

// NewCombat records u ending a combat in state st.
func NewCombat(u *game.Unit, st game.UnitState, die int, more ...int) *Combat {
	return &Combat{
		Base:   Base{kind: TypeCombat},
		Record: UnitRecord{Unit: u, State: st},
		Dice:   rolled(die, more),
	}
}

// Fragments returns the unit record and the dice.
func (e *Combat) Fragments() []Fragment { return []Fragment{&e.Record, &e.Dice} }

// Delay returns DiceDelay.
func (e *Combat) Delay() int64 { return DiceDelay }

// Equal reports whether other is a Combat with equal fragments.
func (e *Combat) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Combat) String() string { return Describe(e) }

// Apply animates the unit and sets its post-combat state on finish.
func (e *Combat) Apply(tick int64) *anim.Animation {
	u, st := e.Record.Unit, e.Record.State
	return unitAnimation(e, u, tick, func() { u.SetState(st) })
}

// Disengage records a unit breaking contact: a dice-decided move.
type Disengage struct {
	Base
	Record    UnitRecord
	Placement Placement
	Dice      DiceRoll
}

// NewDisengage records u withdrawing to h.
func NewDisengage(u *game.Unit, st game.UnitState, h game.Hex, s game.Stacking, die int, more ...int) *Disengage {
	return &Disengage{
		Base:      Base{kind: TypeDisengage},
		Record:    UnitRecord{Unit: u, State: st},
		Placement: Placement{Hex: h, Stacking: s},
		Dice:      rolled(die, more),
	}
}

// Fragments returns the unit record, placement and dice.
func (e *Disengage) Fragments() []Fragment {
	return []Fragment{&e.Record, &e.Placement, &e.Dice}
}

// Delay returns DisengageDelay.
func (e *Disengage) Delay() int64 { return DisengageDelay }

// Equal reports whether other is a Disengage with equal fragments.
func (e *Disengage) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *Disengage) String() string { return Describe(e) }

// Apply animates the unit and places it in the withdrawal hex on finish.
func (e *Disengage) Apply(tick int64) *anim.Animation {
	u, st, p := e.Record.Unit, e.Record.State, e.Placement
	return unitAnimation(e, u, tick, func() {
		place(u, p)
		u.SetState(st)
	})
}

// GiveOrder records an order instruction reaching a unit.
type GiveOrder struct {
	Base
	Record      UnitRecord
	Instruction Instruction
}

// NewGiveOrder records u receiving order o.
func NewGiveOrder(u *game.Unit, st game.UnitState, o game.Order) *GiveOrder {
	return &GiveOrder{
		Base:        Base{kind: TypeGiveOrder},
		Record:      UnitRecord{Unit: u, State: st},
		Instruction: Instruction{Order: o},
	}
}

// Fragments returns the unit record and the instruction.
func (e *GiveOrder) Fragments() []Fragment { return []Fragment{&e.Record, &e.Instruction} }

// Delay returns OrderDelay.
func (e *GiveOrder) Delay() int64 { return OrderDelay }

// Equal reports whether other is a GiveOrder with equal fragments.
func (e *GiveOrder) Equal(other Element) bool { return Equal(e, other) }

// String renders the element as type{fragments}.
func (e *GiveOrder) String() string { return Describe(e) }

// Apply animates the unit and sets its order and state on finish.
func (e *GiveOrder) Apply(tick int64) *anim.Animation {
	u, st, o := e.Record.Unit, e.Record.State, e.Instruction.Order
	return unitAnimation(e, u, tick, func() {
		u.SetOrder(o)
		u.SetState(st)
	})
}

func place(u *game.Unit, p Placement) {
	u.Place(p.Hex, p.Stacking)
	if p.HexAngle != nil {
		u.SetAngle(*p.HexAngle)
	}
}
