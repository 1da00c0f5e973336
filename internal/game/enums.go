package game

import (
	"errors"
	"fmt"
)

// ErrUnknownCode is returned when a wire code does not name a known value.
var ErrUnknownCode = errors.New("unknown code")

// codeTable maps the values of an int enum to wire codes and names.
type codeTable[T ~int] struct {
	kind  string
	codes []string
	names []string
}

func (c codeTable[T]) code(v T) string {
	if int(v) < 0 || int(v) >= len(c.codes) {
		return "?"
	}
	return c.codes[v]
}

func (c codeTable[T]) name(v T) string {
	if int(v) < 0 || int(v) >= len(c.names) {
		return fmt.Sprintf("%s(%d)", c.kind, int(v))
	}
	return c.names[v]
}

func (c codeTable[T]) parse(code string) (T, error) {
	for i, s := range c.codes {
		if s == code {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownCode, c.kind, code)
}

// Cohesion is the order state of a unit.
type Cohesion int

const (
	GoodOrder Cohesion = iota
	Disrupted
	Routed
	Destroyed
)

var cohesionCodes = codeTable[Cohesion]{
	kind:  "cohesion",
	codes: []string{"GO", "D", "R", "X"},
	names: []string{"good-order", "disrupted", "routed", "destroyed"},
}

func (c Cohesion) Code() string { return cohesionCodes.code(c) }
func (c Cohesion) String() string { return cohesionCodes.name(c) }

// ParseCohesion resolves a cohesion wire code.
func ParseCohesion(code string) (Cohesion, error) { return cohesionCodes.parse(code) }

// Tiredness is the fatigue state of a unit.
type Tiredness int

const (
	Fresh Tiredness = iota
	Tired
	Exhausted
)

var tirednessCodes = codeTable[Tiredness]{
	kind:  "tiredness",
	codes: []string{"F", "T", "E"},
	names: []string{"fresh", "tired", "exhausted"},
}

func (t Tiredness) Code() string { return tirednessCodes.code(t) }
func (t Tiredness) String() string { return tirednessCodes.name(t) }

// ParseTiredness resolves a tiredness wire code.
func ParseTiredness(code string) (Tiredness, error) { return tirednessCodes.parse(code) }

// Munitions is the ammunition level of a unit.
type Munitions int

const (
	Plenty Munitions = iota
	Scarce
	OutOfMunitions
)

var munitionsCodes = codeTable[Munitions]{
	kind:  "ammunition",
	codes: []string{"P", "S", "E"},
	names: []string{"plenty", "scarce", "exhausted"},
}

func (m Munitions) Code() string { return munitionsCodes.code(m) }
func (m Munitions) String() string { return munitionsCodes.name(m) }

// ParseMunitions resolves an ammunition wire code.
func ParseMunitions(code string) (Munitions, error) { return munitionsCodes.parse(code) }

// Charging is the charge status of a unit.
type Charging int

const (
	NoCharge Charging = iota
	BeginCharge
	CanCharge
	Charge
)

var chargingCodes = codeTable[Charging]{
	kind:  "charging",
	codes: []string{"N", "BC", "CC", "C"},
	names: []string{"none", "begin-charge", "can-charge", "charging"},
}

func (c Charging) Code() string { return chargingCodes.code(c) }
func (c Charging) String() string { return chargingCodes.name(c) }

// ParseCharging resolves a charging wire code.
func ParseCharging(code string) (Charging, error) { return chargingCodes.parse(code) }

// Stacking is the position of a unit within a shared hex.
type Stacking int

const (
	Top Stacking = iota
	Bottom
)

var stackingCodes = codeTable[Stacking]{
	kind:  "stacking",
	codes: []string{"T", "B"},
	names: []string{"top", "bottom"},
}

func (s Stacking) Code() string { return stackingCodes.code(s) }
func (s Stacking) String() string { return stackingCodes.name(s) }

// ParseStacking resolves a stacking wire code.
func ParseStacking(code string) (Stacking, error) { return stackingCodes.parse(code) }

// Order is the instruction most recently given to a unit.
type Order int

const (
	NoOrder Order = iota
	AttackOrder
	DefendOrder
	FireOrder
	RegroupOrder
)

var orderCodes = codeTable[Order]{
	kind:  "order",
	codes: []string{"", "A", "D", "F", "R"},
	names: []string{"none", "attack", "defend", "fire", "regroup"},
}

func (o Order) Code() string { return orderCodes.code(o) }
func (o Order) String() string { return orderCodes.name(o) }

// ParseOrder resolves an order wire code. The empty code is rejected: an
// element carrying an order always names one.
func ParseOrder(code string) (Order, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: order %q", ErrUnknownCode, code)
	}
	return orderCodes.parse(code)
}
