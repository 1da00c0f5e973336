package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/ir"
)

// Fragment is an independent group of element fields. It contributes to
// element equality, string form and wire encoding.
type Fragment interface {
	// Equal reports whether other is the same fragment kind with equal
	// fields. Entity references compare by identity.
	Equal(other Fragment) bool

	// Describe renders every field for diagnostics.
	Describe() string

	// Encode writes the fragment's wire fields into obj.
	Encode(obj ir.IRObject)

	// Decode reads the fragment's wire fields from obj, resolving entity
	// references through lk.
	Decode(obj ir.IRObject, lk game.Lookup) error
}

// UnitRecord is the unit an element refers to and the state it records.
type UnitRecord struct {
	Unit  *game.Unit
	State game.UnitState
}

// Equal compares the unit by identity and the state by value.
func (r *UnitRecord) Equal(other Fragment) bool {
	o, ok := other.(*UnitRecord)
	return ok && o.Unit == r.Unit && o.State == r.State
}

// Describe renders the unit name followed by every state field.
func (r *UnitRecord) Describe() string {
	return fmt.Sprintf("unit=%s %s", unitName(r.Unit), r.State)
}

// Encode writes the unit name and one wire field per state attribute.
func (r *UnitRecord) Encode(obj ir.IRObject) {
	obj["unit"] = ir.IRString(unitName(r.Unit))
	obj["steps"] = ir.IRInt(r.State.Steps)
	obj["cohesion"] = ir.IRString(r.State.Cohesion.Code())
	obj["tiredness"] = ir.IRString(r.State.Tiredness.Code())
	obj["ammunition"] = ir.IRString(r.State.Munitions.Code())
	obj["charging"] = ir.IRString(r.State.Charging.Code())
	obj["engaging"] = ir.IRBool(r.State.Engaging)
	obj["orderGiven"] = ir.IRBool(r.State.OrderGiven)
	obj["played"] = ir.IRBool(r.State.Played)
}

// Decode resolves the unit by name and parses the state codes.
func (r *UnitRecord) Decode(obj ir.IRObject, lk game.Lookup) error {
	name, err := getStr(obj, "unit")
	if err != nil {
		return err
	}
	u, ok := lk.Unit(name)
	if !ok {
		return &DecodeError{Code: ErrCodeUnresolvedRef, Field: "unit", Message: fmt.Sprintf("no unit named %q", name)}
	}

	var st game.UnitState
	steps, err := getInt(obj, "steps")
	if err != nil {
		return err
	}
	st.Steps = int(steps)
	if st.Cohesion, err = getCode(obj, "cohesion", game.ParseCohesion); err != nil {
		return err
	}
	if st.Tiredness, err = getCode(obj, "tiredness", game.ParseTiredness); err != nil {
		return err
	}
	if st.Munitions, err = getCode(obj, "ammunition", game.ParseMunitions); err != nil {
		return err
	}
	if st.Charging, err = getCode(obj, "charging", game.ParseCharging); err != nil {
		return err
	}
	if st.Engaging, err = getBool(obj, "engaging"); err != nil {
		return err
	}
	if st.OrderGiven, err = getBool(obj, "orderGiven"); err != nil {
		return err
	}
	if st.Played, err = getBool(obj, "played"); err != nil {
		return err
	}

	r.Unit = u
	r.State = st
	return nil
}

// Placement is a target hex with the stacking position inside it, and an
// optional facing on arrival.
type Placement struct {
	Hex      game.Hex
	Stacking game.Stacking
	HexAngle *int
}

// Equal also requires the hex angle to be present on both or neither.
func (p *Placement) Equal(other Fragment) bool {
	o, ok := other.(*Placement)
	if !ok || o.Hex != p.Hex || o.Stacking != p.Stacking {
		return false
	}
	if o.HexAngle == nil || p.HexAngle == nil {
		return o.HexAngle == nil && p.HexAngle == nil
	}
	return *o.HexAngle == *p.HexAngle
}

// Describe renders the hex and stacking, plus hexAngle when set.
func (p *Placement) Describe() string {
	s := fmt.Sprintf("hex=%s stacking=%s", p.Hex, p.Stacking.Code())
	if p.HexAngle != nil {
		s += " hexAngle=" + strconv.Itoa(*p.HexAngle)
	}
	return s
}

// Encode omits hexAngle when no arrival facing is set.
func (p *Placement) Encode(obj ir.IRObject) {
	obj["hexCol"] = ir.IRInt(p.Hex.Col)
	obj["hexRow"] = ir.IRInt(p.Hex.Row)
	obj["stacking"] = ir.IRString(p.Stacking.Code())
	if p.HexAngle != nil {
		obj["hexAngle"] = ir.IRInt(*p.HexAngle)
	}
}

// Decode fails with UNRESOLVED_REF when the hex is not on the map.
func (p *Placement) Decode(obj ir.IRObject, lk game.Lookup) error {
	col, err := getInt(obj, "hexCol")
	if err != nil {
		return err
	}
	row, err := getInt(obj, "hexRow")
	if err != nil {
		return err
	}
	h, ok := lk.Hex(int(col), int(row))
	if !ok {
		return &DecodeError{Code: ErrCodeUnresolvedRef, Field: "hexCol", Message: fmt.Sprintf("no hex at (%d,%d)", col, row)}
	}
	stacking, err := getCode(obj, "stacking", game.ParseStacking)
	if err != nil {
		return err
	}

	p.Hex = h
	p.Stacking = stacking
	p.HexAngle = nil
	if obj.Has("hexAngle") {
		angle, err := getInt(obj, "hexAngle")
		if err != nil {
			return err
		}
		a := int(angle)
		p.HexAngle = &a
	}
	return nil
}

// Orientation is a facing in degrees.
type Orientation struct {
	Angle int
}

func (o *Orientation) Equal(other Fragment) bool {
	x, ok := other.(*Orientation)
	return ok && x.Angle == o.Angle
}

func (o *Orientation) Describe() string {
	return "angle=" + strconv.Itoa(o.Angle)
}

// Encode writes angle.
func (o *Orientation) Encode(obj ir.IRObject) {
	obj["angle"] = ir.IRInt(o.Angle)
}

// Decode reads angle.
func (o *Orientation) Decode(obj ir.IRObject, _ game.Lookup) error {
	angle, err := getInt(obj, "angle")
	if err != nil {
		return err
	}
	o.Angle = int(angle)
	return nil
}

// DiceRoll is the dice result shown with an element, one value per die.
// The dice source itself is the rules engine's concern.
type DiceRoll struct {
	Values []int
}

// Equal compares dice values in order.
func (d *DiceRoll) Equal(other Fragment) bool {
	o, ok := other.(*DiceRoll)
	if !ok || len(o.Values) != len(d.Values) {
		return false
	}
	for i := range d.Values {
		if d.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

// Describe renders the dice as dice1=.. dice2=..
func (d *DiceRoll) Describe() string {
	parts := make([]string, len(d.Values))
	for i, v := range d.Values {
		parts[i] = fmt.Sprintf("dice%d=%d", i+1, v)
	}
	return strings.Join(parts, " ")
}

// Encode writes dice1 through diceN.
func (d *DiceRoll) Encode(obj ir.IRObject) {
	for i, v := range d.Values {
		obj[diceKey(i)] = ir.IRInt(v)
	}
}

// Decode reads consecutive dice keys from dice1. An element without
// dice1 fails with MISSING_FIELD.
func (d *DiceRoll) Decode(obj ir.IRObject, _ game.Lookup) error {
	var values []int
	for i := 0; obj.Has(diceKey(i)); i++ {
		v, err := getInt(obj, diceKey(i))
		if err != nil {
			return err
		}
		values = append(values, int(v))
	}
	if len(values) == 0 {
		return &DecodeError{Code: ErrCodeMissingField, Field: diceKey(0), Message: "no dice values"}
	}
	d.Values = values
	return nil
}

func diceKey(i int) string {
	return "dice" + strconv.Itoa(i+1)
}

func rolled(die int, more []int) DiceRoll {
	return DiceRoll{Values: append([]int{die}, more...)}
}

// Instruction is the order given to a unit.
type Instruction struct {
	Order game.Order
}

func (in *Instruction) Equal(other Fragment) bool {
	o, ok := other.(*Instruction)
	return ok && o.Order == in.Order
}

func (in *Instruction) Describe() string {
	return "order=" + in.Order.Code()
}

// Encode writes the order code.
func (in *Instruction) Encode(obj ir.IRObject) {
	obj["order"] = ir.IRString(in.Order.Code())
}

// Decode rejects an unknown or empty order code.
func (in *Instruction) Decode(obj ir.IRObject, _ game.Lookup) error {
	order, err := getCode(obj, "order", game.ParseOrder)
	if err != nil {
		return err
	}
	in.Order = order
	return nil
}

func unitName(u *game.Unit) string {
	if u == nil {
		return ""
	}
	return u.Name()
}

func getStr(obj ir.IRObject, key string) (string, error) {
	s, err := obj.Str(key)
	return s, fieldError(key, err)
}

func getInt(obj ir.IRObject, key string) (int64, error) {
	n, err := obj.Int(key)
	return n, fieldError(key, err)
}

func getBool(obj ir.IRObject, key string) (bool, error) {
	b, err := obj.Bool(key)
	return b, fieldError(key, err)
}

func getCode[T any](obj ir.IRObject, key string, parse func(string) (T, error)) (T, error) {
	var zero T
	code, err := getStr(obj, key)
	if err != nil {
		return zero, err
	}
	v, err := parse(code)
	if err != nil {
		return zero, &DecodeError{Code: ErrCodeBadCode, Field: key, Message: err.Error(), Err: err}
	}
	return v, nil
}

func fieldError(key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ir.ErrMissingKey) {
		return &DecodeError{Code: ErrCodeMissingField, Field: key, Message: "field is required", Err: err}
	}
	return &DecodeError{Code: ErrCodeBadField, Field: key, Message: err.Error(), Err: err}
}
