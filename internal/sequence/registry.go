package sequence

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/ir"
)

// Constructor returns an empty element of one type, ready to be filled by
// Decode.
type Constructor func() Element

// Registry maps type tags to constructors. Build it once at startup and pass
// it to decoders; it is read-only after registration.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry returns a registry with every built-in element type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(TypeState, func() Element { return &State{Base: Base{kind: TypeState}} })
	r.MustRegister(TypeMove, func() Element { return &Move{Base: Base{kind: TypeMove}} })
	r.MustRegister(TypeRotate, func() Element { return &Rotate{Base: Base{kind: TypeRotate}} })
	r.MustRegister(TypeReorient, func() Element { return &Reorient{Base: Base{kind: TypeReorient}} })
	r.MustRegister(TypeTurn, func() Element { return &Turn{Base: Base{kind: TypeTurn}} })
	r.MustRegister(TypeNextTurn, func() Element { return &NextTurn{Base: Base{kind: TypeNextTurn}} })
	r.MustRegister(TypeRally, func() Element { return &Rally{Base: Base{kind: TypeRally}} })
	r.MustRegister(TypeCombat, func() Element { return &Combat{Base: Base{kind: TypeCombat}} })
	r.MustRegister(TypeDisengage, func() Element { return &Disengage{Base: Base{kind: TypeDisengage}} })
	r.MustRegister(TypeGiveOrder, func() Element { return &GiveOrder{Base: Base{kind: TypeGiveOrder}} })
	return r
}

// Register adds a constructor for kind. Registering a tag twice is an error.
func (r *Registry) Register(kind string, c Constructor) error {
	if kind == "" {
		return errors.New("register element: empty type tag")
	}
	if _, exists := r.ctors[kind]; exists {
		return fmt.Errorf("register element: duplicate type tag %q", kind)
	}
	r.ctors[kind] = c
	return nil
}

// MustRegister is Register for static registration; it panics on error.
func (r *Registry) MustRegister(kind string, c Constructor) {
	if err := r.Register(kind, c); err != nil {
		panic(err)
	}
}

// New returns an empty element of the given type.
func (r *Registry) New(kind string) (Element, error) {
	c, ok := r.ctors[kind]
	if !ok {
		return nil, &DecodeError{Code: ErrCodeUnknownType, Type: kind, Message: "type tag is not registered"}
	}
	return c(), nil
}

// Types returns the registered type tags in sorted order.
func (r *Registry) Types() []string {
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Encode returns the wire form of e: version, type, then every fragment's
// fields in canonical fragment order.
func Encode(e Element) ir.IRObject {
	obj := ir.IRObject{
		"version": ir.IRInt(ir.WireVersion),
		"type":    ir.IRString(e.Type()),
	}
	for _, f := range e.Fragments() {
		f.Encode(obj)
	}
	return obj
}

// Decode reconstructs an element from its wire form. Unit names and hexes
// resolve through lk, and the element's game is lk's game.
func (r *Registry) Decode(obj ir.IRObject, lk game.Lookup) (Element, error) {
	kind, err := getStr(obj, "type")
	if err != nil {
		return nil, err
	}
	version, err := getInt(obj, "version")
	if err != nil {
		return nil, withType(err, kind)
	}
	if version != ir.WireVersion {
		return nil, &DecodeError{
			Code:    ErrCodeVersion,
			Type:    kind,
			Field:   "version",
			Message: fmt.Sprintf("element version %d, want %d", version, ir.WireVersion),
		}
	}

	e, err := r.New(kind)
	if err != nil {
		return nil, err
	}
	for _, f := range e.Fragments() {
		if err := f.Decode(obj, lk); err != nil {
			return nil, withType(err, kind)
		}
	}
	e.SetGame(lk.Game())
	return e, nil
}

// DecodeAll decodes objs in order, stopping at the first failure.
func (r *Registry) DecodeAll(objs []ir.IRObject, lk game.Lookup) ([]Element, error) {
	out := make([]Element, 0, len(objs))
	for i, obj := range objs {
		e, err := r.Decode(obj, lk)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func withType(err error, kind string) error {
	var de *DecodeError
	if errors.As(err, &de) && de.Type == "" {
		de.Type = kind
	}
	return err
}
