package sequence

import (
	"strings"

	"github.com/roach88/hexwar/internal/anim"
	"github.com/roach88/hexwar/internal/game"
)

// Element is one recorded transition.
//
// Elements are values: once appended to a sequence they are not modified,
// except for the game back-reference set by the owning sequence.
type Element interface {
	// Type returns the registered type tag.
	Type() string

	// Game returns the owning game, or nil before the element is added to
	// a sequence or decoded.
	Game() *game.Game

	// SetGame sets the owning game back-reference.
	SetGame(g *game.Game)

	// Fragments returns the element's fragments in canonical order.
	Fragments() []Fragment

	// Delay is the element's intrinsic playback duration.
	Delay() int64

	// Apply returns the animation replaying the element from tick. It does
	// not mutate anything; running the animation does.
	Apply(tick int64) *anim.Animation

	// Equal reports structural equality with other.
	Equal(other Element) bool

	String() string
}

// Base holds what every element has: its type tag and owning game.
type Base struct {
	kind string
	game *game.Game
}

func (b *Base) Type() string { return b.kind }
func (b *Base) Game() *game.Game { return b.game }
func (b *Base) SetGame(g *game.Game) { b.game = g }

// Equal reports whether a and b have the same type and equal fragments.
// Referenced units and games compare by identity. An element not yet attached
// to a game matches one that is.
func Equal(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	if ga, gb := a.Game(), b.Game(); ga != nil && gb != nil && ga != gb {
		return false
	}
	fa, fb := a.Fragments(), b.Fragments()
	if len(fa) != len(fb) {
		return false
	}
	for i := range fa {
		if !fa[i].Equal(fb[i]) {
			return false
		}
	}
	return true
}

// Describe renders e as type{fragment; fragment}. Used for diagnostics and
// test failure messages only.
func Describe(e Element) string {
	var b strings.Builder
	b.WriteString(e.Type())
	b.WriteByte('{')
	for i, f := range e.Fragments() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Describe())
	}
	b.WriteByte('}')
	return b.String()
}
