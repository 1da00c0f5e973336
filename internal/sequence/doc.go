// Package sequence records game-state mutations as typed, ordered elements.
//
// An Element is a snapshot of one transition of a unit or of the game. Each
// concrete element type is a Base (type tag and game back-reference) plus a
// fixed list of fragments. A fragment owns a group of fields and implements
// their equality, string form and wire encoding. Element-level equality,
// string form and encoding walk the fragments in this fixed order:
//
//	UnitRecord -> Placement -> Orientation -> DiceRoll -> Instruction
//
// Fields a type does not compose are absent from it entirely: a Rotate has
// no hex, a State has no angle.
//
// The Sequence is the per-game log. Live play appends to the pending buffer
// inside undo transactions; Commit freezes the buffer into the validated
// batch awaiting persistence; Acknowledge releases it. Replay turns a
// buffer of reconstructed elements into chained animations.
//
// The Registry maps type tags to constructors. It is built once and passed
// explicitly to whatever decodes elements.
package sequence
