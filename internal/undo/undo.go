// Package undo provides the undo/redo stack shared by the sequence log and
// the game entities.
//
// Mutations register reversible commands while a transaction is open. A
// transaction groups every command recorded between Begin and End so one
// player action (which may move a unit, change its state and append a
// sequence element) is undone as a unit. Outside a transaction Record is a
// no-op: replay and remote reconstruction mutate state without leaving
// restore points behind.
package undo

// Command is a reversible mutation. Undo restores the state before the
// mutation; Redo re-applies it.
type Command struct {
	Undo func()
	Redo func()
}

type transaction []Command

// Stack is the undo/redo stack. It is not safe for concurrent use; the game
// session mutates it from a single goroutine.
type Stack struct {
	open   transaction
	depth  int
	done   []transaction
	undone []transaction
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{}
}

// Begin opens a transaction. Nested calls join the outermost transaction.
func (s *Stack) Begin() {
	s.depth++
}

// End closes the transaction opened by the matching Begin. When the
// outermost transaction closes with recorded commands, it becomes the next
// undo step and the redo history is discarded.
func (s *Stack) End() {
	if s.depth == 0 {
		return
	}
	s.depth--
	if s.depth > 0 {
		return
	}
	if len(s.open) > 0 {
		s.done = append(s.done, s.open)
		s.undone = nil
	}
	s.open = nil
}

// Transact runs fn inside a transaction.
func (s *Stack) Transact(fn func()) {
	s.Begin()
	defer s.End()
	fn()
}

// Recording reports whether a transaction is open.
func (s *Stack) Recording() bool {
	return s.depth > 0
}

// Record registers c in the open transaction. It does nothing when no
// transaction is open.
func (s *Stack) Record(c Command) {
	if s.depth == 0 {
		return
	}
	s.open = append(s.open, c)
}

// Undo reverts the most recent transaction. An open transaction is closed
// first, so it is the one reverted. Returns false if there is nothing to undo.
func (s *Stack) Undo() bool {
	s.closeAll()
	if len(s.done) == 0 {
		return false
	}
	tx := s.done[len(s.done)-1]
	s.done = s.done[:len(s.done)-1]
	for i := len(tx) - 1; i >= 0; i-- {
		tx[i].Undo()
	}
	s.undone = append(s.undone, tx)
	return true
}

// Redo re-applies the most recently undone transaction.
// Returns false if there is nothing to redo.
func (s *Stack) Redo() bool {
	s.closeAll()
	if len(s.undone) == 0 {
		return false
	}
	tx := s.undone[len(s.undone)-1]
	s.undone = s.undone[:len(s.undone)-1]
	for _, c := range tx {
		c.Redo()
	}
	s.done = append(s.done, tx)
	return true
}

// CanUndo reports whether Undo would revert something.
func (s *Stack) CanUndo() bool {
	return len(s.done) > 0 || len(s.open) > 0
}

// CanRedo reports whether Redo would re-apply something.
func (s *Stack) CanRedo() bool {
	return len(s.undone) > 0 && len(s.open) == 0
}

// Clear drops all history. Called once a batch is committed: committed
// elements can no longer be taken back.
func (s *Stack) Clear() {
	s.open = nil
	s.depth = 0
	s.done = nil
	s.undone = nil
}

func (s *Stack) closeAll() {
	for s.depth > 0 {
		s.End()
	}
}

// Set assigns v to *p and records the (before, after) pair on s.
// s may be nil, in which case the assignment is not recorded.
func Set[T any](s *Stack, p *T, v T) {
	before := *p
	*p = v
	if s == nil {
		return
	}
	s.Record(Command{
		Undo: func() { *p = before },
		Redo: func() { *p = v },
	})
}
