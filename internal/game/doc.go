// Package game holds the entities whose transitions the sequence log records:
// the Game, its Units, and hex coordinates.
//
// Only the state the log snapshots lives here. Deciding whether a transition
// is legal belongs to the rules engine, and hex geometry and rendering belong
// to the client; neither is part of this package.
//
// Unit state machines:
//
//	Cohesion:  GoodOrder -> Disrupted -> Routed -> Destroyed
//	Tiredness: Fresh -> Tired -> Exhausted
//	Munitions: Plenty -> Scarce -> Exhausted
//	Charging:  None -> BeginCharge -> CanCharge -> Charging
//
// Every enumerated value has a short wire code (e.g. "GO", "BC") used by the
// serialized form so the format does not depend on Go constant values.
package game
