// Package harness runs replay scenarios end to end.
//
// A scenario plays one game session twice. The recording participant
// builds the roster, performs each step as a live mutation inside an undo
// transaction, and submits each batch through the persistence adapter to an
// in-memory service. The remote participant builds the same roster, loads
// every stored batch in the scenario's delivery order, and replays them
// through the animation scheduler. The harness then checks that both
// participants converged and evaluates the scenario's assertions against
// the remote side.
//
// # Scenario Format
//
//	name: move_then_rotate
//	description: "What this scenario validates"
//	roster:
//	  game: ligny
//	  map: { cols: 12, rows: 10 }
//	  units:
//	    - { name: 1st-Hussars, steps: 4, col: 2, row: 3 }
//	batches:
//	  - steps:
//	      - { type: move, unit: 1st-Hussars, col: 3, row: 3, stacking: T }
//	      - { type: rotate, unit: 1st-Hussars, angle: 60 }
//	    fail_submits: 1
//	  - steps:
//	      - { type: next-turn }
//	delivery: reversed
//	assertions:
//	  - { type: final_unit, unit: 1st-Hussars, expect: { col: 3, angle: 60 } }
//	  - { type: trace_order, elements: [move, rotate, next-turn] }
//
// Step types are element type tags plus "undo", which takes back the
// previous step of the batch. Unit state fields on a step change the unit's
// current state; omitted fields keep their value.
//
// # Assertion Types
//
//   - final_unit: subset match on a unit's fields after replay
//   - final_turn: turn counter after replay
//   - final_count: batch count after replay
//   - trace_order: element types activate in the given order
//   - trace_count: number of events of a kind, optionally for one element type
//
// # Deterministic Testing
//
// Replays run on a tick scheduler with no wall clock, so traces are
// identical across runs and are compared against golden snapshots in
// testdata/golden.
package harness
