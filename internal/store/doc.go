// Package store provides SQLite-backed durable storage for game batches.
//
// Each row of the batches table is one committed batch, keyed by
// (game, count). The document column holds the batch as canonical JSON
// (RFC 8785), so a stored batch reads back byte-identical. hash is the
// batch content address from ir.BatchHash; submission_id identifies the
// write that stored the current document.
//
// # Ordering
//
// Batches are always read ORDER BY count ASC. Replay correctness depends on
// count order, never on insertion order or wall time.
//
// # Upsert
//
// Writing a batch whose (game, count) exists replaces the document only
// when its hash differs. Resubmitting an unchanged batch after a lost
// acknowledgement is therefore a no-op that keeps the original
// submission_id.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
