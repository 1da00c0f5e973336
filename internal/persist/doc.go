// Package persist turns committed sequence batches into versioned wire
// documents and exchanges them with a persistence service.
//
// A Batch is {version, game, count, elements}. Elements carry only the
// fields their fragments define (see sequence.Encode). Two codecs are
// provided: canonical JSON (RFC 8785, the hashing and golden-file form) and
// msgpack. The CUE schema in schema.go describes the document shape and is
// enforced by the HTTP server and the validate command.
//
// The Adapter drives the commit protocol against a Service:
//
//	Submit: seq.Commit() -> PutBatch -> seq.Acknowledge()
//	Load:   Batches(game, seq.Count()+1) -> sort by count -> seq.AddElement
//
// On a failed PutBatch the sequence keeps its validated batch, and the next
// Submit resends it unchanged.
package persist
