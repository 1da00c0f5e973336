package persist

import (
	"errors"
	"fmt"

	"github.com/roach88/hexwar/internal/ir"
	"github.com/roach88/hexwar/internal/sequence"
)

// ErrVersionMismatch is returned when a batch document was written with a
// different wire version.
var ErrVersionMismatch = errors.New("batch version mismatch")

// Batch is the wire document for one committed batch.
type Batch struct {
	Version  int           `json:"version" msgpack:"version"`
	Game     string        `json:"game" msgpack:"game"`
	Count    int64         `json:"count" msgpack:"count"`
	Elements []ir.IRObject `json:"elements" msgpack:"elements"`
}

// NewBatch builds the document for seq's outstanding batch. ok is false when
// nothing is outstanding.
func NewBatch(seq *sequence.Sequence) (b Batch, ok bool) {
	elems, ok := seq.Validated()
	if !ok {
		return Batch{}, false
	}
	b = Batch{
		Version:  ir.WireVersion,
		Game:     seq.Game().Name(),
		Count:    seq.ValidatedCount(),
		Elements: make([]ir.IRObject, len(elems)),
	}
	for i, e := range elems {
		b.Elements[i] = sequence.Encode(e)
	}
	return b, true
}

// Hash returns the batch content address.
func (b Batch) Hash() (string, error) {
	return ir.BatchHash(b.Game, b.Count, b.Elements)
}

// CheckVersion reports ErrVersionMismatch for documents from another wire
// version.
func (b Batch) CheckVersion() error {
	if b.Version != ir.WireVersion {
		return fmt.Errorf("%w: game %q count %d has version %d, want %d",
			ErrVersionMismatch, b.Game, b.Count, b.Version, ir.WireVersion)
	}
	return nil
}

func (b Batch) toIR() ir.IRObject {
	elems := make(ir.IRArray, len(b.Elements))
	for i, e := range b.Elements {
		elems[i] = e
	}
	return ir.IRObject{
		"version":  ir.IRInt(b.Version),
		"game":     ir.IRString(b.Game),
		"count":    ir.IRInt(b.Count),
		"elements": elems,
	}
}

func batchFromIR(v ir.IRValue) (Batch, error) {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return Batch{}, fmt.Errorf("batch document: want object, got %T", v)
	}
	version, err := obj.Int("version")
	if err != nil {
		return Batch{}, fmt.Errorf("batch document: version: %w", err)
	}
	game, err := obj.Str("game")
	if err != nil {
		return Batch{}, fmt.Errorf("batch document: game: %w", err)
	}
	count, err := obj.Int("count")
	if err != nil {
		return Batch{}, fmt.Errorf("batch document: count: %w", err)
	}
	raw, ok := obj["elements"].(ir.IRArray)
	if !ok {
		return Batch{}, fmt.Errorf("batch document: elements: want array, got %T", obj["elements"])
	}

	b := Batch{
		Version:  int(version),
		Game:     game,
		Count:    count,
		Elements: make([]ir.IRObject, len(raw)),
	}
	for i, e := range raw {
		elem, ok := e.(ir.IRObject)
		if !ok {
			return Batch{}, fmt.Errorf("batch document: elements[%d]: want object, got %T", i, e)
		}
		b.Elements[i] = elem
	}
	return b, nil
}

func batchesFromIR(v ir.IRValue) ([]Batch, error) {
	arr, ok := v.(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("batch list: want array, got %T", v)
	}
	out := make([]Batch, len(arr))
	for i, item := range arr {
		b, err := batchFromIR(item)
		if err != nil {
			return nil, fmt.Errorf("batch list[%d]: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
