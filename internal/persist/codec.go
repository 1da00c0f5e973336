package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/hexwar/internal/ir"
)

// Content types understood by the codecs.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// Codec encodes batch documents and batch lists.
type Codec interface {
	ContentType() string
	Marshal(b Batch) ([]byte, error)
	Unmarshal(data []byte) (Batch, error)
	MarshalList(bs []Batch) ([]byte, error)
	UnmarshalList(data []byte) ([]Batch, error)
}

// JSONCodec writes canonical JSON. Equal batches encode to identical bytes.
type JSONCodec struct{}

func (JSONCodec) ContentType() string { return ContentTypeJSON }

func (JSONCodec) Marshal(b Batch) ([]byte, error) {
	data, err := ir.MarshalCanonical(b.toIR())
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}
	return data, nil
}

func (JSONCodec) MarshalList(bs []Batch) ([]byte, error) {
	arr := make(ir.IRArray, len(bs))
	for i, b := range bs {
		arr[i] = b.toIR()
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return nil, fmt.Errorf("marshal batch list: %w", err)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte) (Batch, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return Batch{}, err
	}
	return batchFromIR(v)
}

func (JSONCodec) UnmarshalList(data []byte) ([]Batch, error) {
	v, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return batchesFromIR(v)
}

func decodeJSON(data []byte) (ir.IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	v, err := ir.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// MsgpackCodec writes msgpack with sorted map keys.
type MsgpackCodec struct{}

func (MsgpackCodec) ContentType() string { return ContentTypeMsgpack }

func (MsgpackCodec) Marshal(b Batch) ([]byte, error) {
	return encodeMsgpack(ir.ToGo(b.toIR()))
}

func (MsgpackCodec) MarshalList(bs []Batch) ([]byte, error) {
	arr := make(ir.IRArray, len(bs))
	for i, b := range bs {
		arr[i] = b.toIR()
	}
	return encodeMsgpack(ir.ToGo(arr))
}

func (MsgpackCodec) Unmarshal(data []byte) (Batch, error) {
	v, err := decodeMsgpack(data)
	if err != nil {
		return Batch{}, err
	}
	return batchFromIR(v)
}

func (MsgpackCodec) UnmarshalList(data []byte) ([]Batch, error) {
	v, err := decodeMsgpack(data)
	if err != nil {
		return nil, err
	}
	return batchesFromIR(v)
}

func encodeMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeMsgpack(data []byte) (ir.IRValue, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	raw, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	v, err := ir.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	return v, nil
}

// CodecFor returns the codec for a Content-Type or Accept value. Parameters
// are ignored. Unknown or empty types get the JSON codec.
func CodecFor(contentType string) Codec {
	mt, _, err := mime.ParseMediaType(contentType)
	if err == nil && mt == ContentTypeMsgpack {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

// CodecByName resolves a configured codec name ("json" or "msgpack").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want json or msgpack)", name)
	}
}
