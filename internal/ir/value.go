package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRNull, IRString, IRInt, IRBool, IRArray, and IRObject implement this.
// There is no float type: every numeric wire field is an integer.
type IRValue interface {
	irValue()
}

// IRNull represents a JSON null value.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64, never float64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// ErrMissingKey is returned by the typed accessors when a key is absent.
var ErrMissingKey = errors.New("missing key")

// TypeError reports a key whose value has an unexpected IR type.
type TypeError struct {
	Key  string
	Want string
	Got  IRValue
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("key %q: want %s, got %T", e.Key, e.Want, e.Got)
}

// Has reports whether key is present.
func (obj IRObject) Has(key string) bool {
	_, ok := obj[key]
	return ok
}

// Str returns the string stored at key.
func (obj IRObject) Str(key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	s, ok := v.(IRString)
	if !ok {
		return "", &TypeError{Key: key, Want: "string", Got: v}
	}
	return string(s), nil
}

// Int returns the integer stored at key.
func (obj IRObject) Int(key string) (int64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	n, ok := v.(IRInt)
	if !ok {
		return 0, &TypeError{Key: key, Want: "int", Got: v}
	}
	return int64(n), nil
}

// Bool returns the boolean stored at key.
func (obj IRObject) Bool(key string) (bool, error) {
	v, ok := obj[key]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	b, ok := v.(IRBool)
	if !ok {
		return false, &TypeError{Key: key, Want: "bool", Got: v}
	}
	return bool(b), nil
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs outside the BMP.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// Clone returns a shallow copy of obj. Nested arrays and objects are shared.
func (obj IRObject) Clone() IRObject {
	out := make(IRObject, len(obj))
	for k, v := range obj {
		out[k] = v
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler for IRObject.
func (obj *IRObject) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*obj = make(IRObject, len(raw))
	for k, v := range raw {
		val, err := unmarshalIRValue(v)
		if err != nil {
			return fmt.Errorf("IRObject key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for IRArray.
func (arr *IRArray) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*arr = make(IRArray, len(raw))
	for i, v := range raw {
		val, err := unmarshalIRValue(v)
		if err != nil {
			return fmt.Errorf("IRArray index %d: %w", i, err)
		}
		(*arr)[i] = val
	}
	return nil
}

// unmarshalIRValue decodes a JSON value into the matching IRValue type.
// Floats are rejected; null becomes IRNull.
func unmarshalIRValue(data []byte) (IRValue, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return IRString(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return IRBool(b), nil

	case 'n':
		return IRNull{}, nil

	case '[':
		var arr IRArray
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, err
		}
		return arr, nil

	case '{':
		var obj IRObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		return obj, nil

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats not allowed in IR: %s", string(data))
		}
		return IRInt(i), nil
	}
}

// MarshalJSON implements json.Marshaler for IRObject with sorted keys.
// This is NOT canonical marshaling; use MarshalCanonical for hashing.
func (obj IRObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalIRValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIRValue marshals an IRValue to JSON bytes.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return json.Marshal(int64(val))
	case IRBool:
		return json.Marshal(bool(val))
	case IRArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalIRValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case IRObject:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// FromGo converts a decoded Go value to an IRValue. It accepts the shapes
// produced by encoding/json (with UseNumber) and by msgpack decoders, which
// report integers with their narrowest width.
func FromGo(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return IRInt(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats not allowed in IR: %s", val)
		}
		return IRInt(n), nil
	case float32, float64:
		return nil, fmt.Errorf("floats not allowed in IR: %v", val)
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToGo converts an IRValue to plain Go values (string, int64, bool, []any,
// map[string]any, nil) for encoders that do not know the IR types.
func ToGo(v IRValue) any {
	switch val := v.(type) {
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRBool:
		return bool(val)
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToGo(elem)
		}
		return out
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToGo(elem)
		}
		return out
	default:
		return nil
	}
}
