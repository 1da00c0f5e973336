package sequence

import (
	"errors"
	"fmt"
)

// DecodeErrorCode categorizes element reconstruction failures.
type DecodeErrorCode string

const (
	// ErrCodeUnknownType indicates the type tag is not registered.
	ErrCodeUnknownType DecodeErrorCode = "UNKNOWN_TYPE"

	// ErrCodeVersion indicates an element object from another wire version.
	ErrCodeVersion DecodeErrorCode = "VERSION_MISMATCH"

	// ErrCodeMissingField indicates a field the type composes is absent.
	ErrCodeMissingField DecodeErrorCode = "MISSING_FIELD"

	// ErrCodeBadField indicates a field with the wrong value type.
	ErrCodeBadField DecodeErrorCode = "BAD_FIELD"

	// ErrCodeBadCode indicates an enumerated field with an unknown code.
	ErrCodeBadCode DecodeErrorCode = "BAD_CODE"

	// ErrCodeUnresolvedRef indicates a unit name or hex the lookup does not know.
	ErrCodeUnresolvedRef DecodeErrorCode = "UNRESOLVED_REF"
)

// DecodeError is returned when an element object cannot be reconstructed.
// Reconstruction fails fast: dropping one element would corrupt the replay
// of everything after it.
type DecodeError struct {
	Code    DecodeErrorCode
	Type    string
	Field   string
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("%s: %s (type=%s, field=%s)", e.Code, e.Message, e.Type, e.Field)
	case e.Type != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsUnknownType reports whether err is an unknown-type decode error.
func IsUnknownType(err error) bool {
	return hasCode(err, ErrCodeUnknownType)
}

// IsUnresolvedRef reports whether err is an unresolved-reference decode error.
func IsUnresolvedRef(err error) bool {
	return hasCode(err, ErrCodeUnresolvedRef)
}

func hasCode(err error, code DecodeErrorCode) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
