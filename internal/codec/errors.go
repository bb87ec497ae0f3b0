package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when a field slice has the wrong width.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrOutOfRange is returned when a value cannot be represented in its wire width.
	ErrOutOfRange = errors.New("value out of range")
)

// LengthError describes a slice handed to a decoder with the wrong width.
type LengthError struct {
	Kind string
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: want %d bytes, got %d", e.Kind, e.Want, e.Got)
}

// Is reports whether target is ErrLengthMismatch.
func (e *LengthError) Is(target error) bool {
	return target == ErrLengthMismatch
}

func checkLen(kind string, b []byte, want int) error {
	if len(b) != want {
		return &LengthError{Kind: kind, Want: want, Got: len(b)}
	}
	return nil
}
