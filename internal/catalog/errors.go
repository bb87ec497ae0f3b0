package catalog

import (
	"errors"
	"fmt"

	"github.com/rickgao/bmv-data/internal/model"
)

var (
	// ErrUnknownType is returned for a type tag outside the decodable set.
	// Callers skip the frame.
	ErrUnknownType = errors.New("unknown message type")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Type   model.MessageType
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Type == model.TypeUnknown {
		return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("message %s: %s=%v: %s", e.Type, e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
