package invoice

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNoExtractableContent is returned when the input text carries no information.
	ErrNoExtractableContent = errors.New("no extractable content")

	// ErrTotalsMismatch matches any *TotalsMismatchError via errors.Is.
	ErrTotalsMismatch = errors.New("totals mismatch")
)

// FieldError reports a construction-time constraint violation on a single field.
type FieldError struct {
	Entity string
	Field  string
	Value  string
	Reason string
}

func newFieldError(entity, field, value, reason string) *FieldError {
	return &FieldError{Entity: entity, Field: field, Value: value, Reason: reason}
}

func newNumericFieldError(entity, field string, value float64, reason string) *FieldError {
	return newFieldError(entity, field, strconv.FormatFloat(value, 'f', -1, 64), reason)
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s.%s %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s.%s %s (got %s)", e.Entity, e.Field, e.Reason, e.Value)
}

// TotalsMismatchError reports that the sum of line items disagrees with the
// extracted invoice total. Both values are rounded to 2 decimal places.
type TotalsMismatchError struct {
	Computed  float64
	Extracted float64
}

func (e *TotalsMismatchError) Error() string {
	return fmt.Sprintf("totals mismatch: computed=%.2f, extracted=%.2f", e.Computed, e.Extracted)
}

// Is reports ErrTotalsMismatch as equivalent.
func (e *TotalsMismatchError) Is(target error) bool {
	return target == ErrTotalsMismatch
}
