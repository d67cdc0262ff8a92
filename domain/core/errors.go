package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)

	// ErrValidation marks a violated precondition. Always recoverable: the
	// caller reports it and skips the affected column.
	ErrValidation = errors.New("validation failed")

	// ErrComputation marks an unexpected failure while computing metrics or weights.
	ErrComputation = errors.New("computation failed")

	ErrInsufficientVariation = fmt.Errorf("%w: insufficient variation", ErrValidation)
	ErrMissingValues         = fmt.Errorf("%w: missing values", ErrValidation)
	ErrNonBinaryTarget       = fmt.Errorf("%w: non-binary target", ErrValidation)
	ErrSchemaMismatch        = fmt.Errorf("%w: schema mismatch", ErrValidation)
)

// ValidationError describes which input failed which precondition.
type ValidationError struct {
	Field  string
	Reason string
	Kind   error // one of the ErrValidation family, defaults to ErrValidation
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	if e.Kind != nil {
		return e.Kind
	}
	return ErrValidation
}

// ComputationError wraps a failure raised while a metric or weight was being computed.
type ComputationError struct {
	Op    string
	Cause error
}

func (e *ComputationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return e.Op
}

// Is lets errors.Is match ErrComputation as well as the wrapped cause.
func (e *ComputationError) Is(target error) bool {
	return target == ErrComputation
}

func (e *ComputationError) Unwrap() error {
	return e.Cause
}

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, kind error, format string, args ...interface{}) error {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
		Kind:   kind,
	}
}

func NewComputationError(op string, cause error) error {
	return &ComputationError{Op: op, Cause: cause}
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputation)
}
