package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorClassification(t *testing.T) {
	err := NewValidationError("target", ErrNonBinaryTarget, "Target column %s must be binary (0 or 1) for fairness metrics.", "y")

	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, ErrNonBinaryTarget) {
		t.Errorf("expected errors.Is to match ErrNonBinaryTarget")
	}
	if IsComputationError(err) {
		t.Errorf("validation error must not classify as computation error")
	}
	if err.Error() != "Target column y must be binary (0 or 1) for fairness metrics." {
		t.Errorf("unexpected message %q", err.Error())
	}

	var ve *ValidationError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &ve) || ve.Field != "target" {
		t.Errorf("expected errors.As to recover the field, got %+v", ve)
	}
}

func TestValidationErrorDefaultKind(t *testing.T) {
	err := NewValidationError("x", nil, "bad")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected default kind ErrValidation")
	}
}

func TestComputationError(t *testing.T) {
	cause := errors.New("division by zero")
	err := NewComputationError("disparate impact", cause)

	if !IsComputationError(err) {
		t.Errorf("expected computation error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be reachable")
	}
	if IsValidationError(err) {
		t.Errorf("computation error must not classify as validation error")
	}
	if err.Error() != "disparate impact: division by zero" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestNotFound(t *testing.T) {
	if !IsNotFoundError(ErrReportNotFound) {
		t.Errorf("ErrReportNotFound should be a not-found error")
	}
	if !IsNotFoundError(NewNotFoundError("report", "abc")) {
		t.Errorf("constructed not-found error should classify")
	}
}
