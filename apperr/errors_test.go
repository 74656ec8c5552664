package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestDuplicateKeyIsConflict(t *testing.T) {
	err := fmt.Errorf("insert practice set: %w", ErrDuplicateKey)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected duplicate key to match ErrConflict")
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("create annotation: %w", InvalidField("endSec", "must be greater than startSec"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError")
	}
	if ve.Details["endSec"] == "" {
		t.Errorf("expected endSec detail, got %v", ve.Details)
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("Recording")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound")
	}
	if err.Error() != "Recording not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
