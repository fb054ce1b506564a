package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "test result not found")
		if err.Error() != "[NOT_FOUND] test result not found" {
			t.Errorf("expected [NOT_FOUND] test result not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected EOF")
		err := Wrap(original, CodeValidationError, "decode sessions")
		expected := "[VALIDATION_ERROR] decode sessions: unexpected EOF"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("WrapNil", func(t *testing.T) {
		if err := Wrap(nil, CodeInternal, "noop"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid viewport")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeNotFound, "missing"))
		if !IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to see through fmt wrapping")
		}
		if CodeOf(err) != CodeNotFound {
			t.Errorf("expected CodeOf NOT_FOUND, got %s", CodeOf(err))
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeNotFound, "missing"), CtxResultID, "cc-button-default-story-desktop-chrome")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatalf("expected DomainError, got %T", err)
		}
		if de.Context[CtxResultID] != "cc-button-default-story-desktop-chrome" {
			t.Errorf("unexpected context %v", de.Context)
		}

		foreign := AddContext(errors.New("boom"), CtxPath, "results.json")
		if CodeOf(foreign) != CodeInternal {
			t.Errorf("expected foreign errors to become INTERNAL_ERROR, got %s", CodeOf(foreign))
		}
	})
}
