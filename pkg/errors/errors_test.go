package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidPlacement, "item %s out of bounds", "a1")

	if err.Code != ErrCodeInvalidPlacement {
		t.Errorf("Code = %s, want %s", err.Code, ErrCodeInvalidPlacement)
	}
	if err.Message != "item a1 out of bounds" {
		t.Errorf("Message = %q", err.Message)
	}
	if !strings.Contains(err.Error(), "INVALID_PLACEMENT") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeStore, cause, "failed to load snapshot %s", "main")

	if err.Cause != cause {
		t.Error("Cause not preserved")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should contain the cause, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeNoAvailablePosition, "spiral search exhausted")

	if !Is(err, ErrCodeNoAvailablePosition) {
		t.Error("Is should match the code")
	}
	if Is(err, ErrCodeInvalidPlacement) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeNoAvailablePosition) {
		t.Error("Is should not match plain errors")
	}

	// Code is found through wrapping layers.
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeNoAvailablePosition) {
		t.Error("Is should unwrap to find the code")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeItemNotFound, "missing")); got != ErrCodeItemNotFound {
		t.Errorf("GetCode = %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %s, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeNestedTransaction, "transaction already in progress")
	if got := UserMessage(err); got != "transaction already in progress" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
