package validation

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsAndMessage(t *testing.T) {
	err := Field("amount", "must be greater than zero")
	if !errors.Is(err, ErrInvalid) {
		t.Fatal("errors.Is(ErrInvalid) should hold")
	}
	wrapped := fmt.Errorf("create: %w", err)
	var ve *Error
	if !errors.As(wrapped, &ve) || ve.Fields[0].Field != "amount" {
		t.Fatalf("errors.As failed: %v", wrapped)
	}
	if got := err.Error(); got != "validation failed: amount must be greater than zero" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestError_Accumulate(t *testing.T) {
	var e Error
	if e.Err() != nil {
		t.Fatal("empty Error should be nil")
	}
	e.Add("title", "is required")
	e.Add("type", "is not a known approval type")
	if err := e.Err(); err == nil || len(e.Fields) != 2 {
		t.Fatalf("Err() = %v", err)
	}
}
