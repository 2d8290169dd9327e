package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAsCustomError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", ErrUnrecognizedStructure)
	ce, ok := AsCustomError(wrapped)
	if !ok {
		t.Fatal("AsCustomError should find the error in the chain")
	}
	if ce.Code != ErrCodeUnrecognizedStructure {
		t.Errorf("Code = %q, want %q", ce.Code, ErrCodeUnrecognizedStructure)
	}
	if ce.Status != http.StatusUnprocessableEntity {
		t.Errorf("Status = %d, want 422", ce.Status)
	}

	if _, ok := AsCustomError(errors.New("plain")); ok {
		t.Error("AsCustomError should not match plain errors")
	}
}

func TestNewUpstreamError(t *testing.T) {
	err := NewUpstreamError(503)
	if err.Code != ErrCodeUpstreamError {
		t.Errorf("Code = %q", err.Code)
	}
	if err.Status != http.StatusBadGateway {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if !strings.Contains(err.Message, "503") {
		t.Errorf("Message %q should carry the upstream status", err.Message)
	}
}

func TestCustomErrorUnwrap(t *testing.T) {
	inner := errors.New("dial refused")
	err := NewError(ErrCodeUpstreamError, "msg", http.StatusBadGateway, inner)
	if !errors.Is(err, inner) {
		t.Error("errors.Is should reach the wrapped error")
	}
	if err.Error() != "dial refused" {
		t.Errorf("Error() = %q, want inner message", err.Error())
	}
}
