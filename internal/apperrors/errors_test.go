package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewValidationError("upload rejected", nil)
	if !strings.Contains(err.Error(), "validation") || !strings.Contains(err.Error(), "upload rejected") {
		t.Errorf("Unexpected error string: %s", err.Error())
	}

	cause := errors.New("underlying fault")
	wrapped := NewNetworkError("fetch failed", cause)
	if !strings.Contains(wrapped.Error(), "underlying fault") {
		t.Errorf("Expected cause in error string, got %s", wrapped.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewInternalError("wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
}

func TestWithDetails(t *testing.T) {
	err := NewMeasurementError("bad width", nil).WithDetails("thoracic_width=%g", -3.5)
	if err.Details != "thoracic_width=-3.5" {
		t.Errorf("Unexpected details: %s", err.Details)
	}
}

func TestIsType(t *testing.T) {
	err := NewDecodeError("bad buffer", nil)

	if !IsType(err, ErrorTypeDecode) {
		t.Error("Expected decode type match")
	}
	if IsType(err, ErrorTypeNetwork) {
		t.Error("Did not expect network type match")
	}
	if IsType(errors.New("plain"), ErrorTypeDecode) {
		t.Error("Plain errors have no type")
	}

	// Type checks must see through wrapping.
	wrapped := fmt.Errorf("handling request: %w", err)
	if !IsType(wrapped, ErrorTypeDecode) {
		t.Error("Expected type match through wrapping")
	}
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", NewValidationError("x", nil), http.StatusBadRequest},
		{"decode", NewDecodeError("x", nil), http.StatusUnprocessableEntity},
		{"measurement", NewMeasurementError("x", nil), http.StatusBadRequest},
		{"network", NewNetworkError("x", nil), http.StatusBadGateway},
		{"timeout", NewTimeoutError("x", nil), http.StatusGatewayTimeout},
		{"not found", NewNotFoundError("x", nil), http.StatusNotFound},
		{"internal", NewInternalError("x", nil), http.StatusInternalServerError},
		{"plain error", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatusCode(tt.err); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
