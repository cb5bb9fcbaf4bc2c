package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewNoRegionsError("No feet detected. Try better lighting or plain background.")
	if err.Error() != "no_regions: No feet detected. Try better lighting or plain background." {
		t.Errorf("unexpected message %q", err.Error())
	}

	wrapped := NewInputError("file not found", io.ErrUnexpectedEOF)
	if !strings.Contains(wrapped.Error(), "caused by: unexpected EOF") {
		t.Errorf("cause missing from %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("band empty")
	err := NewRegionError(1, cause)
	if !errors.Is(err, cause) {
		t.Error("region error should unwrap to its cause")
	}
	if err.Message != "region 1 failed" {
		t.Errorf("unexpected region message %q", err.Message)
	}
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		typ  ErrorType
	}{
		{"input", NewInputError("x", nil), ErrorTypeInput},
		{"no regions", NewNoRegionsError("x"), ErrorTypeNoRegions},
		{"region", NewRegionError(0, nil), ErrorTypeRegion},
		{"no markers", NewNoMarkersError("x"), ErrorTypeNoMarkers},
		{"render", NewRenderError("x", nil), ErrorTypeRender},
		{"config", NewConfigError("x", nil), ErrorTypeConfig},
		{"internal", NewInternalError("x", nil), ErrorTypeInternal},
		{"wrapped", fmt.Errorf("detect: %w", NewNoMarkersError("x")), ErrorTypeNoMarkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsType(tt.err, tt.typ) {
				t.Errorf("IsType(%v, %s) = false", tt.err, tt.typ)
			}
			if TypeOf(tt.err) != tt.typ {
				t.Errorf("TypeOf = %s, want %s", TypeOf(tt.err), tt.typ)
			}
		})
	}

	plain := errors.New("plain")
	if IsType(plain, ErrorTypeInput) || TypeOf(plain) != "" {
		t.Error("plain errors carry no type")
	}
}
