package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "config not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeConfigInvalid {
		t.Errorf("expected code %s, got %s", ErrCodeConfigInvalid, err.Code)
	}
	if err.Message != "config not found" {
		t.Errorf("expected message 'config not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("connection refused")
	ctx := map[string]any{
		"url":      "http://localhost:8123",
		"attempts": 5,
	}

	err := WrapWithContext(ErrCodeUnavailable, "failed to connect", cause, ctx)

	if err.Code != ErrCodeUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeUnavailable, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["url"] != "http://localhost:8123" {
		t.Errorf("expected url to be set")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeRenderFailed, "bad template"),
			expected: "[RENDER_FAILED] bad template",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestIsCode(t *testing.T) {
	inner := Wrap(ErrCodeUnavailable, "dial failed", errors.New("refused"))
	outer := Wrap(ErrCodeInternal, "collect failed", inner)
	viaFmt := fmt.Errorf("run: %w", outer)

	if !IsCode(viaFmt, ErrCodeUnavailable) {
		t.Error("expected nested UNAVAILABLE code to be found")
	}
	if !IsCode(viaFmt, ErrCodeInternal) {
		t.Error("expected outer INTERNAL code to be found")
	}
	if IsCode(viaFmt, ErrCodeTimeout) {
		t.Error("did not expect TIMEOUT code")
	}
	if IsCode(errors.New("plain"), ErrCodeInternal) {
		t.Error("plain errors carry no code")
	}
	if IsCode(nil, ErrCodeInternal) {
		t.Error("nil error carries no code")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeUnavailable,
		ErrCodeServerError,
		ErrCodeRenderFailed,
		ErrCodeCommandFailed,
		ErrCodeConfigInvalid,
		ErrCodeTimeout,
		ErrCodeInvalidRequest,
		ErrCodeInternal,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	ctx := map[string]any{"variable": "missing"}

	tests := []struct {
		name      string
		err       *StructuredError
		wantCause error
		wantCtx   bool
	}{
		{name: "new", err: New(ErrCodeRenderFailed, "m")},
		{name: "new with context", err: NewWithContext(ErrCodeRenderFailed, "m", ctx), wantCtx: true},
		{name: "new with empty context", err: NewWithContext(ErrCodeRenderFailed, "m", map[string]any{})},
		{name: "wrap", err: Wrap(ErrCodeRenderFailed, "m", cause), wantCause: cause},
		{name: "wrap with context", err: WrapWithContext(ErrCodeRenderFailed, "m", cause, ctx), wantCause: cause, wantCtx: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != ErrCodeRenderFailed || tt.err.Message != "m" {
				t.Errorf("unexpected code/message: %s %q", tt.err.Code, tt.err.Message)
			}
			if tt.err.Cause != tt.wantCause {
				t.Errorf("expected cause %v, got %v", tt.wantCause, tt.err.Cause)
			}
			if got := tt.err.Context != nil; got != tt.wantCtx {
				t.Errorf("expected context set=%v, got %v", tt.wantCtx, tt.err.Context)
			}
			if !IsCode(tt.err, ErrCodeRenderFailed) {
				t.Error("expected IsCode to match")
			}
		})
	}
}
