package util

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorKindsUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"remote", NewRemoteError("getDevice", "connection refused"), ErrRemoteFailed},
		{"state", NewStateError("cancel", "job j1", "running"), ErrInvalidState},
		{"not found", NewNotFoundError("ONT", "ont-1"), ErrNotFound},
		{"validation", NewValidationError("command must not be empty"), ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewRemoteError("reboot", "HTTP 500"), `ACS reboot failed: HTTP 500`},
		{NewRemoteError("", "HTTP 500"), `ACS request failed: HTTP 500`},
		{NewStateError("execute", "job j1", "succeeded"), `cannot execute job j1 in status "succeeded"`},
		{NewNotFoundError("registration", "r1"), `registration "r1" not found`},
		{NewValidationError("too long"), "validation failed: too long"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidationErrorMultiple(t *testing.T) {
	err := NewValidationError("first", "second")
	msg := err.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("message %q missing parts", msg)
	}
}

func TestValidationBuilder(t *testing.T) {
	v := &ValidationBuilder{}
	if v.HasErrors() {
		t.Error("new builder should have no errors")
	}
	if v.Build() != nil {
		t.Error("empty builder should build nil")
	}

	v.Add(true, "never recorded").
		Add(false, "condition failed").
		AddErrorf("port %d out of range", 9)
	if !v.HasErrors() {
		t.Fatal("expected errors")
	}

	err := v.Build()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Build() = %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Errors) != 2 {
		t.Errorf("errors = %v, want 2 entries", verr)
	}
}
