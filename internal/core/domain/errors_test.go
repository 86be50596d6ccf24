package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("SSM-TEST-1000", "test message"),
			expected: "[SSM-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("SSM-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[SSM-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("SSM-TEST-1000", "message 1")
	err2 := NewDomainError("SSM-TEST-1000", "message 2")
	err3 := NewDomainError("SSM-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	// Details do not change identity
	if !errors.Is(ErrSetupFailed.WithDetails("status 500"), ErrSetupFailed) {
		t.Error("errors.Is should match a sentinel carrying details")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("SSM-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("SSM-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("SSM-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("SSM-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.WithCause(cause)

	if original.Cause != nil {
		t.Error("WithCause should not modify original error")
	}
	if withCause.Cause != cause {
		t.Errorf("Cause = %v, want %v", withCause.Cause, cause)
	}
}

func TestIsDomainError(t *testing.T) {
	err := ErrReceiverNotFound

	if !IsDomainError(err, "SSM-RECV-4040") {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(err, "SSM-RECV-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), "SSM-RECV-4040") {
		t.Error("IsDomainError should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrReceiverNotFound)
	if !IsDomainError(wrapped, "SSM-RECV-4040") {
		t.Error("IsDomainError should work with wrapped errors")
	}
	if !IsDomainError(wrapped, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrSetupFailed, "SSM-SESS-5020"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrTeardownFailed), "SSM-SESS-5021"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrSetupFailed, "SSM-SESS-5020"},
		{ErrTeardownFailed, "SSM-SESS-5021"},
		{ErrTeardownOnEmptySession, "SSM-SESS-4041"},
		{ErrRenewalWithoutSession, "SSM-SESS-4042"},
		{ErrSessionTornDown, "SSM-SESS-4090"},
		{ErrSessionSuperseded, "SSM-SESS-4091"},
		{ErrSessionState, "SSM-SESS-4092"},
		{ErrMissingLicenseURI, "SSM-CONF-4001"},
		{ErrEndpointNotAllowed, "SSM-CONF-4030"},
		{ErrLicenseTargetUnknown, "SSM-LIC-4002"},
		{ErrLicenseUpstream, "SSM-LIC-5022"},
		{ErrReceiverNotFound, "SSM-RECV-4040"},
		{ErrInternalServer, "SSM-SYS-5000"},
		{ErrBadRequest, "SSM-SYS-4000"},
		{ErrRateLimited, "SSM-SYS-4290"},
		{ErrInvalidArgument, "SSM-ARG-1001"},
		{ErrMissingArgument, "SSM-ARG-1002"},
	}

	for _, tt := range tests {
		if tt.err.Code != tt.code {
			t.Errorf("%s: Code = %q, want %q", tt.err.Message, tt.err.Code, tt.code)
		}
	}
}
