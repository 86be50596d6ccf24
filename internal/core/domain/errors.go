// Package domain defines the core domain models for ssmproxy.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Codes have the form SSM-<AREA>-<NNNN>. The numeric suffix follows HTTP
// semantics (4040 not found, 4090 conflict, 502x upstream failure) so the
// transport layer can map codes without knowing every error.
type DomainError struct {
	Code    string // Error code (e.g., "SSM-SESS-5020")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrSetupFailed indicates the SSM backend refused or failed session setup.
	ErrSetupFailed = NewDomainError("SSM-SESS-5020", "ssm session setup failed")

	// ErrTeardownFailed indicates the SSM backend answered teardown with a non-200 status.
	ErrTeardownFailed = NewDomainError("SSM-SESS-5021", "ssm session teardown failed")

	// ErrTeardownOnEmptySession indicates teardown was requested with no session token.
	ErrTeardownOnEmptySession = NewDomainError("SSM-SESS-4041", "no existing ssm session to tear down")

	// ErrRenewalWithoutSession indicates a renewal was attempted before a session token existed.
	ErrRenewalWithoutSession = NewDomainError("SSM-SESS-4042", "renewal requested without a session token")

	// ErrSessionTornDown indicates an operation on a session that has been torn down.
	ErrSessionTornDown = NewDomainError("SSM-SESS-4090", "ssm session already torn down")

	// ErrSessionSuperseded indicates a result arrived for a session replaced by a newer load.
	ErrSessionSuperseded = NewDomainError("SSM-SESS-4091", "ssm session superseded by a newer load request")

	// ErrSessionState indicates an operation is not valid in the session's current state.
	ErrSessionState = NewDomainError("SSM-SESS-4092", "invalid ssm session state")
)

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrMissingLicenseURI indicates a token was supplied without a license URI.
	ErrMissingLicenseURI = NewDomainError("SSM-CONF-4001", "no license uri provided")

	// ErrEndpointNotAllowed indicates a load request named a host outside the allowlist.
	ErrEndpointNotAllowed = NewDomainError("SSM-CONF-4030", "endpoint host not allowed")
)

// ============================================================================
// License Errors (LIC)
// ============================================================================

var (
	// ErrLicenseTargetUnknown indicates no license server URL is known for a request.
	ErrLicenseTargetUnknown = NewDomainError("SSM-LIC-4002", "license server url unknown")

	// ErrLicenseUpstream indicates the license server could not be reached.
	ErrLicenseUpstream = NewDomainError("SSM-LIC-5022", "license server request failed")
)

// ============================================================================
// Receiver Errors (RECV)
// ============================================================================

var (
	// ErrReceiverNotFound indicates the requested receiver does not exist.
	ErrReceiverNotFound = NewDomainError("SSM-RECV-4040", "receiver not found")
)

// ============================================================================
// Journal Errors (JRNL)
// ============================================================================

var (
	// ErrRecordNotFound indicates no journal record exists for a session ID.
	ErrRecordNotFound = NewDomainError("SSM-JRNL-4040", "session record not found")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SSM-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("SSM-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service is temporarily unavailable.
	ErrServiceUnavailable = NewDomainError("SSM-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SSM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SSM-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("SSM-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SSM-ARG-1002", "missing required argument")
)
