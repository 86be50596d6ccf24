package domain

import "errors"

// Severity classifies how loudly a reported failure should surface.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// warnOnly lists conditions that are expected in normal operation.
var warnOnly = []*DomainError{
	ErrTeardownOnEmptySession,
	ErrSessionSuperseded,
}

// SeverityOf returns the reporting severity for err.
func SeverityOf(err error) Severity {
	for _, w := range warnOnly {
		if errors.Is(err, w) {
			return SeverityWarn
		}
	}
	return SeverityError
}
