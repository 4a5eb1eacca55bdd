package affinity

import (
	"errors"
	"fmt"
)

// RouteError represents a failure to route work onto the canonical
// domain. The work did not run; a RouteError is never returned after
// the work has executed.
type RouteError struct {
	// Code identifies the failure category.
	Code RouteErrorCode

	// Domain is the human-readable name of the target domain, if known.
	Domain string

	// Message is a human-readable description.
	Message string

	// Err is the underlying submission error, if any.
	Err error
}

// RouteErrorCode categorizes routing failures.
type RouteErrorCode string

const (
	// ErrCodeSubmissionFailed indicates the canonical domain rejected or
	// could not accept the task (typically: domain closed). The mutation
	// was NOT applied; callers must not assume otherwise.
	ErrCodeSubmissionFailed RouteErrorCode = "SUBMISSION_FAILED"

	// ErrCodeRedispatchLimit indicates repeated re-dispatch never landed
	// on the canonical domain. This means the Domain implementation runs
	// tasks on contexts that do not carry its identity.
	ErrCodeRedispatchLimit RouteErrorCode = "REDISPATCH_LIMIT"
)

// Error implements the error interface.
func (e *RouteError) Error() string {
	if e.Domain != "" {
		return fmt.Sprintf("%s: %s (domain=%s)", e.Code, e.Message, e.Domain)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying submission error.
func (e *RouteError) Unwrap() error {
	return e.Err
}

// IsSubmissionError reports whether err is a routing failure caused by
// the submission facility. Uses errors.As to handle wrapped errors.
func IsSubmissionError(err error) bool {
	var re *RouteError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSubmissionFailed
	}
	return false
}

// IsRedispatchError reports whether err is a re-dispatch limit failure.
func IsRedispatchError(err error) bool {
	var re *RouteError
	if errors.As(err, &re) {
		return re.Code == ErrCodeRedispatchLimit
	}
	return false
}
