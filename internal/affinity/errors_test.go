package affinity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteError_Message(t *testing.T) {
	e := &RouteError{
		Code:    ErrCodeSubmissionFailed,
		Domain:  "canonical",
		Message: "canonical domain rejected task",
	}
	assert.Equal(t, "SUBMISSION_FAILED: canonical domain rejected task (domain=canonical)", e.Error())

	e.Domain = ""
	assert.Equal(t, "SUBMISSION_FAILED: canonical domain rejected task", e.Error())
}

func TestRouteError_Unwrap(t *testing.T) {
	inner := errors.New("queue closed")
	e := &RouteError{Code: ErrCodeSubmissionFailed, Message: "rejected", Err: inner}

	assert.ErrorIs(t, e, inner)
}

func TestIsSubmissionError_Wrapped(t *testing.T) {
	e := &RouteError{Code: ErrCodeSubmissionFailed, Message: "rejected"}
	wrapped := fmt.Errorf("increment: %w", e)

	assert.True(t, IsSubmissionError(wrapped))
	assert.False(t, IsRedispatchError(wrapped))
}

func TestIsRedispatchError_Wrapped(t *testing.T) {
	e := &RouteError{Code: ErrCodeRedispatchLimit, Message: "no landing"}
	wrapped := fmt.Errorf("increment: %w", e)

	assert.True(t, IsRedispatchError(wrapped))
	assert.False(t, IsSubmissionError(wrapped))
}

func TestErrorPredicates_PlainError(t *testing.T) {
	err := errors.New("plain")
	assert.False(t, IsSubmissionError(err))
	assert.False(t, IsRedispatchError(err))
}
