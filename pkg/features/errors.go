package features

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInput      Kind = "input_error"
	KindTemporal   Kind = "temporal_error"
	KindCoverage   Kind = "coverage_error"
	KindValidation Kind = "validation_error"
	KindInternal   Kind = "internal_error"
)

// Error is the failure union returned by assembly. Message is the short
// reason and Details the human-readable explanation shown to clinicians.
type Error struct {
	Kind    Kind
	Message string
	Details string
}

func (e *Error) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// HTTPStatus maps every caller-recoverable kind to 400 and internal failures to 500.
func (e *Error) HTTPStatus() int {
	if e.Kind == KindInternal {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func newError(kind Kind, message, details string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func inputErrorf(format string, args ...interface{}) *Error {
	return newError(KindInput, "Invalid input", fmt.Sprintf(format, args...))
}

func temporalErrorf(format string, args ...interface{}) *Error {
	return newError(KindTemporal, "Invalid timestamps", fmt.Sprintf(format, args...))
}

// KindOf returns the taxonomy kind of err, or "" when err is not a feature error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

func IsInputError(err error) bool {
	return KindOf(err) == KindInput
}
