package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeAuthTokenRejected      ErrorCode = "AUTH-002"
	ErrCodeAuthNotLoggedIn        ErrorCode = "AUTH-003"
	ErrCodeAuthStoreFailed        ErrorCode = "AUTH-004"

	// Session/backend errors (SESSION-001 to SESSION-099)
	ErrCodeSessionUnreachable ErrorCode = "SESSION-001"
	ErrCodeSessionTimeout     ErrorCode = "SESSION-002"
	ErrCodeSessionRejected    ErrorCode = "SESSION-003"
	ErrCodeSessionBadResponse ErrorCode = "SESSION-004"

	// Intake errors (INTAKE-001 to INTAKE-099)
	ErrCodeIntakeNotReady       ErrorCode = "INTAKE-001"
	ErrCodeIntakeLoadFailed     ErrorCode = "INTAKE-002"
	ErrCodeIntakeUnknownKind    ErrorCode = "INTAKE-003"
	ErrCodeIntakeAnswerRequired ErrorCode = "INTAKE-004"
	ErrCodeIntakeAnswerInvalid  ErrorCode = "INTAKE-005"
	ErrCodeIntakeSubmitInFlight ErrorCode = "INTAKE-006"
	ErrCodeIntakeCompleted      ErrorCode = "INTAKE-007"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"
)

// OrientaError represents an enhanced error with code and suggestions
type OrientaError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *OrientaError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *OrientaError) Unwrap() error {
	return e.Cause
}

// New creates a new OrientaError
func New(code ErrorCode, message string) *OrientaError {
	return &OrientaError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new OrientaError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *OrientaError {
	return &OrientaError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *OrientaError) WithSuggestion(suggestion string) *OrientaError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *OrientaError) WithSuggestions(suggestions ...string) *OrientaError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf returns the error code of err if it is (or wraps) an
// OrientaError, and "" otherwise.
func CodeOf(err error) ErrorCode {
	var oerr *OrientaError
	if stderrors.As(err, &oerr) {
		return oerr.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Common error constructors for frequently used errors

// NewInvalidCredentialsError creates a login failure error
func NewInvalidCredentialsError() *OrientaError {
	return New(ErrCodeAuthInvalidCredentials, "invalid email or password").
		WithSuggestion("Check the email address and password and try again").
		WithSuggestion("Use 'orienta auth register' if you do not have an account yet")
}

// NewTokenRejectedError creates an invalid/expired token error.
// Callers must treat the learner as logged out when they see this code.
func NewTokenRejectedError() *OrientaError {
	return New(ErrCodeAuthTokenRejected, "session token was rejected by the server").
		WithSuggestion("Run 'orienta auth login' to sign in again")
}

// NewNotLoggedInError creates a missing-credentials error
func NewNotLoggedInError() *OrientaError {
	return New(ErrCodeAuthNotLoggedIn, "not logged in").
		WithSuggestion("Run 'orienta auth login' to sign in").
		WithSuggestion("Run 'orienta auth register' to create an account")
}

// NewUnreachableError creates a backend connectivity error
func NewUnreachableError(cause error) *OrientaError {
	return Wrap(ErrCodeSessionUnreachable, "could not reach the Orienta service", cause).
		WithSuggestion("Check your internet connection").
		WithSuggestion("Verify the api_url setting in your config file")
}

// NewTimeoutError creates a request timeout error
func NewTimeoutError(cause error) *OrientaError {
	return Wrap(ErrCodeSessionTimeout, "the request to the Orienta service timed out", cause).
		WithSuggestion("Try again; slow connections may need a longer submit_timeout in config")
}

// NewRejectedError creates an error for a request the backend refused
func NewRejectedError(detail string) *OrientaError {
	return New(ErrCodeSessionRejected, fmt.Sprintf("the Orienta service rejected the request: %s", detail))
}

// NewBadResponseError creates a malformed-response error
func NewBadResponseError(cause error) *OrientaError {
	return Wrap(ErrCodeSessionBadResponse, "could not understand the server response", cause).
		WithSuggestion("This usually means a client/server version mismatch; try updating orienta")
}

// NewIntakeLoadError creates a question-set/session load failure
func NewIntakeLoadError(cause error) *OrientaError {
	return Wrap(ErrCodeIntakeLoadFailed, "could not load the intake questionnaire", cause).
		WithSuggestion("Retry the load; nothing has been lost")
}

// NewUnknownKindError creates an error for an unrecognised question type tag
func NewUnknownKindError(id, kind string) *OrientaError {
	return New(ErrCodeIntakeUnknownKind, fmt.Sprintf("question %q has unsupported type %q", id, kind)).
		WithSuggestion("Update orienta; the server is sending question types this version does not know")
}

// NewAnswerRequiredError creates a required answer error
func NewAnswerRequiredError(question string) *OrientaError {
	return New(ErrCodeIntakeAnswerRequired, fmt.Sprintf("an answer is required for: %s", question))
}

// NewAnswerInvalidError creates an invalid answer error
func NewAnswerInvalidError(question, detail string) *OrientaError {
	return New(ErrCodeIntakeAnswerInvalid, fmt.Sprintf("invalid answer for %q: %s", question, detail))
}

// NewSubmitInFlightError creates a double-submission error
func NewSubmitInFlightError(step int) *OrientaError {
	return New(ErrCodeIntakeSubmitInFlight, fmt.Sprintf("an answer for step %d is already being submitted", step)).
		WithSuggestion("Wait for the current submission to finish before answering again")
}
