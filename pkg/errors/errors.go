package errors

import (
	"fmt"
	"net/http"
)

// Kind classifies application errors for API responses
type Kind string

const (
	KindValidation           Kind = "validation"
	KindStateConflict        Kind = "state_conflict"
	KindNotEligible          Kind = "not_eligible"
	KindAlreadyFinalized     Kind = "already_finalized"
	KindAlreadyResolved      Kind = "already_resolved"
	KindCapacityExceeded     Kind = "capacity_exceeded"
	KindWindowClosed         Kind = "window_closed"
	KindExpired              Kind = "expired"
	KindHasActiveAssignments Kind = "has_active_assignments"
	KindNotFound             Kind = "not_found"
	KindAuthentication       Kind = "authentication"
	KindAuthorization        Kind = "authorization"
	KindInternal             Kind = "internal"
)

// Error is a structured application error carried from the services to the
// API boundary, where Kind decides the HTTP status
type Error struct {
	Kind       Kind                   `json:"kind"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Internal
}

// NewValidationError reports malformed or out-of-range input
func NewValidationError(message string, details map[string]interface{}) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewStateConflictError reports an operation that is not valid for the
// current hackathon/round/team status
func NewStateConflictError(message string) *Error {
	return &Error{
		Kind:       KindStateConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewNotEligibleError reports an actor without standing, such as an
// eliminated team trying to submit
func NewNotEligibleError(message string) *Error {
	return &Error{
		Kind:       KindNotEligible,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewAlreadyFinalizedError reports a repeated one-shot operation whose side
// effects are terminal (round finalization)
func NewAlreadyFinalizedError(message string) *Error {
	return &Error{
		Kind:       KindAlreadyFinalized,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewAlreadyResolvedError reports a check-and-set that lost to an earlier
// resolution (invitation already accepted or declined)
func NewAlreadyResolvedError(message string) *Error {
	return &Error{
		Kind:       KindAlreadyResolved,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewCapacityExceededError reports a team or registration limit being hit
func NewCapacityExceededError(message string) *Error {
	return &Error{
		Kind:       KindCapacityExceeded,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewWindowClosedError reports an action outside its allowed time window
func NewWindowClosedError(message string) *Error {
	return &Error{
		Kind:       KindWindowClosed,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewExpiredError reports an invitation past its expiry
func NewExpiredError(message string) *Error {
	return &Error{
		Kind:       KindExpired,
		Message:    message,
		StatusCode: http.StatusGone,
	}
}

// NewHasActiveAssignmentsError reports a mentor removal blocked by live
// team assignments
func NewHasActiveAssignmentsError(message string, details map[string]interface{}) *Error {
	return &Error{
		Kind:       KindHasActiveAssignments,
		Message:    message,
		StatusCode: http.StatusConflict,
		Details:    details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *Error {
	return &Error{
		Kind:       KindAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *Error {
	return &Error{
		Kind:       KindAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *Error {
	return &Error{
		Kind:       KindInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Error struct {
		Kind      Kind                   `json:"kind"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details,omitempty"`
		RequestID string                 `json:"request_id,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}
