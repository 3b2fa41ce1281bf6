package realtime

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by Send when the data channel is not open.
// Unsent events are dropped, never queued.
var ErrNotReady = errors.New("realtime: data channel not open")

// Error represents an API error from the agent or the negotiation endpoints.
type Error struct {
	// Code is the error code (e.g. "session_creation_failed").
	Code string `json:"code,omitzero"`

	// Message is the human-readable error message.
	Message string `json:"message,omitzero"`

	// HTTPStatus is the HTTP status code, if applicable.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// Retryable reports whether the failure is a transient server-side error.
// Only the 5xx class during session creation qualifies; everything else is
// terminal for the attempt.
func (e *Error) Retryable() bool {
	return e.HTTPStatus >= 500
}

// IsRetryable reports whether err wraps a retryable API error.
func IsRetryable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// EventError contains error information from protocol error events.
type EventError struct {
	Type    string `json:"type,omitzero"`
	Code    string `json:"code,omitzero"`
	Message string `json:"message,omitzero"`
	EventID string `json:"event_id,omitzero"`
}

// ToError converts EventError to Error.
func (e *EventError) ToError() *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
	}
}
