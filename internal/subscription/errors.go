package subscription

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a failed call classified by its HTTP status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// NewStatusError returns a StatusError for status with an optional message.
func NewStatusError(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a
// StatusError (transport failures, cancellations, decoding errors).
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsHidden reports whether err means the entity does not exist for the caller:
// 404 or 403.
func IsHidden(err error) bool {
	switch StatusOf(err) {
	case http.StatusNotFound, http.StatusForbidden:
		return true
	default:
		return false
	}
}
