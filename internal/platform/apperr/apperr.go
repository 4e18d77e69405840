// Package apperr defines the two error classes the dashboard distinguishes:
// transport failures raised by the remote data client and validation
// failures raised before any request is made.
package apperr

import (
	"errors"
	"fmt"
	"net"
)

// TransportError wraps a failed call to the backend: a network error, a
// timeout, or a response outside the 2xx range.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request was abandoned because the client
// timeout elapsed.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	if errors.As(e.Err, &ne) {
		return ne.Timeout()
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a
// TransportError or no response was received.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// IsStatus reports whether err is a TransportError with the given status.
func IsStatus(err error, code int) bool {
	return StatusCode(err) == code
}

// ValidationError is a client-side rejection. It is never sent over the wire.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
