package httpclient

import (
	"errors"
	"fmt"
)

const (
	defaultErrorMessage   = "An error occurred"
	defaultNetworkMessage = "Network error"
)

// ClientError is the single error type returned by APIClient requests.
//
// Status is the HTTP status code, or 0 when no response was received. Data holds the
// parsed response body for HTTP failures, or the underlying cause for transport
// failures.
type ClientError struct {
	Message string
	Status  int
	Data    any
}

func (e *ClientError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api request failed: %s", e.Message)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Message)
}

// Unwrap exposes the transport cause, if any.
func (e *ClientError) Unwrap() error {
	if err, ok := e.Data.(error); ok {
		return err
	}
	return nil
}

// IsTransport reports whether the failure happened before any response was received.
func (e *ClientError) IsTransport() bool { return e.Status == 0 }

// newStatusError builds the error for a non-2xx response from its parsed body.
func newStatusError(status int, data any) *ClientError {
	msg := defaultErrorMessage
	if obj, ok := data.(map[string]any); ok {
		if m, ok := obj["message"].(string); ok {
			msg = m
		}
	}
	return &ClientError{Message: msg, Status: status, Data: data}
}

// newTransportError wraps a failure that prevented any response from being obtained.
// An existing *ClientError is returned as is.
func newTransportError(err error) *ClientError {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce
	}
	msg := defaultNetworkMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &ClientError{Message: msg, Status: 0, Data: err}
}

// StatusOf returns the HTTP status carried by err, or -1 when err is not a ClientError.
func StatusOf(err error) int {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Status
	}
	return -1
}

// IsNotFound reports whether err is a ClientError with a 404 status.
func IsNotFound(err error) bool {
	return StatusOf(err) == 404
}
