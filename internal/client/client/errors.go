package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedResponse = errors.New("malformed response")
)

// RemoteError is a rejection reported by the server. Message is the
// server's own text and is suitable for showing to the user.
type RemoteError struct {
	Status  int
	Message string
	kind    error
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error: status %d", e.Status)
	}
	return fmt.Sprintf("remote error: status %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.kind
}

func newRemoteError(status int, message string) *RemoteError {
	return &RemoteError{Status: status, Message: message, kind: kindForStatus(status)}
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusServiceUnavailable, status == http.StatusGatewayTimeout,
		status == http.StatusBadGateway:
		return ErrUnavailable
	default:
		return nil
	}
}
