// Package common defines shared constants and sentinel errors used across
// client and server layers of gymsession. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Session errors.
	ErrAuthenticationFailed     = errors.New("authentication failed")
	ErrStorage                  = errors.New("storage error")
	ErrInvalidSessionData       = errors.New("invalid session data")
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrAlreadyAuthenticated     = errors.New("already authenticated")
	ErrSessionBusy              = errors.New("session busy")
	ErrSessionPersistenceFailed = errors.New("session persistence failed")
	ErrSignOutIncomplete        = errors.New("sign out incomplete")
)
