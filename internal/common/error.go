// Package common defines shared constants and sentinel errors used across
// VibeVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Authentication errors. The message is intentionally generic: it is
	// shown verbatim to the user and must not reveal whether the username
	// or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Session errors (missing, expired, or mismatched token).
	ErrSessionExpired = errors.New("session expired, please log in again")

	// Registration errors.
	ErrAlreadyRegistered = errors.New("a user is already registered on this device")
)
