// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
// Handlers map them to plain human-readable messages.
var (
	// ErrDuplicateUsername indicates that the username is already registered.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail indicates that the email address is already registered.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned during login when the username is unknown
	// or the password does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotConfirmed is returned during login for a user whose email is not confirmed yet.
	ErrNotConfirmed = errors.New("email address not confirmed")

	// ErrUnauthenticated indicates that no valid session is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
)
