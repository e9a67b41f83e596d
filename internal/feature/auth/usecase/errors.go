// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenExpired is returned when a confirmation token has a valid signature
	// but is older than the allowed window.
	ErrTokenExpired = errors.New("confirmation token expired")

	// ErrTokenInvalid is returned when a confirmation token is malformed, carries a
	// bad signature or was minted for another purpose.
	ErrTokenInvalid = errors.New("confirmation token invalid")

	// ErrInvalidPassword is returned when the password does not meet requirements.
	ErrInvalidPassword = errors.New("password must not be empty")

	// ErrConfirmationNotSent is returned by Register when the user was stored but the
	// confirmation mail could not be dispatched. The user record is kept.
	ErrConfirmationNotSent = errors.New("confirmation email could not be sent")
)
