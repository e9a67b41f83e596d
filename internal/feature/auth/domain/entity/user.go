// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account.
// A user with Confirmed == false must never be allowed to log in.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the login name. It is matched case-sensitively and must be unique.
	Username string `gorm:"uniqueIndex;size:80;not null"`

	// Email is the address the confirmation link is sent to. It must be unique.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash of the password.
	// Plaintext passwords are never stored.
	PasswordHash string `gorm:"size:255;not null"`

	// Confirmed is flipped to true exactly once, when a valid confirmation token is redeemed.
	Confirmed bool `gorm:"not null;default:false"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
