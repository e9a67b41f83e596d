package entity

import "time"

// Session is the server-side record behind a browser session cookie.
// The cookie only carries ID; everything else lives in the session store.
type Session struct {
	ID        string     // Random session identifier (64-character hex string)
	UserID    uint       // Logged-in user
	UserAgent string     // Client's User-Agent header at login
	IPAddress string     // Client's IP address at login
	CreatedAt time.Time  // Login time
	ExpiresAt time.Time  // Absolute expiry
	RevokedAt *time.Time // Logout time (nil while active)
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsRevoked returns true if the session has been logged out.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
