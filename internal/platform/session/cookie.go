package session

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	// CookieName is the browser cookie that carries the session ID.
	CookieName = "portfolio_session"

	valueSessionID = "sid"
)

// NewCookieStore creates a signed cookie store.
// The cookie only carries the server-side session ID, never user data.
func NewCookieStore(secret string, secure bool, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Cookies reads and writes the session ID cookie.
type Cookies struct {
	store sessions.Store
}

// NewCookies wraps a gorilla session store.
func NewCookies(store sessions.Store) *Cookies {
	return &Cookies{store: store}
}

// SessionID returns the session ID carried by the request, or "" if none or tampered.
func (c *Cookies) SessionID(r *http.Request) string {
	s, err := c.store.Get(r, CookieName)
	if err != nil {
		return ""
	}
	sid, _ := s.Values[valueSessionID].(string)
	return sid
}

// Start binds sessionID to the browser.
func (c *Cookies) Start(w http.ResponseWriter, r *http.Request, sessionID string) error {
	// 改ざんされたcookieでも新しいセッションとして上書きする
	s, _ := c.store.Get(r, CookieName)
	s.Values[valueSessionID] = sessionID
	return s.Save(r, w)
}

// Clear expires the cookie.
func (c *Cookies) Clear(w http.ResponseWriter, r *http.Request) error {
	s, _ := c.store.Get(r, CookieName)
	delete(s.Values, valueSessionID)
	s.Options.MaxAge = -1
	return s.Save(r, w)
}
