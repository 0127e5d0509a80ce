// internal/session/session.go
//
// Browser session handling.
//
// Context
//   The auth provider owns identity; this package only carries the provider
//   access token between requests so server-rendered pages and the profile
//   API proxy can act on behalf of the signed-in user.  The token rides in an
//   HttpOnly cookie scoped to the site root and expires with the provider
//   session.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

const cookieName = "saarthi_session"

// Manager issues and reads session cookies.
type Manager struct {
	secure bool
	maxAge time.Duration
}

// NewManager builds a Manager.  secure controls the cookie Secure attribute
// and should track whether the site is served over HTTPS.
func NewManager(secure bool, maxAge time.Duration) *Manager {
	return &Manager{secure: secure, maxAge: maxAge}
}

// Issue sets the session cookie carrying the provider access token.
func (m *Manager) Issue(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token returns the provider access token for the request, or "" when the
// browser has no session.
func (m *Manager) Token(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
