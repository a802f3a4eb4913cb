// Package auth implements the single-user session login, credential
// verification, and URL masking for unauthenticated reads.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/securecookie"
)

const sessionCookieName = "pulseboard_session"

// Sessions gates write endpoints behind a signed session cookie. When auth
// is disabled every request counts as authenticated.
type Sessions struct {
	sc       *securecookie.SecureCookie
	enabled  bool
	username string
	password string
	maxAge   int
}

// Config configures Sessions.
type Config struct {
	Enabled   bool
	Username  string
	Password  string
	SecretKey string
	MaxAge    int // seconds
}

// NewSessions creates a Sessions gate. The cookie is signed (not encrypted)
// with an HMAC key derived from the configured secret.
func NewSessions(cfg Config) *Sessions {
	hashKey := sha256.Sum256([]byte(cfg.SecretKey))
	sc := securecookie.New(hashKey[:], nil)
	sc.MaxAge(cfg.MaxAge)

	return &Sessions{
		sc:       sc,
		enabled:  cfg.Enabled,
		username: cfg.Username,
		password: cfg.Password,
		maxAge:   cfg.MaxAge,
	}
}

// Enabled reports whether authentication is enforced.
func (s *Sessions) Enabled() bool {
	return s.enabled
}

// IsAuthenticated reports whether the request carries a valid session.
// Always true when auth is disabled.
func (s *Sessions) IsAuthenticated(r *http.Request) bool {
	if !s.enabled {
		return true
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	var value map[string]bool
	if err := s.sc.Decode(sessionCookieName, cookie.Value, &value); err != nil {
		return false
	}
	return value["authenticated"]
}

// VerifyCredentials compares username and password against the configured
// values in constant time.
func (s *Sessions) VerifyCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	return userOK&passOK == 1
}

// SetAuthenticated writes an authenticated session cookie.
func (s *Sessions) SetAuthenticated(w http.ResponseWriter) error {
	encoded, err := s.sc.Encode(sessionCookieName, map[string]bool{"authenticated": true})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearAuthenticated expires the session cookie.
func (s *Sessions) ClearAuthenticated(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
