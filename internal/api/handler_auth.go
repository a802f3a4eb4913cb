package api

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/auth"
)

// AuthStateResponse reports the session state for the current request.
type AuthStateResponse struct {
	Authenticated bool `json:"authenticated"`
	AuthEnabled   bool `json:"auth_enabled"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleAuthMe returns a handler for GET /api/auth/me.
func HandleAuthMe(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, AuthStateResponse{
			Authenticated: sessions.IsAuthenticated(r),
			AuthEnabled:   sessions.Enabled(),
		})
	}
}

// HandleLogin returns a handler for POST /api/auth/login.
func HandleLogin(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := DecodeBody(r, &req); err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		if !sessions.Enabled() {
			WriteJSON(w, http.StatusOK, AuthStateResponse{Authenticated: true, AuthEnabled: false})
			return
		}

		if !sessions.VerifyCredentials(req.Username, req.Password) {
			WriteDetail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if err := sessions.SetAuthenticated(w); err != nil {
			WriteDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}
		WriteJSON(w, http.StatusOK, AuthStateResponse{Authenticated: true, AuthEnabled: true})
	}
}

// HandleLogout returns a handler for POST /api/auth/logout.
func HandleLogout(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.ClearAuthenticated(w)
		WriteJSON(w, http.StatusOK, AuthStateResponse{
			Authenticated: false,
			AuthEnabled:   sessions.Enabled(),
		})
	}
}

// requireAuthenticated gates write endpoints. Returns false after writing a
// 401 when the request lacks a valid session.
func requireAuthenticated(w http.ResponseWriter, r *http.Request, sessions *auth.Sessions) bool {
	if sessions.IsAuthenticated(r) {
		return true
	}
	WriteDetail(w, http.StatusUnauthorized, "Authentication required")
	return false
}
