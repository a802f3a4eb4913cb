package api

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/auth"
	"github.com/pulseboard/pulseboard/internal/service"
)

// HandleStatus returns a handler for GET /api/status: every target joined
// with its most recent check.
func HandleStatus(svc *service.UptimeService, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.Status()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		exposeURL := sessions.IsAuthenticated(r)
		resp := make([]StatusResponse, 0, len(rows))
		for _, row := range rows {
			resp = append(resp, statusResponse(row, exposeURL))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
