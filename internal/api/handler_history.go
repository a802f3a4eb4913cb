package api

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/service"
)

const (
	defaultHistoryHours = 24
	minHistoryHours     = 1
	maxHistoryHours     = 720
)

// HandleTargetHistory returns a handler for GET /api/targets/{id}/history.
func HandleTargetHistory(svc *service.UptimeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := ParseBoundedIntQuery(r, "hours", defaultHistoryHours, minHistoryHours, maxHistoryHours)
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		checks, err := svc.TargetHistory(r.PathValue("id"), hours)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, checkResponses(checks))
	}
}

// HandleHistory returns a handler for GET /api/history: checks across all
// targets, optionally filtered by target_id and up.
func HandleHistory(svc *service.UptimeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := ParseBoundedIntQuery(r, "hours", defaultHistoryHours, minHistoryHours, maxHistoryHours)
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		up, err := ParseBoolQuery(r, "up")
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		checks, err := svc.History(hours, r.URL.Query().Get("target_id"), up)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, checkResponses(checks))
	}
}
