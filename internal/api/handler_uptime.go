package api

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/service"
)

const (
	defaultUptimeDays = 30
	minUptimeDays     = 1
	maxUptimeDays     = 365
	maxDailyDays      = 90
)

// HandleUptime returns a handler for GET /api/targets/{id}/uptime: rolling
// uptime over the last N days.
func HandleUptime(svc *service.UptimeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := ParseBoundedIntQuery(r, "days", defaultUptimeDays, minUptimeDays, maxUptimeDays)
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		stats, err := svc.Uptime(r.PathValue("id"), days)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, stats)
	}
}

// HandleDailyUptime returns a handler for GET /api/targets/{id}/daily:
// per-day uptime buckets over the last N UTC calendar days.
func HandleDailyUptime(svc *service.UptimeService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := ParseBoundedIntQuery(r, "days", defaultUptimeDays, minUptimeDays, maxDailyDays)
		if err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		daily, err := svc.DailyUptimes(r.PathValue("id"), days)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, daily)
	}
}
