package api

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/config"
)

// ConfigResponse exposes the client-facing app settings.
type ConfigResponse struct {
	AppTimezone string `json:"app_timezone"`
}

// HandleConfig returns a handler for GET /api/config.
func HandleConfig(envCfg *config.EnvConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, ConfigResponse{AppTimezone: envCfg.AppTimezone})
	}
}
