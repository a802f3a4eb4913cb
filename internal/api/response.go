// Package api implements the HTTP API server for the uptime monitor.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pulseboard/pulseboard/internal/service"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DetailResponse is the standard error envelope.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// WriteDetail writes a standard error response.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, DetailResponse{Detail: detail})
}

// writeServiceError maps service errors to HTTP response codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		var status int
		switch svcErr.Code {
		case service.CodeInvalidArgument:
			status = http.StatusUnprocessableEntity
		case service.CodeNotFound:
			status = http.StatusNotFound
		default:
			status = http.StatusInternalServerError
		}
		WriteDetail(w, status, svcErr.Message)
		return
	}
	WriteDetail(w, http.StatusInternalServerError, "internal server error")
}
