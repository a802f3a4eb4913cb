package api

import (
	"net/http"

	"github.com/pulseboard/pulseboard/internal/auth"
	"github.com/pulseboard/pulseboard/internal/service"
)

// HandleListTargets returns a handler for GET /api/targets.
func HandleListTargets(svc *service.UptimeService, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targets, err := svc.ListTargets()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		exposeURL := sessions.IsAuthenticated(r)
		resp := make([]TargetResponse, 0, len(targets))
		for _, t := range targets {
			resp = append(resp, targetResponse(t, exposeURL))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleCreateTarget returns a handler for POST /api/targets.
func HandleCreateTarget(svc *service.UptimeService, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAuthenticated(w, r, sessions) {
			return
		}
		var req service.CreateTargetRequest
		if err := DecodeBody(r, &req); err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		t, err := svc.CreateTarget(req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, targetResponse(*t, true))
	}
}

// HandleGetTarget returns a handler for GET /api/targets/{id}.
func HandleGetTarget(svc *service.UptimeService, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetTarget(r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, targetResponse(*t, sessions.IsAuthenticated(r)))
	}
}

// HandleUpdateTarget returns a handler for PATCH /api/targets/{id}.
func HandleUpdateTarget(svc *service.UptimeService, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAuthenticated(w, r, sessions) {
			return
		}
		var req service.UpdateTargetRequest
		if err := DecodeBody(r, &req); err != nil {
			WriteDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		t, err := svc.UpdateTarget(r.PathValue("id"), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, targetResponse(*t, true))
	}
}

// HandleDeleteTarget returns a handler for DELETE /api/targets/{id}.
func HandleDeleteTarget(svc *service.UptimeService, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAuthenticated(w, r, sessions) {
			return
		}
		if err := svc.DeleteTarget(r.PathValue("id")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
