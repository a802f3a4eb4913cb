package api

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/pulseboard/pulseboard/internal/auth"
	"github.com/pulseboard/pulseboard/internal/config"
	"github.com/pulseboard/pulseboard/internal/service"
)

// Server wraps the HTTP server and mux for the pulseboard API.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates a new API server wired with all routes.
func NewServer(
	port int,
	envCfg *config.EnvConfig,
	svc *service.UptimeService,
	sessions *auth.Sessions,
) *Server {
	return NewServerWithAddress("", port, envCfg, svc, sessions)
}

// NewServerWithAddress creates a new API server with an explicit listen address.
func NewServerWithAddress(
	listenAddress string,
	port int,
	envCfg *config.EnvConfig,
	svc *service.UptimeService,
	sessions *auth.Sessions,
) *Server {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", HandleHealthz())

	api := http.NewServeMux()
	api.Handle("GET /api/config", HandleConfig(envCfg))

	// Auth.
	api.Handle("GET /api/auth/me", HandleAuthMe(sessions))
	api.Handle("POST /api/auth/login", HandleLogin(sessions))
	api.Handle("POST /api/auth/logout", HandleLogout(sessions))

	// Targets. Reads are public with URL masking, writes require a session.
	api.Handle("GET /api/targets", HandleListTargets(svc, sessions))
	api.Handle("POST /api/targets", HandleCreateTarget(svc, sessions))
	api.Handle("GET /api/targets/{id}", HandleGetTarget(svc, sessions))
	api.Handle("PATCH /api/targets/{id}", HandleUpdateTarget(svc, sessions))
	api.Handle("DELETE /api/targets/{id}", HandleDeleteTarget(svc, sessions))

	// Status and aggregates.
	api.Handle("GET /api/status", HandleStatus(svc, sessions))
	api.Handle("GET /api/history", HandleHistory(svc))
	api.Handle("GET /api/targets/{id}/history", HandleTargetHistory(svc))
	api.Handle("GET /api/targets/{id}/uptime", HandleUptime(svc))
	api.Handle("GET /api/targets/{id}/daily", HandleDailyUptime(svc))

	mux.Handle("/api/", RequestBodyLimitMiddleware(int64(envCfg.APIMaxBodyBytes), api))

	srv := &http.Server{
		Addr:    net.JoinHostPort(listenAddress, strconv.Itoa(port)),
		Handler: mux,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.mux
}
