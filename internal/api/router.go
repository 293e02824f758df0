package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/uav-groundstation/internal/panel"
)

// healthCheckTimeout bounds each dependency probe in /api/v1/health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Backend endpoints polled by the dashboard.
	r.Route("/api", func(r chi.Router) {
		if s.store != nil {
			r.Get("/sensor", s.handleSensor)
			r.Get("/camera", s.handleCamera)
		}
		if s.logs != nil {
			r.Get("/logs", s.handleLogs)
			r.Get("/logs/{name}", s.handleLogFile)
		}

		r.Route("/v1", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/metrics", s.handleMetrics)
			r.Get("/series", s.handleSeries)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/readings", s.handleListReadings)
			r.Get("/frames", s.handleListFrames)
		})
	})

	r.Get(s.wsPath(), s.handleWebSocket)

	// Dashboard page, embedded via go:embed.
	r.Handle("/*", panel.Handler(s.cfg.WebDir))

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// handleHealth reports the server status and each configured dependency.
// Any failing dependency turns the response into a 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	probe := func(name string, check func(context.Context) error) {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			return
		}
		checks[name] = "ok"
	}
	if s.db != nil {
		probe("database", s.db.HealthCheck)
	}
	if s.mqtt != nil {
		probe("mqtt", s.mqtt.HealthCheck)
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status":  state,
		"version": s.version,
		"site_id": s.siteID,
		"checks":  checks,
	})
}
