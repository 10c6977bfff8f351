// Package server exposes the planning API over HTTP: auth, plan CRUD,
// the mortar calculator, grid conversion and live plan WebSockets.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrMark1127/arma-tactical/internal/auth"
	"github.com/MrMark1127/arma-tactical/internal/geo"
	"github.com/MrMark1127/arma-tactical/internal/storage"
	"github.com/MrMark1127/arma-tactical/internal/stream"
	"github.com/MrMark1127/arma-tactical/pkg/streaming"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Telemetry is the sink for usage metrics. Implemented by the influx
// manager; nil disables recording.
type Telemetry interface {
	RecordSolve(faction, shell string, inRange bool)
	RecordAPIHit(method, path string, status int, duration time.Duration)
}

// Broadcaster fans plan events out to WebSocket subscribers. The stream
// hub implements it directly; the worker manager implements it with a
// queue and pump goroutine in between.
type Broadcaster interface {
	Broadcast(planID string, env streaming.Envelope)
}

// Dependencies holds everything the server needs to run.
type Dependencies struct {
	Backend     storage.Backend
	Hub         *stream.Hub
	Events      Broadcaster // optional; defaults to the hub
	JWT         *auth.JWTManager
	Calibration geo.Calibration
	Anchor      geo.Anchor
	Logger      *slog.Logger
	Telemetry   Telemetry
	SolveCount  func(faction string) // optional otel counter hook
}

// Server is the HTTP API server.
type Server struct {
	backend     storage.Backend
	hub         *stream.Hub
	events      Broadcaster
	jwt         *auth.JWTManager
	calibration geo.Calibration
	anchor      geo.Anchor
	logger      *slog.Logger
	telemetry   Telemetry
	solveCount  func(faction string)

	httpServer *http.Server
}

// New creates a server from its dependencies.
func New(deps Dependencies) *Server {
	events := deps.Events
	if events == nil && deps.Hub != nil {
		events = deps.Hub
	}
	return &Server{
		backend:     deps.Backend,
		hub:         deps.Hub,
		events:      events,
		jwt:         deps.JWT,
		calibration: deps.Calibration,
		anchor:      deps.Anchor,
		logger:      deps.Logger,
		telemetry:   deps.Telemetry,
		solveCount:  deps.SolveCount,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requestLogger)

		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		// Everything below requires a session token.
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/calculator/solve", s.handleSolve)
			r.Get("/grid/encode", s.handleGridEncode)
			r.Get("/grid/decode", s.handleGridDecode)
			r.Get("/map/info", s.handleMapInfo)
			r.Get("/map/project", s.handleMapProject)

			r.Route("/plans", func(r chi.Router) {
				r.Get("/", s.handleListPlans)
				r.Post("/", s.handleCreatePlan)

				r.Route("/{planID}", func(r chi.Router) {
					r.Get("/", s.handleGetPlan)
					r.Put("/", s.handleUpdatePlan)
					r.Delete("/", s.handleDeletePlan)

					r.Get("/shares", s.handleListShares)
					r.Post("/shares", s.handleSharePlan)
					r.Delete("/shares/{userID}", s.handleUnsharePlan)

					r.Get("/markers", s.handleListMarkers)
					r.Post("/markers", s.handleAddMarker)
					r.Put("/markers/{id}", s.handleUpdateMarker)
					r.Delete("/markers/{id}", s.handleDeleteMarker)

					r.Get("/routes", s.handleListRoutes)
					r.Post("/routes", s.handleAddRoute)
					r.Put("/routes/{id}", s.handleUpdateRoute)
					r.Delete("/routes/{id}", s.handleDeleteRoute)

					r.Get("/firemissions", s.handleListFireMissions)
					r.Post("/firemissions", s.handleSaveFireMission)
					r.Delete("/firemissions/{id}", s.handleDeleteFireMission)
				})
			})
		})
	})

	// WebSocket upgrades bypass the logging wrapper, which does not
	// implement http.Hijacker.
	r.Get("/ws/plans/{planID}", s.handlePlanSocket)

	return r
}

// Start begins serving on the given address and blocks until shutdown.
func (s *Server) Start(listen string) error {
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server listening", "addr", listen)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and disconnects all WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
