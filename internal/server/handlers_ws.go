package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Map clients are served from arbitrary origins (desktop overlays,
	// local dev servers); the token is the access control.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handlePlanSocket upgrades the connection and subscribes it to a plan's
// event stream. The token travels as a query parameter since browser
// WebSocket clients cannot set headers.
func (s *Server) handlePlanSocket(w http.ResponseWriter, r *http.Request) {
	token := extractToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		writeStorageError(w, err)
		return
	}

	planID := chi.URLParam(r, "planID")
	// Read capability gates the subscription; hidden plans 404 like the
	// REST routes.
	if _, err := s.backend.GetPlan(claims.UserID, planID); err != nil {
		writeStorageError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "planId", planID, "error", err)
		return
	}
	s.hub.Subscribe(planID, conn)
}
