package server

import (
	"net/http"
	"strconv"

	"github.com/MrMark1127/arma-tactical/internal/geo"
	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/MrMark1127/arma-tactical/pkg/streaming"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// broadcast publishes a plan event to WebSocket subscribers. Marshal
// failures are logged and dropped; REST responses never depend on them.
func (s *Server) broadcast(planID, msgType string, payload interface{}) {
	if s.events == nil {
		return
	}
	env, err := streaming.NewEnvelope(msgType, payload)
	if err != nil {
		s.logger.Warn("Failed to build broadcast envelope", "type", msgType, "error", err)
		return
	}
	s.events.Broadcast(planID, env)
}

// objectID parses the {id} path parameter for markers, routes and fire
// missions.
func objectID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.backend.ListPlans(userID(r))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if plans == nil {
		plans = []core.Plan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan core.Plan
	if err := decodeBody(r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if plan.Name == "" {
		writeError(w, http.StatusBadRequest, "plan name is required")
		return
	}

	created, err := s.backend.CreatePlan(userID(r), plan)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.backend.GetPlan(userID(r), chi.URLParam(r, "planID"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var plan core.Plan
	if err := decodeBody(r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plan.ID = chi.URLParam(r, "planID")

	updated, err := s.backend.UpdatePlan(userID(r), plan)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(updated.ID, streaming.TypePlanUpdated, streaming.PlanPayload{Plan: updated})
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	if err := s.backend.DeletePlan(userID(r), planID); err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(planID, streaming.TypePlanDeleted, streaming.DeletedPayload{PlanID: planID})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.backend.ListShares(userID(r), chi.URLParam(r, "planID"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if shares == nil {
		shares = []core.PlanShare{}
	}
	writeJSON(w, http.StatusOK, shares)
}

func (s *Server) handleSharePlan(w http.ResponseWriter, r *http.Request) {
	var share core.PlanShare
	if err := decodeBody(r, &share); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	share.PlanID = chi.URLParam(r, "planID")

	if err := s.backend.SharePlan(userID(r), share); err != nil {
		writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnsharePlan(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")
	target := chi.URLParam(r, "userID")
	if err := s.backend.UnsharePlan(userID(r), planID, target); err != nil {
		writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := s.backend.ListMarkers(userID(r), chi.URLParam(r, "planID"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if markers == nil {
		markers = []core.Marker{}
	}
	writeJSON(w, http.StatusOK, markers)
}

func (s *Server) handleAddMarker(w http.ResponseWriter, r *http.Request) {
	var m core.Marker
	if err := decodeBody(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m.PlanID = chi.URLParam(r, "planID")

	created, err := s.backend.AddMarker(userID(r), m)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(created.PlanID, streaming.TypeMarkerAdded, streaming.MarkerPayload{Marker: created})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMarker(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid marker id")
		return
	}
	var m core.Marker
	if err := decodeBody(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m.ID = id
	m.PlanID = chi.URLParam(r, "planID")

	updated, err := s.backend.UpdateMarker(userID(r), m)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(updated.PlanID, streaming.TypeMarkerUpdated, streaming.MarkerPayload{Marker: updated})
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMarker(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid marker id")
		return
	}
	planID := chi.URLParam(r, "planID")

	if err := s.backend.DeleteMarker(userID(r), planID, id); err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(planID, streaming.TypeMarkerDeleted, streaming.DeletedPayload{PlanID: planID, ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.backend.ListRoutes(userID(r), chi.URLParam(r, "planID"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if routes == nil {
		routes = []core.Route{}
	}
	writeJSON(w, http.StatusOK, routes)
}

// routeRequest defers polyline decoding so clients may send either the
// object form [{"x":..,"y":..},...] or the compact form [[x,y],...].
type routeRequest struct {
	Label    string          `json:"label"`
	Color    string          `json:"color"`
	Width    float32         `json:"width"`
	Polyline json.RawMessage `json:"polyline"`
}

func (rr routeRequest) toRoute() (core.Route, error) {
	rt := core.Route{Label: rr.Label, Color: rr.Color, Width: rr.Width}
	if len(rr.Polyline) == 0 {
		return rt, nil
	}
	if err := json.Unmarshal(rr.Polyline, &rt.Polyline); err == nil {
		return rt, nil
	}
	line, err := geo.ParsePolyline(string(rr.Polyline))
	if err != nil {
		return core.Route{}, err
	}
	rt.Polyline = line
	return rt, nil
}

func (s *Server) handleAddRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rt, err := req.toRoute()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid polyline")
		return
	}
	rt.PlanID = chi.URLParam(r, "planID")
	if len(rt.Polyline) < 2 {
		writeError(w, http.StatusBadRequest, "route needs at least two waypoints")
		return
	}

	created, err := s.backend.AddRoute(userID(r), rt)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(created.PlanID, streaming.TypeRouteAdded, streaming.RoutePayload{Route: created})
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid route id")
		return
	}
	var req routeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rt, err := req.toRoute()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid polyline")
		return
	}
	rt.ID = id
	rt.PlanID = chi.URLParam(r, "planID")

	updated, err := s.backend.UpdateRoute(userID(r), rt)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(updated.PlanID, streaming.TypeRouteUpdated, streaming.RoutePayload{Route: updated})
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid route id")
		return
	}
	planID := chi.URLParam(r, "planID")

	if err := s.backend.DeleteRoute(userID(r), planID, id); err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(planID, streaming.TypeRouteDeleted, streaming.DeletedPayload{PlanID: planID, ID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFireMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.backend.ListFireMissions(userID(r), chi.URLParam(r, "planID"))
	if err != nil {
		writeStorageError(w, err)
		return
	}
	if missions == nil {
		missions = []core.SavedFireMission{}
	}
	writeJSON(w, http.StatusOK, missions)
}

func (s *Server) handleSaveFireMission(w http.ResponseWriter, r *http.Request) {
	var fm core.SavedFireMission
	if err := decodeBody(r, &fm); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fm.PlanID = chi.URLParam(r, "planID")

	saved, err := s.backend.SaveFireMission(userID(r), fm)
	if err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(saved.PlanID, streaming.TypeFireMissionSaved, streaming.FireMissionPayload{FireMission: saved})
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteFireMission(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid fire mission id")
		return
	}
	planID := chi.URLParam(r, "planID")

	if err := s.backend.DeleteFireMission(userID(r), planID, id); err != nil {
		writeStorageError(w, err)
		return
	}
	s.broadcast(planID, streaming.TypeFireMissionDeleted, streaming.DeletedPayload{PlanID: planID, ID: id})
	w.WriteHeader(http.StatusNoContent)
}
