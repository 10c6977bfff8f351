// Package streaming defines the wire protocol for live plan updates.
// Every frame on the plan WebSocket is an Envelope whose Payload decodes
// according to Type.
package streaming

import (
	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/goccy/go-json"
)

// Message type constants matching the streaming protocol.
const (
	TypePlanUpdated        = "plan_updated"
	TypePlanDeleted        = "plan_deleted"
	TypeMarkerAdded        = "marker_added"
	TypeMarkerUpdated      = "marker_updated"
	TypeMarkerDeleted      = "marker_deleted"
	TypeRouteAdded         = "route_added"
	TypeRouteUpdated       = "route_updated"
	TypeRouteDeleted       = "route_deleted"
	TypeFireMissionSaved   = "fire_mission_saved"
	TypeFireMissionDeleted = "fire_mission_deleted"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope marshals a payload into an Envelope of the given type.
func NewEnvelope(msgType string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: data}, nil
}

// PlanPayload carries a plan's metadata after an update.
type PlanPayload struct {
	Plan core.Plan `json:"plan"`
}

// MarkerPayload carries a marker for add/update events.
type MarkerPayload struct {
	Marker core.Marker `json:"marker"`
}

// RoutePayload carries a route for add/update events.
type RoutePayload struct {
	Route core.Route `json:"route"`
}

// FireMissionPayload carries a saved fire mission.
type FireMissionPayload struct {
	FireMission core.SavedFireMission `json:"fireMission"`
}

// DeletedPayload identifies an object removed from a plan.
type DeletedPayload struct {
	PlanID string `json:"planId"`
	ID     uint   `json:"id"`
}
