// pkg/core/plan.go
package core

import "time"

// Plan is an operation plan: a named set of markers and routes placed on
// the game map by its owner, optionally shared with other users.
type Plan struct {
	ID          string    `json:"id"` // opaque UUID
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WorldName   string    `json:"worldName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Marker is a point (or shaped) annotation placed on a plan.
type Marker struct {
	ID         uint              `json:"id"`
	PlanID     string            `json:"planId"`
	Label      string            `json:"label"`
	MarkerType string            `json:"markerType"` // e.g. "mil_dot", "mil_objective"
	Color      string            `json:"color"`
	Shape      string            `json:"shape"` // ICON, RECTANGLE, ELLIPSE
	Direction  float32           `json:"direction"`
	Alpha      float32           `json:"alpha"`
	Position   Position3D        `json:"position"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Route is a polyline annotation placed on a plan.
type Route struct {
	ID       uint     `json:"id"`
	PlanID   string   `json:"planId"`
	Label    string   `json:"label"`
	Color    string   `json:"color"`
	Width    float32  `json:"width"`
	Polyline Polyline `json:"polyline"`
}

// PlanShare grants a user access to someone else's plan. CanEdit
// distinguishes read-only viewers from collaborators.
type PlanShare struct {
	PlanID   string    `json:"planId"`
	UserID   string    `json:"userId"`
	CanEdit  bool      `json:"canEdit"`
	SharedAt time.Time `json:"sharedAt"`
}

// SavedFireMission is a solved fire mission the user attached to a plan
// for later replay.
type SavedFireMission struct {
	ID       uint           `json:"id"`
	PlanID   string         `json:"planId"`
	Label    string         `json:"label"`
	Request  FireMission    `json:"request"`
	Solution ChargeSolution `json:"solution"`
	SavedAt  time.Time      `json:"savedAt"`
}

// User is an authenticated account. PasswordHash never crosses the API
// boundary.
type User struct {
	ID        string    `json:"id"` // opaque UUID
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
