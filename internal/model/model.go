package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent
// tables in the database schema.
var DatabaseModels = []interface{}{
	&User{},
	&Plan{},
	&PlanShare{},
	&Marker{},
	&Route{},
	&FireMissionRecord{},
}

// User is an account that owns and shares plans.
type User struct {
	ID           uint      `json:"-" gorm:"primarykey;autoIncrement;"`
	UUID         string    `json:"id" gorm:"size:36;uniqueIndex"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (*User) TableName() string {
	return "users"
}

// Plan is an operation plan owned by a user. Markers, routes, shares and
// recorded fire missions cascade-delete with their plan.
type Plan struct {
	ID          uint           `json:"-" gorm:"primarykey;autoIncrement;"`
	UUID        string         `json:"id" gorm:"size:36;uniqueIndex"`
	OwnerID     uint           `json:"-" gorm:"index:idx_plan_owner_id"`
	Owner       User           `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:OwnerID;"`
	Name        string         `json:"name" gorm:"size:128"`
	Description string         `json:"description" gorm:"size:1024"`
	WorldName   string         `json:"worldName" gorm:"size:64"`
	Settings    datatypes.JSON `json:"settings"` // freeform per-plan UI settings
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (*Plan) TableName() string {
	return "plans"
}

// PlanShare grants another user access to a plan. CanEdit distinguishes
// read-only viewers from collaborators.
type PlanShare struct {
	ID        uint      `json:"-" gorm:"primarykey;autoIncrement;"`
	PlanID    uint      `json:"-" gorm:"index:idx_planshare_plan_user,unique"`
	Plan      Plan      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PlanID;"`
	UserID    uint      `json:"-" gorm:"index:idx_planshare_plan_user,unique"`
	User      User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:UserID;"`
	CanEdit   bool      `json:"canEdit"`
	CreatedAt time.Time `json:"sharedAt"`
}

func (*PlanShare) TableName() string {
	return "plan_shares"
}

// Marker is a map annotation belonging to a plan.
type Marker struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	PlanID     uint           `json:"-" gorm:"index:idx_marker_plan_id"`
	Plan       Plan           `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PlanID;"`
	Label      string         `json:"label" gorm:"size:256"`
	MarkerType string         `json:"markerType" gorm:"size:64"` // e.g. "mil_dot", "mil_objective"
	Color      string         `json:"color" gorm:"size:32"`
	Shape      string         `json:"shape" gorm:"size:32"` // ICON, RECTANGLE, ELLIPSE
	Direction  float32        `json:"direction"`            // rotation (0-360 degrees)
	Alpha      float32        `json:"alpha"`                // opacity (0.0-1.0)
	Position   geom.Point     `json:"position"`             // game-world position as 2D point (WKB)
	Elevation  float64        `json:"elevation"`            // meters ASL
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (*Marker) TableName() string {
	return "markers"
}

// Route is a polyline annotation belonging to a plan.
type Route struct {
	ID        uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	PlanID    uint            `json:"-" gorm:"index:idx_route_plan_id"`
	Plan      Plan            `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PlanID;"`
	Label     string          `json:"label" gorm:"size:256"`
	Color     string          `json:"color" gorm:"size:32"`
	Width     float32         `json:"width"`
	Polyline  geom.LineString `json:"polyline"` // game-world waypoints (WKB)
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (*Route) TableName() string {
	return "routes"
}

// FireMissionRecord is a solved fire mission saved to a plan for replay.
// Solutions are recomputed on demand elsewhere; only saved ones persist.
type FireMissionRecord struct {
	ID     uint   `json:"id" gorm:"primarykey;autoIncrement;"`
	PlanID uint   `json:"-" gorm:"index:idx_firemission_plan_id"`
	Plan   Plan   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:PlanID;"`
	Label  string `json:"label" gorm:"size:256"`

	Faction     string `json:"faction" gorm:"size:8"`
	ShellType   string `json:"shellType" gorm:"size:16"`
	ChargeRings int    `json:"chargeRings"`

	MortarPosition  geom.Point `json:"mortarPosition"` // game-world 2D point (WKB)
	MortarElevation float64    `json:"mortarElevation"`
	TargetPosition  geom.Point `json:"targetPosition"`
	TargetElevation float64    `json:"targetElevation"`

	Distance      int  `json:"distance"`
	BearingDeg    int  `json:"bearing"`
	BearingMils   int  `json:"bearingMils"`
	ElevationMils int  `json:"elevation"`
	ElevationDiff int  `json:"elevationDiff"`
	TimeOfFlight  int  `json:"timeOfFlight"`
	InRange       bool `json:"inRange"`
	MinRange      int  `json:"minRange"`
	MaxRange      int  `json:"maxRange"`

	CreatedAt time.Time `json:"savedAt"`
}

func (*FireMissionRecord) TableName() string {
	return "fire_mission_records"
}
