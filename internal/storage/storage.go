// internal/storage/storage.go
package storage

import (
	"github.com/MrMark1127/arma-tactical/pkg/core"
)

// Error sentinels live in pkg/core so backend implementations can return
// them without importing this package. Re-exported here for callers.
var (
	ErrNotFound      = core.ErrNotFound
	ErrPermission    = core.ErrPermission
	ErrUsernameTaken = core.ErrUsernameTaken
)

// Backend is the interface all storage implementations must satisfy.
// Every plan-scoped call takes the caller's user ID and enforces the
// owner-or-shared capability model: reads require the caller to own the
// plan or appear on its share list; writes additionally require the share
// to carry edit permission. Plan deletion and share management are owner
// only.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Users
	CreateUser(username, passwordHash string) (core.User, error)
	GetUserByUsername(username string) (core.User, string, error) // user, password hash
	GetUser(userID string) (core.User, error)

	// Plan management
	CreatePlan(ownerID string, plan core.Plan) (core.Plan, error)
	GetPlan(callerID, planID string) (core.Plan, error)
	ListPlans(callerID string) ([]core.Plan, error) // owned plus shared-with
	UpdatePlan(callerID string, plan core.Plan) (core.Plan, error)
	DeletePlan(callerID, planID string) error

	// Share management
	SharePlan(callerID string, share core.PlanShare) error
	UnsharePlan(callerID, planID, userID string) error
	ListShares(callerID, planID string) ([]core.PlanShare, error)

	// Markers
	AddMarker(callerID string, m core.Marker) (core.Marker, error)
	UpdateMarker(callerID string, m core.Marker) (core.Marker, error)
	DeleteMarker(callerID, planID string, markerID uint) error
	ListMarkers(callerID, planID string) ([]core.Marker, error)

	// Routes
	AddRoute(callerID string, r core.Route) (core.Route, error)
	UpdateRoute(callerID string, r core.Route) (core.Route, error)
	DeleteRoute(callerID, planID string, routeID uint) error
	ListRoutes(callerID, planID string) ([]core.Route, error)

	// Saved fire missions
	SaveFireMission(callerID string, fm core.SavedFireMission) (core.SavedFireMission, error)
	ListFireMissions(callerID, planID string) ([]core.SavedFireMission, error)
	DeleteFireMission(callerID, planID string, id uint) error
}
