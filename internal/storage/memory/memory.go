// Package memory implements the storage.Backend interface with in-process
// maps. It backs tests and standalone single-user deployments where no
// database is configured.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/google/uuid"
)

type planRecord struct {
	plan         core.Plan
	shares       map[string]core.PlanShare // keyed by user ID
	markers      map[uint]core.Marker
	routes       map[uint]core.Route
	fireMissions map[uint]core.SavedFireMission
}

// Backend is an in-memory storage backend.
type Backend struct {
	mu sync.RWMutex

	users      map[string]core.User // keyed by user ID
	userHashes map[string]string    // user ID -> password hash
	byUsername map[string]string    // username -> user ID

	plans  map[string]*planRecord // keyed by plan ID
	nextID uint
}

// New creates an empty in-memory backend.
func New() *Backend {
	return &Backend{
		users:      make(map[string]core.User),
		userHashes: make(map[string]string),
		byUsername: make(map[string]string),
		plans:      make(map[string]*planRecord),
	}
}

// Init is a no-op for the in-memory backend.
func (b *Backend) Init() error { return nil }

// Close is a no-op for the in-memory backend.
func (b *Backend) Close() error { return nil }

func (b *Backend) nextObjectID() uint {
	b.nextID++
	return b.nextID
}

// CreateUser registers a new user with a pre-hashed password.
func (b *Backend) CreateUser(username, passwordHash string) (core.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, taken := b.byUsername[username]; taken {
		return core.User{}, core.ErrUsernameTaken
	}

	u := core.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	b.users[u.ID] = u
	b.userHashes[u.ID] = passwordHash
	b.byUsername[username] = u.ID
	return u, nil
}

// GetUserByUsername returns the user and stored password hash.
func (b *Backend) GetUserByUsername(username string) (core.User, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	id, ok := b.byUsername[username]
	if !ok {
		return core.User{}, "", core.ErrNotFound
	}
	return b.users[id], b.userHashes[id], nil
}

// GetUser returns a user by ID.
func (b *Backend) GetUser(userID string) (core.User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	u, ok := b.users[userID]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

// canRead reports whether the caller owns the plan or appears on its
// share list.
func (r *planRecord) canRead(callerID string) bool {
	if r.plan.OwnerID == callerID {
		return true
	}
	_, shared := r.shares[callerID]
	return shared
}

// canEdit reports whether the caller owns the plan or holds an edit share.
func (r *planRecord) canEdit(callerID string) bool {
	if r.plan.OwnerID == callerID {
		return true
	}
	share, ok := r.shares[callerID]
	return ok && share.CanEdit
}

// getForRead resolves a plan the caller may read. Callers the plan is
// hidden from get ErrNotFound, not ErrPermission.
func (b *Backend) getForRead(callerID, planID string) (*planRecord, error) {
	r, ok := b.plans[planID]
	if !ok || !r.canRead(callerID) {
		return nil, core.ErrNotFound
	}
	return r, nil
}

// getForWrite resolves a plan the caller may modify.
func (b *Backend) getForWrite(callerID, planID string) (*planRecord, error) {
	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return nil, err
	}
	if !r.canEdit(callerID) {
		return nil, core.ErrPermission
	}
	return r, nil
}

// CreatePlan creates a plan owned by ownerID.
func (b *Backend) CreatePlan(ownerID string, plan core.Plan) (core.Plan, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[ownerID]; !ok {
		return core.Plan{}, core.ErrNotFound
	}

	now := time.Now().UTC()
	plan.ID = uuid.NewString()
	plan.OwnerID = ownerID
	plan.CreatedAt = now
	plan.UpdatedAt = now

	b.plans[plan.ID] = &planRecord{
		plan:         plan,
		shares:       make(map[string]core.PlanShare),
		markers:      make(map[uint]core.Marker),
		routes:       make(map[uint]core.Route),
		fireMissions: make(map[uint]core.SavedFireMission),
	}
	return plan, nil
}

// GetPlan returns a plan the caller may read.
func (b *Backend) GetPlan(callerID, planID string) (core.Plan, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return core.Plan{}, err
	}
	return r.plan, nil
}

// ListPlans returns plans the caller owns or is shared on.
func (b *Backend) ListPlans(callerID string) ([]core.Plan, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var plans []core.Plan
	for _, r := range b.plans {
		if r.canRead(callerID) {
			plans = append(plans, r.plan)
		}
	}
	return plans, nil
}

// UpdatePlan updates plan metadata; requires edit capability.
func (b *Backend) UpdatePlan(callerID string, plan core.Plan) (core.Plan, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, plan.ID)
	if err != nil {
		return core.Plan{}, err
	}
	r.plan.Name = plan.Name
	r.plan.Description = plan.Description
	r.plan.WorldName = plan.WorldName
	r.plan.UpdatedAt = time.Now().UTC()
	return r.plan, nil
}

// DeletePlan removes a plan and everything in it; owner only.
func (b *Backend) DeletePlan(callerID, planID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return err
	}
	if r.plan.OwnerID != callerID {
		return core.ErrPermission
	}
	// Markers, routes, shares and fire missions live inside the record, so
	// the delete cascades for free.
	delete(b.plans, planID)
	return nil
}

// SharePlan grants a user access to a plan; owner only.
func (b *Backend) SharePlan(callerID string, share core.PlanShare) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForRead(callerID, share.PlanID)
	if err != nil {
		return err
	}
	if r.plan.OwnerID != callerID {
		return core.ErrPermission
	}
	if _, ok := b.users[share.UserID]; !ok {
		return fmt.Errorf("%w: no such user", core.ErrNotFound)
	}
	share.SharedAt = time.Now().UTC()
	r.shares[share.UserID] = share
	return nil
}

// UnsharePlan revokes a share; owner only.
func (b *Backend) UnsharePlan(callerID, planID, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return err
	}
	if r.plan.OwnerID != callerID {
		return core.ErrPermission
	}
	delete(r.shares, userID)
	return nil
}

// ListShares lists a plan's share records.
func (b *Backend) ListShares(callerID, planID string) ([]core.PlanShare, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return nil, err
	}
	shares := make([]core.PlanShare, 0, len(r.shares))
	for _, s := range r.shares {
		shares = append(shares, s)
	}
	return shares, nil
}

// AddMarker places a marker on a plan; requires edit capability.
func (b *Backend) AddMarker(callerID string, m core.Marker) (core.Marker, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, m.PlanID)
	if err != nil {
		return core.Marker{}, err
	}
	m.ID = b.nextObjectID()
	r.markers[m.ID] = m
	r.plan.UpdatedAt = time.Now().UTC()
	return m, nil
}

// UpdateMarker replaces a marker's fields; requires edit capability.
func (b *Backend) UpdateMarker(callerID string, m core.Marker) (core.Marker, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, m.PlanID)
	if err != nil {
		return core.Marker{}, err
	}
	if _, ok := r.markers[m.ID]; !ok {
		return core.Marker{}, core.ErrNotFound
	}
	r.markers[m.ID] = m
	r.plan.UpdatedAt = time.Now().UTC()
	return m, nil
}

// DeleteMarker removes a marker; requires edit capability.
func (b *Backend) DeleteMarker(callerID, planID string, markerID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, planID)
	if err != nil {
		return err
	}
	if _, ok := r.markers[markerID]; !ok {
		return core.ErrNotFound
	}
	delete(r.markers, markerID)
	r.plan.UpdatedAt = time.Now().UTC()
	return nil
}

// ListMarkers lists a plan's markers.
func (b *Backend) ListMarkers(callerID, planID string) ([]core.Marker, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return nil, err
	}
	markers := make([]core.Marker, 0, len(r.markers))
	for _, m := range r.markers {
		markers = append(markers, m)
	}
	return markers, nil
}

// AddRoute places a route on a plan; requires edit capability.
func (b *Backend) AddRoute(callerID string, rt core.Route) (core.Route, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, rt.PlanID)
	if err != nil {
		return core.Route{}, err
	}
	rt.ID = b.nextObjectID()
	r.routes[rt.ID] = rt
	r.plan.UpdatedAt = time.Now().UTC()
	return rt, nil
}

// UpdateRoute replaces a route's fields; requires edit capability.
func (b *Backend) UpdateRoute(callerID string, rt core.Route) (core.Route, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, rt.PlanID)
	if err != nil {
		return core.Route{}, err
	}
	if _, ok := r.routes[rt.ID]; !ok {
		return core.Route{}, core.ErrNotFound
	}
	r.routes[rt.ID] = rt
	r.plan.UpdatedAt = time.Now().UTC()
	return rt, nil
}

// DeleteRoute removes a route; requires edit capability.
func (b *Backend) DeleteRoute(callerID, planID string, routeID uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, planID)
	if err != nil {
		return err
	}
	if _, ok := r.routes[routeID]; !ok {
		return core.ErrNotFound
	}
	delete(r.routes, routeID)
	r.plan.UpdatedAt = time.Now().UTC()
	return nil
}

// ListRoutes lists a plan's routes.
func (b *Backend) ListRoutes(callerID, planID string) ([]core.Route, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return nil, err
	}
	routes := make([]core.Route, 0, len(r.routes))
	for _, rt := range r.routes {
		routes = append(routes, rt)
	}
	return routes, nil
}

// SaveFireMission attaches a solved fire mission to a plan; requires edit
// capability.
func (b *Backend) SaveFireMission(callerID string, fm core.SavedFireMission) (core.SavedFireMission, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, fm.PlanID)
	if err != nil {
		return core.SavedFireMission{}, err
	}
	fm.ID = b.nextObjectID()
	fm.SavedAt = time.Now().UTC()
	r.fireMissions[fm.ID] = fm
	return fm, nil
}

// ListFireMissions lists a plan's saved fire missions.
func (b *Backend) ListFireMissions(callerID, planID string) ([]core.SavedFireMission, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, err := b.getForRead(callerID, planID)
	if err != nil {
		return nil, err
	}
	missions := make([]core.SavedFireMission, 0, len(r.fireMissions))
	for _, fm := range r.fireMissions {
		missions = append(missions, fm)
	}
	return missions, nil
}

// DeleteFireMission removes a saved fire mission; requires edit capability.
func (b *Backend) DeleteFireMission(callerID, planID string, id uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, err := b.getForWrite(callerID, planID)
	if err != nil {
		return err
	}
	if _, ok := r.fireMissions[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.fireMissions, id)
	return nil
}
