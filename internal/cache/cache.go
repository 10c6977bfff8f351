// Package cache keeps plan access-control data in memory so the
// owner-or-shared capability check stays off the database hot path.
package cache

import "sync"

// PlanAccess is the cached capability view of one plan: its primary keys
// plus the share list, which is everything an access check needs.
type PlanAccess struct {
	PlanPK    uint
	PlanUUID  string
	OwnerPK   uint
	OwnerUUID string
	Shares    map[string]bool // user UUID -> can edit
}

// CanRead reports whether the user owns the plan or appears on its share
// list.
func (a PlanAccess) CanRead(userUUID string) bool {
	if a.OwnerUUID == userUUID {
		return true
	}
	_, ok := a.Shares[userUUID]
	return ok
}

// CanEdit reports whether the user owns the plan or holds an edit share.
func (a PlanAccess) CanEdit(userUUID string) bool {
	if a.OwnerUUID == userUUID {
		return true
	}
	canEdit, ok := a.Shares[userUUID]
	return ok && canEdit
}

// PlanCache caches PlanAccess records keyed by plan UUID. Mutating
// operations on a plan's shares must invalidate its entry.
type PlanCache struct {
	m     sync.Mutex
	plans map[string]PlanAccess
}

// NewPlanCache creates an empty plan cache.
func NewPlanCache() *PlanCache {
	return &PlanCache{
		plans: make(map[string]PlanAccess),
	}
}

// Get returns the cached access record for a plan.
func (c *PlanCache) Get(planUUID string) (PlanAccess, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	a, ok := c.plans[planUUID]
	return a, ok
}

// Set stores the access record for a plan.
func (c *PlanCache) Set(a PlanAccess) {
	c.m.Lock()
	defer c.m.Unlock()
	c.plans[a.PlanUUID] = a
}

// Invalidate drops a plan's cached record.
func (c *PlanCache) Invalidate(planUUID string) {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.plans, planUUID)
}

// Reset drops all cached records.
func (c *PlanCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.plans = make(map[string]PlanAccess)
}
