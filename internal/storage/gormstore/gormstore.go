// Package gormstore implements the storage.Backend interface over GORM,
// targeting Postgres with a SQLite fallback. Access-control lookups go
// through the plan cache; rows convert to core types at the boundary.
package gormstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MrMark1127/arma-tactical/internal/cache"
	"github.com/MrMark1127/arma-tactical/internal/database"
	"github.com/MrMark1127/arma-tactical/internal/logging"
	"github.com/MrMark1127/arma-tactical/internal/model"
	"github.com/MrMark1127/arma-tactical/internal/model/convert"
	"github.com/MrMark1127/arma-tactical/pkg/core"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB          *gorm.DB
	PlanCache   *cache.PlanCache
	MarkerCache *cache.MarkerCache
	Log         *logging.SlogManager
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies
	log  *slog.Logger
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{deps: deps}
}

// Init connects (if no DB was injected), migrates the schema, and readies
// the plan cache.
func (b *Backend) Init() error {
	if b.deps.PlanCache == nil {
		b.deps.PlanCache = cache.NewPlanCache()
	}
	if b.deps.MarkerCache == nil {
		b.deps.MarkerCache = cache.NewMarkerCache()
	}
	if b.deps.Log != nil {
		b.log = b.deps.Log.Logger()
	} else {
		b.log = slog.Default()
	}

	if b.deps.DB == nil {
		mgr := database.NewManager(zerolog.New(os.Stderr).With().Timestamp().Logger())
		if err := mgr.Connect(); err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		b.deps.DB = mgr.DB
	}

	if err := b.deps.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Injected SQLite connections (tests, standalone) default to
	// foreign_keys off, which silently disables the cascade constraints.
	if b.deps.DB.Dialector.Name() == "sqlite" {
		if err := b.deps.DB.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	b.log.Info("Storage initialized", "backend", "gorm")
	return nil
}

// Close closes the underlying connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mapNotFound converts gorm's record-not-found into the storage sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrNotFound
	}
	return err
}

func (b *Backend) userByUUID(id string) (model.User, error) {
	var u model.User
	if err := b.deps.DB.Where("uuid = ?", id).First(&u).Error; err != nil {
		return model.User{}, mapNotFound(err)
	}
	return u, nil
}

// access loads (or serves from cache) the capability view of a plan.
func (b *Backend) access(planUUID string) (cache.PlanAccess, error) {
	if a, ok := b.deps.PlanCache.Get(planUUID); ok {
		return a, nil
	}

	var plan model.Plan
	if err := b.deps.DB.Preload("Owner").Where("uuid = ?", planUUID).First(&plan).Error; err != nil {
		return cache.PlanAccess{}, mapNotFound(err)
	}

	var shares []model.PlanShare
	if err := b.deps.DB.Preload("User").Where("plan_id = ?", plan.ID).Find(&shares).Error; err != nil {
		return cache.PlanAccess{}, err
	}

	a := cache.PlanAccess{
		PlanPK:    plan.ID,
		PlanUUID:  plan.UUID,
		OwnerPK:   plan.OwnerID,
		OwnerUUID: plan.Owner.UUID,
		Shares:    make(map[string]bool, len(shares)),
	}
	for _, s := range shares {
		a.Shares[s.User.UUID] = s.CanEdit
	}
	b.deps.PlanCache.Set(a)
	return a, nil
}

// requireRead resolves a plan the caller may read. Callers without access
// get ErrNotFound so the plan's existence is not leaked.
func (b *Backend) requireRead(callerID, planUUID string) (cache.PlanAccess, error) {
	a, err := b.access(planUUID)
	if err != nil {
		return cache.PlanAccess{}, err
	}
	if !a.CanRead(callerID) {
		return cache.PlanAccess{}, core.ErrNotFound
	}
	return a, nil
}

// requireEdit resolves a plan the caller may modify.
func (b *Backend) requireEdit(callerID, planUUID string) (cache.PlanAccess, error) {
	a, err := b.requireRead(callerID, planUUID)
	if err != nil {
		return cache.PlanAccess{}, err
	}
	if !a.CanEdit(callerID) {
		return cache.PlanAccess{}, core.ErrPermission
	}
	return a, nil
}

// requireOwner resolves a plan the caller owns.
func (b *Backend) requireOwner(callerID, planUUID string) (cache.PlanAccess, error) {
	a, err := b.requireRead(callerID, planUUID)
	if err != nil {
		return cache.PlanAccess{}, err
	}
	if a.OwnerUUID != callerID {
		return cache.PlanAccess{}, core.ErrPermission
	}
	return a, nil
}

// CreateUser registers a new user with a pre-hashed password.
func (b *Backend) CreateUser(username, passwordHash string) (core.User, error) {
	var existing model.User
	err := b.deps.DB.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return core.User{}, core.ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return core.User{}, err
	}

	u := model.User{
		UUID:         uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := b.deps.DB.Create(&u).Error; err != nil {
		return core.User{}, err
	}
	return core.User{ID: u.UUID, Username: u.Username, CreatedAt: u.CreatedAt}, nil
}

// GetUserByUsername returns the user and stored password hash.
func (b *Backend) GetUserByUsername(username string) (core.User, string, error) {
	var u model.User
	if err := b.deps.DB.Where("username = ?", username).First(&u).Error; err != nil {
		return core.User{}, "", mapNotFound(err)
	}
	return core.User{ID: u.UUID, Username: u.Username, CreatedAt: u.CreatedAt}, u.PasswordHash, nil
}

// GetUser returns a user by UUID.
func (b *Backend) GetUser(userID string) (core.User, error) {
	u, err := b.userByUUID(userID)
	if err != nil {
		return core.User{}, err
	}
	return core.User{ID: u.UUID, Username: u.Username, CreatedAt: u.CreatedAt}, nil
}

// CreatePlan creates a plan owned by ownerID.
func (b *Backend) CreatePlan(ownerID string, plan core.Plan) (core.Plan, error) {
	owner, err := b.userByUUID(ownerID)
	if err != nil {
		return core.Plan{}, err
	}

	row := model.Plan{
		UUID:        uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        plan.Name,
		Description: plan.Description,
		WorldName:   plan.WorldName,
	}
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return core.Plan{}, err
	}
	return convert.PlanToCore(row, ownerID), nil
}

// GetPlan returns a plan the caller may read.
func (b *Backend) GetPlan(callerID, planID string) (core.Plan, error) {
	a, err := b.requireRead(callerID, planID)
	if err != nil {
		return core.Plan{}, err
	}

	var row model.Plan
	if err := b.deps.DB.First(&row, a.PlanPK).Error; err != nil {
		return core.Plan{}, mapNotFound(err)
	}
	return convert.PlanToCore(row, a.OwnerUUID), nil
}

// ListPlans returns plans the caller owns or is shared on.
func (b *Backend) ListPlans(callerID string) ([]core.Plan, error) {
	caller, err := b.userByUUID(callerID)
	if err != nil {
		return nil, err
	}

	var rows []model.Plan
	err = b.deps.DB.Preload("Owner").
		Where("owner_id = ?", caller.ID).
		Or("id IN (?)", b.deps.DB.Model(&model.PlanShare{}).Select("plan_id").Where("user_id = ?", caller.ID)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	plans := make([]core.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, convert.PlanToCore(row, row.Owner.UUID))
	}
	return plans, nil
}

// UpdatePlan updates plan metadata; requires edit capability.
func (b *Backend) UpdatePlan(callerID string, plan core.Plan) (core.Plan, error) {
	a, err := b.requireEdit(callerID, plan.ID)
	if err != nil {
		return core.Plan{}, err
	}

	var row model.Plan
	if err := b.deps.DB.First(&row, a.PlanPK).Error; err != nil {
		return core.Plan{}, mapNotFound(err)
	}
	row.Name = plan.Name
	row.Description = plan.Description
	row.WorldName = plan.WorldName
	if err := b.deps.DB.Save(&row).Error; err != nil {
		return core.Plan{}, err
	}
	return convert.PlanToCore(row, a.OwnerUUID), nil
}

// DeletePlan removes a plan; owner only. Markers, routes, shares and fire
// missions cascade at the schema level.
func (b *Backend) DeletePlan(callerID, planID string) error {
	a, err := b.requireOwner(callerID, planID)
	if err != nil {
		return err
	}
	// Children are removed explicitly: the schema declares ON DELETE
	// CASCADE, but connections with foreign_keys off would otherwise
	// leave orphan rows behind.
	err = b.deps.DB.Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{
			&model.Marker{}, &model.Route{}, &model.FireMissionRecord{}, &model.PlanShare{},
		} {
			if err := tx.Where("plan_id = ?", a.PlanPK).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Plan{}, a.PlanPK).Error
	})
	if err != nil {
		return err
	}
	b.deps.PlanCache.Invalidate(planID)
	b.deps.MarkerCache.Invalidate(planID)
	return nil
}

// SharePlan grants a user access to a plan; owner only.
func (b *Backend) SharePlan(callerID string, share core.PlanShare) error {
	a, err := b.requireOwner(callerID, share.PlanID)
	if err != nil {
		return err
	}
	target, err := b.userByUUID(share.UserID)
	if err != nil {
		return err
	}

	row := model.PlanShare{
		PlanID:  a.PlanPK,
		UserID:  target.ID,
		CanEdit: share.CanEdit,
	}
	if err := b.deps.DB.Where("plan_id = ? AND user_id = ?", a.PlanPK, target.ID).
		Assign(map[string]interface{}{"can_edit": share.CanEdit}).
		FirstOrCreate(&row).Error; err != nil {
		return err
	}
	b.deps.PlanCache.Invalidate(share.PlanID)
	return nil
}

// UnsharePlan revokes a share; owner only.
func (b *Backend) UnsharePlan(callerID, planID, userID string) error {
	a, err := b.requireOwner(callerID, planID)
	if err != nil {
		return err
	}
	target, err := b.userByUUID(userID)
	if err != nil {
		return err
	}
	if err := b.deps.DB.Where("plan_id = ? AND user_id = ?", a.PlanPK, target.ID).
		Delete(&model.PlanShare{}).Error; err != nil {
		return err
	}
	b.deps.PlanCache.Invalidate(planID)
	return nil
}

// ListShares lists a plan's share records.
func (b *Backend) ListShares(callerID, planID string) ([]core.PlanShare, error) {
	a, err := b.requireRead(callerID, planID)
	if err != nil {
		return nil, err
	}

	var rows []model.PlanShare
	if err := b.deps.DB.Preload("User").Where("plan_id = ?", a.PlanPK).Find(&rows).Error; err != nil {
		return nil, err
	}
	shares := make([]core.PlanShare, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, core.PlanShare{
			PlanID:   planID,
			UserID:   row.User.UUID,
			CanEdit:  row.CanEdit,
			SharedAt: row.CreatedAt,
		})
	}
	return shares, nil
}

// AddMarker places a marker on a plan; requires edit capability.
func (b *Backend) AddMarker(callerID string, m core.Marker) (core.Marker, error) {
	a, err := b.requireEdit(callerID, m.PlanID)
	if err != nil {
		return core.Marker{}, err
	}

	row := convert.CoreToMarker(m, a.PlanPK)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return core.Marker{}, err
	}
	b.deps.MarkerCache.Invalidate(m.PlanID)
	return convert.MarkerToCore(row, m.PlanID), nil
}

// UpdateMarker replaces a marker's fields; requires edit capability.
func (b *Backend) UpdateMarker(callerID string, m core.Marker) (core.Marker, error) {
	a, err := b.requireEdit(callerID, m.PlanID)
	if err != nil {
		return core.Marker{}, err
	}

	var existing model.Marker
	if err := b.deps.DB.Where("id = ? AND plan_id = ?", m.ID, a.PlanPK).First(&existing).Error; err != nil {
		return core.Marker{}, mapNotFound(err)
	}

	row := convert.CoreToMarker(m, a.PlanPK)
	row.CreatedAt = existing.CreatedAt
	if err := b.deps.DB.Save(&row).Error; err != nil {
		return core.Marker{}, err
	}
	b.deps.MarkerCache.Invalidate(m.PlanID)
	return convert.MarkerToCore(row, m.PlanID), nil
}

// DeleteMarker removes a marker; requires edit capability.
func (b *Backend) DeleteMarker(callerID, planID string, markerID uint) error {
	a, err := b.requireEdit(callerID, planID)
	if err != nil {
		return err
	}
	res := b.deps.DB.Where("id = ? AND plan_id = ?", markerID, a.PlanPK).Delete(&model.Marker{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	b.deps.MarkerCache.Invalidate(planID)
	return nil
}

// ListMarkers lists a plan's markers, serving repeat reads from the
// marker cache.
func (b *Backend) ListMarkers(callerID, planID string) ([]core.Marker, error) {
	a, err := b.requireRead(callerID, planID)
	if err != nil {
		return nil, err
	}
	if markers, ok := b.deps.MarkerCache.Get(planID); ok {
		return markers, nil
	}

	var rows []model.Marker
	if err := b.deps.DB.Where("plan_id = ?", a.PlanPK).Find(&rows).Error; err != nil {
		return nil, err
	}
	markers := make([]core.Marker, 0, len(rows))
	for _, row := range rows {
		markers = append(markers, convert.MarkerToCore(row, planID))
	}
	b.deps.MarkerCache.Set(planID, markers)
	return markers, nil
}

// AddRoute places a route on a plan; requires edit capability.
func (b *Backend) AddRoute(callerID string, r core.Route) (core.Route, error) {
	a, err := b.requireEdit(callerID, r.PlanID)
	if err != nil {
		return core.Route{}, err
	}

	row := convert.CoreToRoute(r, a.PlanPK)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return core.Route{}, err
	}
	return convert.RouteToCore(row, r.PlanID), nil
}

// UpdateRoute replaces a route's fields; requires edit capability.
func (b *Backend) UpdateRoute(callerID string, r core.Route) (core.Route, error) {
	a, err := b.requireEdit(callerID, r.PlanID)
	if err != nil {
		return core.Route{}, err
	}

	var existing model.Route
	if err := b.deps.DB.Where("id = ? AND plan_id = ?", r.ID, a.PlanPK).First(&existing).Error; err != nil {
		return core.Route{}, mapNotFound(err)
	}

	row := convert.CoreToRoute(r, a.PlanPK)
	row.CreatedAt = existing.CreatedAt
	if err := b.deps.DB.Save(&row).Error; err != nil {
		return core.Route{}, err
	}
	return convert.RouteToCore(row, r.PlanID), nil
}

// DeleteRoute removes a route; requires edit capability.
func (b *Backend) DeleteRoute(callerID, planID string, routeID uint) error {
	a, err := b.requireEdit(callerID, planID)
	if err != nil {
		return err
	}
	res := b.deps.DB.Where("id = ? AND plan_id = ?", routeID, a.PlanPK).Delete(&model.Route{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListRoutes lists a plan's routes.
func (b *Backend) ListRoutes(callerID, planID string) ([]core.Route, error) {
	a, err := b.requireRead(callerID, planID)
	if err != nil {
		return nil, err
	}

	var rows []model.Route
	if err := b.deps.DB.Where("plan_id = ?", a.PlanPK).Find(&rows).Error; err != nil {
		return nil, err
	}
	routes := make([]core.Route, 0, len(rows))
	for _, row := range rows {
		routes = append(routes, convert.RouteToCore(row, planID))
	}
	return routes, nil
}

// SaveFireMission attaches a solved fire mission to a plan; requires edit
// capability.
func (b *Backend) SaveFireMission(callerID string, fm core.SavedFireMission) (core.SavedFireMission, error) {
	a, err := b.requireEdit(callerID, fm.PlanID)
	if err != nil {
		return core.SavedFireMission{}, err
	}

	row := convert.CoreToFireMission(fm, a.PlanPK)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return core.SavedFireMission{}, err
	}
	return convert.FireMissionToCore(row, fm.PlanID), nil
}

// ListFireMissions lists a plan's saved fire missions.
func (b *Backend) ListFireMissions(callerID, planID string) ([]core.SavedFireMission, error) {
	a, err := b.requireRead(callerID, planID)
	if err != nil {
		return nil, err
	}

	var rows []model.FireMissionRecord
	if err := b.deps.DB.Where("plan_id = ?", a.PlanPK).Find(&rows).Error; err != nil {
		return nil, err
	}
	missions := make([]core.SavedFireMission, 0, len(rows))
	for _, row := range rows {
		missions = append(missions, convert.FireMissionToCore(row, planID))
	}
	return missions, nil
}

// DeleteFireMission removes a saved fire mission; requires edit capability.
func (b *Backend) DeleteFireMission(callerID, planID string, id uint) error {
	a, err := b.requireEdit(callerID, planID)
	if err != nil {
		return err
	}
	res := b.deps.DB.Where("id = ? AND plan_id = ?", id, a.PlanPK).Delete(&model.FireMissionRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}
