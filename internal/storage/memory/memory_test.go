package memory

import (
	"errors"
	"testing"

	"github.com/MrMark1127/arma-tactical/pkg/core"
)

func newBackendWithUsers(t *testing.T) (*Backend, core.User, core.User) {
	t.Helper()
	b := New()
	owner, err := b.CreateUser("owner", "hash1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other, err := b.CreateUser("other", "hash2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b, owner, other
}

func mustCreatePlan(t *testing.T, b *Backend, ownerID string) core.Plan {
	t.Helper()
	plan, err := b.CreatePlan(ownerID, core.Plan{Name: "Op Test", WorldName: "tanoa"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return plan
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	b := New()
	if _, err := b.CreateUser("dup", "h"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.CreateUser("dup", "h2"); !errors.Is(err, core.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestGetUserByUsername_ReturnsHash(t *testing.T) {
	b := New()
	created, err := b.CreateUser("alice", "secrethash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, hash, err := b.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("expected user %s, got %s", created.ID, u.ID)
	}
	if hash != "secrethash" {
		t.Errorf("expected stored hash, got %q", hash)
	}
}

func TestCreatePlan_AssignsIdentity(t *testing.T) {
	b, owner, _ := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if plan.ID == "" {
		t.Error("expected plan to get a UUID")
	}
	if plan.OwnerID != owner.ID {
		t.Errorf("expected owner %s, got %s", owner.ID, plan.OwnerID)
	}
}

func TestGetPlan_HiddenFromStrangers(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if _, err := b.GetPlan(other.ID, plan.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for stranger, got %v", err)
	}
}

func TestSharePlan_GrantsRead(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	err := b.SharePlan(owner.ID, core.PlanShare{PlanID: plan.ID, UserID: other.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := b.GetPlan(other.ID, plan.ID)
	if err != nil {
		t.Fatalf("expected shared user to read plan: %v", err)
	}
	if got.ID != plan.ID {
		t.Errorf("expected plan %s, got %s", plan.ID, got.ID)
	}
}

func TestSharePlan_ReadOnlyCannotEdit(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if err := b.SharePlan(owner.ID, core.PlanShare{PlanID: plan.ID, UserID: other.ID, CanEdit: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := b.AddMarker(other.ID, core.Marker{PlanID: plan.ID, Label: "X"})
	if !errors.Is(err, core.ErrPermission) {
		t.Errorf("expected ErrPermission for read-only share, got %v", err)
	}
}

func TestSharePlan_EditorCanPlaceMarkers(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if err := b.SharePlan(owner.ID, core.PlanShare{PlanID: plan.ID, UserID: other.ID, CanEdit: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := b.AddMarker(other.ID, core.Marker{PlanID: plan.ID, Label: "OBJ"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID == 0 {
		t.Error("expected marker to get an ID")
	}
}

func TestSharePlan_NonOwnerCannotShare(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if err := b.SharePlan(owner.ID, core.PlanShare{PlanID: plan.ID, UserID: other.ID, CanEdit: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	third, err := b.CreateUser("third", "h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = b.SharePlan(other.ID, core.PlanShare{PlanID: plan.ID, UserID: third.ID})
	if !errors.Is(err, core.ErrPermission) {
		t.Errorf("expected ErrPermission for non-owner share, got %v", err)
	}
}

func TestDeletePlan_OwnerOnly(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if err := b.SharePlan(owner.ID, core.PlanShare{PlanID: plan.ID, UserID: other.ID, CanEdit: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := b.DeletePlan(other.ID, plan.ID); !errors.Is(err, core.ErrPermission) {
		t.Errorf("expected ErrPermission for editor delete, got %v", err)
	}
	if err := b.DeletePlan(owner.ID, plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.GetPlan(owner.ID, plan.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected plan gone after delete, got %v", err)
	}
}

func TestDeletePlan_CascadesContents(t *testing.T) {
	b, owner, _ := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if _, err := b.AddMarker(owner.ID, core.Marker{PlanID: plan.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.AddRoute(owner.ID, core.Route{PlanID: plan.ID, Polyline: core.Polyline{{X: 1, Y: 2}, {X: 3, Y: 4}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := b.DeletePlan(owner.ID, plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.ListMarkers(owner.ID, plan.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected markers gone with plan, got %v", err)
	}
}

func TestMarkers_CRUD(t *testing.T) {
	b, owner, _ := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	m, err := b.AddMarker(owner.ID, core.Marker{
		PlanID:   plan.ID,
		Label:    "OBJ ALPHA",
		Position: core.Position3D{X: 1234, Y: 5678},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Label = "OBJ BRAVO"
	if _, err := b.UpdateMarker(owner.ID, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	markers, err := b.ListMarkers(owner.ID, plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markers) != 1 || markers[0].Label != "OBJ BRAVO" {
		t.Errorf("unexpected markers: %+v", markers)
	}

	if err := b.DeleteMarker(owner.ID, plan.ID, m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.DeleteMarker(owner.ID, plan.ID, m.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestUpdateMarker_UnknownID(t *testing.T) {
	b, owner, _ := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	_, err := b.UpdateMarker(owner.ID, core.Marker{PlanID: plan.ID, ID: 999})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPlans_OwnedAndShared(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	owned := mustCreatePlan(t, b, owner.ID)
	foreign := mustCreatePlan(t, b, other.ID)

	if err := b.SharePlan(other.ID, core.PlanShare{PlanID: foreign.ID, UserID: owner.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plans, err := b.ListPlans(owner.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans (owned + shared), got %d", len(plans))
	}
	ids := map[string]bool{}
	for _, p := range plans {
		ids[p.ID] = true
	}
	if !ids[owned.ID] || !ids[foreign.ID] {
		t.Errorf("expected both plans, got %v", ids)
	}
}

func TestFireMissions_SaveAndList(t *testing.T) {
	b, owner, _ := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	fm, err := b.SaveFireMission(owner.ID, core.SavedFireMission{
		PlanID: plan.ID,
		Label:  "FM 1",
		Request: core.FireMission{
			Mortar:  core.Position3D{X: 1000, Y: 1000},
			Target:  core.Position3D{X: 1100, Y: 1000},
			Faction: core.FactionUS,
			Shell:   core.ShellHE,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm.ID == 0 {
		t.Error("expected saved fire mission to get an ID")
	}

	missions, err := b.ListFireMissions(owner.ID, plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missions) != 1 || missions[0].Label != "FM 1" {
		t.Errorf("unexpected missions: %+v", missions)
	}

	if err := b.DeleteFireMission(owner.ID, plan.ID, fm.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnsharePlan_RevokesAccess(t *testing.T) {
	b, owner, other := newBackendWithUsers(t)
	plan := mustCreatePlan(t, b, owner.ID)

	if err := b.SharePlan(owner.ID, core.PlanShare{PlanID: plan.ID, UserID: other.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.UnsharePlan(owner.ID, plan.ID, other.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := b.GetPlan(other.ID, plan.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected access revoked, got %v", err)
	}
}
