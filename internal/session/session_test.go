package session

import (
	"context"
	"testing"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestLoadSelectsFirstMembershipByName(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "owner@example.com")
	orgB := testutil.SeedOrg(t, db, "Bravo Traders")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	testutil.SeedMembership(t, db, user.ID, orgB.ID, model.RoleStaff, true)
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)

	sess := NewContext(db, user.ID)
	memberships, err := sess.Load(ctx)
	require.NoError(t, err)
	require.Len(t, memberships, 2)

	// Deterministic order: organization name.
	require.Equal(t, orgA.ID, memberships[0].OrgID)
	require.Equal(t, orgB.ID, memberships[1].OrgID)

	orgID, err := sess.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgA.ID, orgID)
	require.Equal(t, model.RoleOwner, sess.Current().Role)

	// Resolved selection is written durably.
	var selection model.OrgSelection
	require.NoError(t, db.First(&selection, "user_id = ?", user.ID).Error)
	require.Equal(t, orgA.ID, selection.OrgID)
}

func TestExactlyOneCurrentMembership(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "multi@example.com")
	for _, name := range []string{"One", "Two", "Three"} {
		org := testutil.SeedOrg(t, db, name)
		testutil.SeedMembership(t, db, user.ID, org.ID, model.RoleStaff, true)
	}

	sess := NewContext(db, user.ID)
	memberships, err := sess.Load(ctx)
	require.NoError(t, err)
	require.Len(t, memberships, 3)

	current := sess.Current()
	require.NotNil(t, current)

	found := 0
	for _, m := range memberships {
		if m.OrgID == current.OrgID {
			found++
		}
	}
	require.Equal(t, 1, found)
}

func TestSwitchPersistsAcrossRestart(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "switcher@example.com")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	orgB := testutil.SeedOrg(t, db, "Bravo Traders")
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)
	testutil.SeedMembership(t, db, user.ID, orgB.ID, model.RoleStaff, true)

	sess := NewContext(db, user.ID)
	_, err := sess.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Switch(ctx, orgB.ID))

	orgID, err := sess.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgB.ID, orgID)

	// Simulated restart: a fresh context resolves the remembered selection.
	restarted := NewContext(db, user.ID)
	_, err = restarted.Load(ctx)
	require.NoError(t, err)
	orgID, err = restarted.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgB.ID, orgID)
}

func TestFallbackWhenRememberedOrgNoLongerActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "fallback@example.com")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	orgB := testutil.SeedOrg(t, db, "Bravo Traders")
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)
	membershipB := testutil.SeedMembership(t, db, user.ID, orgB.ID, model.RoleStaff, true)

	sess := NewContext(db, user.ID)
	_, err := sess.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Switch(ctx, orgB.ID))

	// Deactivate the remembered membership.
	require.NoError(t, db.Model(&membershipB).Update("active", false).Error)

	restarted := NewContext(db, user.ID)
	memberships, err := restarted.Load(ctx)
	require.NoError(t, err)
	require.Len(t, memberships, 1)

	orgID, err := restarted.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgA.ID, orgID)

	// The durable selection is rewritten to the fallback.
	var selection model.OrgSelection
	require.NoError(t, db.First(&selection, "user_id = ?", user.ID).Error)
	require.Equal(t, orgA.ID, selection.OrgID)
}

func TestNoActiveMemberships(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "orgless@example.com")

	sess := NewContext(db, user.ID)
	memberships, err := sess.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, memberships)
	require.Nil(t, sess.Current())

	_, err = sess.CurrentOrgID()
	require.ErrorIs(t, err, apperr.ErrNoOrganizationSelected)
}

func TestSwitchToUnknownOrganizationFails(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "strict@example.com")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	orgB := testutil.SeedOrg(t, db, "Bravo Traders") // no membership
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)

	sess := NewContext(db, user.ID)
	_, err := sess.Load(ctx)
	require.NoError(t, err)

	err = sess.Switch(ctx, orgB.ID)
	require.ErrorIs(t, err, apperr.ErrUnknownOrganization)

	// Current selection is unchanged.
	orgID, err := sess.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgA.ID, orgID)

	var selection model.OrgSelection
	require.NoError(t, db.First(&selection, "user_id = ?", user.ID).Error)
	require.Equal(t, orgA.ID, selection.OrgID)
}

func TestRefreshPicksUpNewMembership(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "grower@example.com")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)

	sess := NewContext(db, user.ID)
	_, err := sess.Load(ctx)
	require.NoError(t, err)
	require.Len(t, sess.Memberships(), 1)

	orgB := testutil.SeedOrg(t, db, "Bravo Traders")
	testutil.SeedMembership(t, db, user.ID, orgB.ID, model.RoleAdmin, true)

	require.NoError(t, sess.Refresh(ctx))
	require.Len(t, sess.Memberships(), 2)

	// The current organization survives the refresh.
	orgID, err := sess.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgA.ID, orgID)
}

func TestLoadFailureRetainsPriorState(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "resilient@example.com")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)

	sess := NewContext(db, user.ID)
	_, err := sess.Load(ctx)
	require.NoError(t, err)

	// Break the connection; the refresh must fail without clearing state.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = sess.Refresh(ctx)
	require.ErrorIs(t, err, apperr.ErrDataAccess)

	require.Len(t, sess.Memberships(), 1)
	orgID, err := sess.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgA.ID, orgID)
}

func TestClearSelection(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "leaver@example.com")
	orgA := testutil.SeedOrg(t, db, "Alpha Stores")
	orgB := testutil.SeedOrg(t, db, "Bravo Traders")
	testutil.SeedMembership(t, db, user.ID, orgA.ID, model.RoleOwner, true)
	testutil.SeedMembership(t, db, user.ID, orgB.ID, model.RoleStaff, true)

	sess := NewContext(db, user.ID)
	_, err := sess.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Switch(ctx, orgB.ID))

	require.NoError(t, sess.ClearSelection(ctx))
	require.Nil(t, sess.Current())

	var count int64
	require.NoError(t, db.Model(&model.OrgSelection{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Zero(t, count)

	// Next sign-in starts from the deterministic first membership.
	next := NewContext(db, user.ID)
	_, err = next.Load(ctx)
	require.NoError(t, err)
	orgID, err := next.CurrentOrgID()
	require.NoError(t, err)
	require.Equal(t, orgA.ID, orgID)
}
