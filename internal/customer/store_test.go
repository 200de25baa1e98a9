package customer

import (
	"context"
	"testing"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/internal/session"
	"github.com/kaula1/bizmate/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func loadedSession(t *testing.T, db *gorm.DB, orgName string) *session.Context {
	t.Helper()
	user := testutil.SeedUser(t, db, orgName+"-owner@example.com")
	org := testutil.SeedOrg(t, db, orgName)
	testutil.SeedMembership(t, db, user.ID, org.ID, model.RoleOwner, true)
	sess := session.NewContext(db, user.ID)
	_, err := sess.Load(context.Background())
	require.NoError(t, err)
	return sess
}

func TestCreateStoresBlankOptionalsAsNull(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Alpha Stores")
	store := NewStore(db)

	created, err := store.Create(context.Background(), sess, CustomerInput{
		Name:  "Jane Wanjiku",
		Phone: "  ",
		Email: "jane@example.com",
	})
	require.NoError(t, err)
	require.Nil(t, created.Phone)
	require.NotNil(t, created.Email)
	require.Equal(t, "jane@example.com", *created.Email)
	require.Nil(t, created.Address)
	require.True(t, created.IsActive)

	_, err = store.Create(context.Background(), sess, CustomerInput{Name: "   "})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Alpha Stores")
	store := NewStore(db)

	seed := func(name, phone, email string) {
		_, err := store.Create(context.Background(), sess, CustomerInput{Name: name, Phone: phone, Email: email})
		require.NoError(t, err)
	}
	seed("Jane Wanjiku", "0712345678", "jane@example.com")
	seed("John Otieno", "0798765432", "otieno@shop.co.ke")
	seed("Acme Supplies", "", "orders@acme.com")

	byName, err := store.List(context.Background(), sess, "WANJIKU", true)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "Jane Wanjiku", byName[0].Name)

	byEmail, err := store.List(context.Background(), sess, "shop.co.ke", true)
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	require.Equal(t, "John Otieno", byEmail[0].Name)

	byPhone, err := store.List(context.Background(), sess, "07123", true)
	require.NoError(t, err)
	require.Len(t, byPhone, 1)

	none, err := store.List(context.Background(), sess, "nomatch", true)
	require.NoError(t, err)
	require.Empty(t, none)

	all, err := store.List(context.Background(), sess, "", true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by name.
	require.Equal(t, "Acme Supplies", all[0].Name)
}

func TestListIsOrganizationScoped(t *testing.T) {
	db := testutil.NewTestDB(t)
	sessA := loadedSession(t, db, "Alpha Stores")
	sessB := loadedSession(t, db, "Bravo Traders")
	store := NewStore(db)

	_, err := store.Create(context.Background(), sessA, CustomerInput{Name: "Jane Wanjiku"})
	require.NoError(t, err)
	other, err := store.Create(context.Background(), sessB, CustomerInput{Name: "Bravo Client"})
	require.NoError(t, err)

	customers, err := store.List(context.Background(), sessA, "", true)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	require.Equal(t, "Jane Wanjiku", customers[0].Name)

	_, err = store.Get(context.Background(), sessA, other.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateOverwritesFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Alpha Stores")
	store := NewStore(db)

	created, err := store.Create(context.Background(), sess, CustomerInput{Name: "Jane", Phone: "0712345678"})
	require.NoError(t, err)

	updated, err := store.Update(context.Background(), sess, created.ID, CustomerInput{
		Name:  "Jane Wanjiku",
		Email: "jane@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Jane Wanjiku", updated.Name)
	require.NotNil(t, updated.Email)
	// Phone was not resupplied and clears to NULL.
	require.Nil(t, updated.Phone)

	_, err = store.Update(context.Background(), sess, 9999, CustomerInput{Name: "Ghost"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteIsSoftAndFiltered(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Alpha Stores")
	store := NewStore(db)

	created, err := store.Create(context.Background(), sess, CustomerInput{Name: "Jane Wanjiku"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), sess, created.ID))

	active, err := store.List(context.Background(), sess, "", true)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := store.List(context.Background(), sess, "", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.False(t, all[0].IsActive)

	require.ErrorIs(t, store.Delete(context.Background(), sess, 9999), apperr.ErrNotFound)
}

func TestStoreRequiresSelectedOrganization(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "orgless@example.com")
	sess := session.NewContext(db, user.ID)
	_, err := sess.Load(context.Background())
	require.NoError(t, err)

	store := NewStore(db)
	_, err = store.List(context.Background(), sess, "", true)
	require.ErrorIs(t, err, apperr.ErrNoOrganizationSelected)
}
