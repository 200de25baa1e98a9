package inventory

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

func TestAdjustStockIncrementStampsRestockDate(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	svc := NewService(db)
	level, err := svc.AdjustStock(context.Background(), sess, product.ID, 5, "delivery received")
	require.NoError(t, err)
	require.Equal(t, 15, level.CurrentStock)
	require.NotNil(t, level.LastRestockDate)

	var stored model.InventoryLevel
	require.NoError(t, db.First(&stored, "product_id = ?", product.ID).Error)
	require.Equal(t, 15, stored.CurrentStock)
	require.NotNil(t, stored.LastRestockDate)
}

func TestAdjustStockDecrementLeavesRestockDateAlone(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	svc := NewService(db)
	level, err := svc.AdjustStock(context.Background(), sess, product.ID, -4, "sold 4 units")
	require.NoError(t, err)
	require.Equal(t, 6, level.CurrentStock)
	require.Nil(t, level.LastRestockDate)
}

func TestAdjustStockRejectsOverdraw(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	svc := NewService(db)
	_, err := svc.AdjustStock(context.Background(), sess, product.ID, -15, "oversell attempt")
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// Nothing was written.
	var stored model.InventoryLevel
	require.NoError(t, db.First(&stored, "product_id = ?", product.ID).Error)
	require.Equal(t, 10, stored.CurrentStock)
}

func TestAdjustStockToExactlyZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	svc := NewService(db)
	level, err := svc.AdjustStock(context.Background(), sess, product.ID, -10, "cleared shelf")
	require.NoError(t, err)
	require.Zero(t, level.CurrentStock)
}

func TestAdjustStockValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	svc := NewService(db)
	_, err := svc.AdjustStock(context.Background(), sess, product.ID, 0, "noop")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AdjustStock(context.Background(), sess, product.ID, 1, "   ")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")

	svc := NewService(db)
	_, err := svc.AdjustStock(context.Background(), sess, 9999, 1, "ghost product")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAdjustStockCannotCrossTenants(t *testing.T) {
	db := testutil.NewTestDB(t)
	sessA := loadedSession(t, db, "Alpha Stores")
	sessB := loadedSession(t, db, "Bravo Traders")
	orgA, _ := sessA.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgA, "Hammer", 10)

	svc := NewService(db)
	_, err := svc.AdjustStock(context.Background(), sessB, product.ID, -1, "wrong shop")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	var stored model.InventoryLevel
	require.NoError(t, db.First(&stored, "product_id = ?", product.ID).Error)
	require.Equal(t, 10, stored.CurrentStock)
}

func TestAdjustStockRequiresSelectedOrganization(t *testing.T) {
	db := testutil.NewTestDB(t)
	user := testutil.SeedUser(t, db, "orgless@example.com")
	sess := session.NewContext(db, user.ID)
	_, err := sess.Load(context.Background())
	require.NoError(t, err)

	svc := NewService(db)
	_, err = svc.AdjustStock(context.Background(), sess, 1, 1, "no shop yet")
	require.ErrorIs(t, err, apperr.ErrNoOrganizationSelected)
}

func TestSequentialAdjustmentsNeverGoNegative(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 5)

	svc := NewService(db)
	sold := 0
	for i := 0; i < 8; i++ {
		_, err := svc.AdjustStock(context.Background(), sess, product.ID, -1, "till sale")
		if err != nil {
			require.ErrorIs(t, err, apperr.ErrInsufficientStock)
			continue
		}
		sold++
	}
	require.Equal(t, 5, sold)

	var stored model.InventoryLevel
	require.NoError(t, db.First(&stored, "product_id = ?", product.ID).Error)
	require.Zero(t, stored.CurrentStock)
}

func TestSetLevelOverwritesFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	stock, min, reorder := 42, 5, 8
	svc := NewService(db)
	level, err := svc.SetLevel(context.Background(), sess, product.ID, LevelUpdate{
		CurrentStock:  &stock,
		MinStockLevel: &min,
		ReorderPoint:  &reorder,
	})
	require.NoError(t, err)
	require.Equal(t, 42, level.CurrentStock)
	require.NotNil(t, level.MinStockLevel)
	require.Equal(t, 5, *level.MinStockLevel)
	require.NotNil(t, level.ReorderPoint)
	require.Equal(t, 8, *level.ReorderPoint)
	require.Nil(t, level.MaxStockLevel)
}

func TestSetLevelValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()
	product, _ := testutil.SeedProductWithStock(t, db, orgID, "Hammer", 10)

	svc := NewService(db)
	_, err := svc.SetLevel(context.Background(), sess, product.ID, LevelUpdate{})
	require.ErrorIs(t, err, apperr.ErrValidation)

	negative := -1
	_, err = svc.SetLevel(context.Background(), sess, product.ID, LevelUpdate{CurrentStock: &negative})
	require.ErrorIs(t, err, apperr.ErrValidation)

	stock := 1
	_, err = svc.SetLevel(context.Background(), sess, 9999, LevelUpdate{CurrentStock: &stock})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLowStockListsLevelsAtOrBelowMinimum(t *testing.T) {
	db := testutil.NewTestDB(t)
	sess := loadedSession(t, db, "Nairobi Hardware")
	orgID, _ := sess.CurrentOrgID()

	svc := NewService(db)
	seed := func(name string, stock int, min *int) model.Product {
		product, _ := testutil.SeedProductWithStock(t, db, orgID, name, stock)
		if min != nil {
			_, err := svc.SetLevel(context.Background(), sess, product.ID, LevelUpdate{MinStockLevel: min})
			require.NoError(t, err)
		}
		return product
	}

	min5, min20 := 5, 20
	low := seed("Nails", 2, &min5)
	atMin := seed("Screws", 5, &min5)
	seed("Bolts", 50, &min20)
	seed("Washers", 0, nil) // no minimum configured, never low

	levels, err := svc.LowStock(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, levels, 2)

	// Lowest stock first, with the product preloaded.
	require.Equal(t, low.ID, levels[0].ProductID)
	require.Equal(t, "Nails", levels[0].Product.Name)
	require.Equal(t, atMin.ID, levels[1].ProductID)
}
