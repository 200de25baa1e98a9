// Package testutil provides database helpers for tests. Tests run against
// an in-memory SQLite database migrated with the full model set.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory database with all models migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique shared-cache name per test so parallel tests stay isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.Membership{},
		&model.OrgSelection{},
		&model.Product{},
		&model.InventoryLevel{},
		&model.Customer{},
	))

	return db
}

// SeedUser inserts a user and returns it.
func SeedUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	user := model.User{Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// SeedOrg inserts an organization and returns it.
func SeedOrg(t *testing.T, db *gorm.DB, name string) model.Organization {
	t.Helper()
	org := model.Organization{Name: name, Country: "KE", Currency: "KES", Active: true}
	require.NoError(t, db.Create(&org).Error)
	return org
}

// SeedMembership links a user to an organization with the given role.
func SeedMembership(t *testing.T, db *gorm.DB, userID, orgID uint, role string, active bool) model.Membership {
	t.Helper()
	m := model.Membership{UserID: userID, OrgID: orgID, Role: role, Active: active}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// SeedProductWithStock inserts a product and an inventory level holding the
// given stock.
func SeedProductWithStock(t *testing.T, db *gorm.DB, orgID uint, name string, stock int) (model.Product, model.InventoryLevel) {
	t.Helper()
	product := model.Product{OrgID: orgID, Name: name, UnitPrice: 100, IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	level := model.InventoryLevel{OrgID: orgID, ProductID: product.ID, CurrentStock: stock}
	require.NoError(t, db.Create(&level).Error)
	return product, level
}
