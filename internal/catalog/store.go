// Package catalog provides organization-scoped product access. Every query
// carries the caller's current organization id.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/internal/session"
	"gorm.io/gorm"
)

// Store reads and writes products for the active organization.
type Store struct {
	db *gorm.DB
}

// NewStore creates a product store on the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SKU         string   `json:"sku"`
	Barcode     string   `json:"barcode"`
	Category    string   `json:"category"`
	UnitPrice   float64  `json:"unit_price"`
	CostPrice   *float64 `json:"cost_price,omitempty"`
	TaxRate     *float64 `json:"tax_rate,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: product name is required", apperr.ErrValidation)
	}
	if in.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must be non-negative", apperr.ErrValidation)
	}
	if in.CostPrice != nil && *in.CostPrice < 0 {
		return fmt.Errorf("%w: cost price must be non-negative", apperr.ErrValidation)
	}
	if in.TaxRate != nil && (*in.TaxRate < 0 || *in.TaxRate > 100) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", apperr.ErrValidation)
	}
	return nil
}

// List returns the organization's active products with their inventory
// levels, ordered by name.
func (s *Store) List(ctx context.Context, sess *session.Context) ([]model.Product, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	var products []model.Product
	err = s.db.WithContext(ctx).
		Preload("InventoryLevel").
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("name").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", apperr.ErrDataAccess, err)
	}
	return products, nil
}

// Get returns one product within the organization scope.
func (s *Store) Get(ctx context.Context, sess *session.Context, id uint) (*model.Product, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	var product model.Product
	err = s.db.WithContext(ctx).
		Preload("InventoryLevel").
		First(&product, "id = ? AND org_id = ?", id, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", apperr.ErrDataAccess, err)
	}
	return &product, nil
}

// Create inserts a product and its zero-stock inventory level in one
// transaction.
func (s *Store) Create(ctx context.Context, sess *session.Context, in ProductInput) (*model.Product, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	product := model.Product{
		OrgID:       orgID,
		Name:        in.Name,
		Description: in.Description,
		SKU:         in.SKU,
		Barcode:     in.Barcode,
		Category:    in.Category,
		UnitPrice:   in.UnitPrice,
		CostPrice:   in.CostPrice,
		TaxRate:     in.TaxRate,
		IsActive:    active,
	}

	minStock := 0
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		level := model.InventoryLevel{
			OrgID:         orgID,
			ProductID:     product.ID,
			CurrentStock:  0,
			MinStockLevel: &minStock,
		}
		return tx.Create(&level).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create product: %v", apperr.ErrDataAccess, err)
	}
	return &product, nil
}

// Update overwrites the writable fields of a product within the
// organization scope.
func (s *Store) Update(ctx context.Context, sess *session.Context, id uint, in ProductInput) (*model.Product, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var product model.Product
	err = s.db.WithContext(ctx).First(&product, "id = ? AND org_id = ?", id, orgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get product: %v", apperr.ErrDataAccess, err)
	}

	product.Name = in.Name
	product.Description = in.Description
	product.SKU = in.SKU
	product.Barcode = in.Barcode
	product.Category = in.Category
	product.UnitPrice = in.UnitPrice
	product.CostPrice = in.CostPrice
	product.TaxRate = in.TaxRate
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, fmt.Errorf("%w: update product: %v", apperr.ErrDataAccess, err)
	}
	return &product, nil
}

// Delete soft-deletes a product by marking it inactive. The row stays for
// history; list and get filters exclude it.
func (s *Store) Delete(ctx context.Context, sess *session.Context, id uint) error {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("%w: delete product: %v", apperr.ErrDataAccess, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", apperr.ErrNotFound, id)
	}
	return nil
}
