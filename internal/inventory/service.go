// Package inventory applies stock mutations while keeping current stock
// non-negative, including under concurrent adjusters.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaula1/bizmate/internal/apperr"
	"github.com/kaula1/bizmate/internal/model"
	"github.com/kaula1/bizmate/internal/session"
	"gorm.io/gorm"
)

// casRetries bounds the number of re-reads when a concurrent adjustment
// wins the conditional write.
const casRetries = 3

// Service mutates inventory levels scoped to the caller's organization.
type Service struct {
	db *gorm.DB
}

// NewService creates an inventory service on the given database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LevelUpdate carries the fields SetLevel may overwrite. Nil fields are
// left untouched.
type LevelUpdate struct {
	CurrentStock  *int `json:"current_stock,omitempty"`
	MinStockLevel *int `json:"min_stock_level,omitempty"`
	MaxStockLevel *int `json:"max_stock_level,omitempty"`
	ReorderPoint  *int `json:"reorder_point,omitempty"`
}

// AdjustStock applies delta to the product's stock. The write is conditional
// on the stock value read in the same attempt, so two concurrent adjusters
// cannot lose each other's update; the loser re-reads and retries. A delta
// that would drive stock negative is rejected without writing. Positive
// deltas stamp the last restock date.
func (s *Service) AdjustStock(ctx context.Context, sess *session.Context, productID uint, delta int, reason string) (*model.InventoryLevel, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: adjustment cannot be zero", apperr.ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", apperr.ErrValidation)
	}

	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		var level model.InventoryLevel
		err := s.db.WithContext(ctx).
			First(&level, "product_id = ? AND org_id = ?", productID, orgID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no inventory level for product %d", apperr.ErrNotFound, productID)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read inventory level: %v", apperr.ErrDataAccess, err)
		}

		newStock := level.CurrentStock + delta
		if newStock < 0 {
			return nil, fmt.Errorf("%w: stock %d, adjustment %d", apperr.ErrInsufficientStock, level.CurrentStock, delta)
		}

		updates := map[string]interface{}{"current_stock": newStock}
		var restockedAt *time.Time
		if delta > 0 {
			now := time.Now()
			restockedAt = &now
			updates["last_restock_date"] = now
		}

		result := s.db.WithContext(ctx).
			Model(&model.InventoryLevel{}).
			Where("product_id = ? AND org_id = ? AND current_stock = ?", productID, orgID, level.CurrentStock).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("%w: write inventory level: %v", apperr.ErrDataAccess, result.Error)
		}
		if result.RowsAffected == 1 {
			level.CurrentStock = newStock
			if restockedAt != nil {
				level.LastRestockDate = restockedAt
			}
			return &level, nil
		}
		// Another writer changed the stock between read and write; retry.
	}

	return nil, fmt.Errorf("%w: stock adjustment conflicted %d times", apperr.ErrDataAccess, casRetries)
}

// SetLevel overwrites the provided inventory fields without the adjustment
// guard. Administrative correction, not day-to-day adjustment.
func (s *Service) SetLevel(ctx context.Context, sess *session.Context, productID uint, update LevelUpdate) (*model.InventoryLevel, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	for name, v := range map[string]*int{
		"current_stock":   update.CurrentStock,
		"min_stock_level": update.MinStockLevel,
		"max_stock_level": update.MaxStockLevel,
		"reorder_point":   update.ReorderPoint,
	} {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, fmt.Errorf("%w: %s must be non-negative", apperr.ErrValidation, name)
		}
		updates[name] = *v
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperr.ErrValidation)
	}

	result := s.db.WithContext(ctx).
		Model(&model.InventoryLevel{}).
		Where("product_id = ? AND org_id = ?", productID, orgID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("%w: write inventory level: %v", apperr.ErrDataAccess, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: no inventory level for product %d", apperr.ErrNotFound, productID)
	}

	var level model.InventoryLevel
	if err := s.db.WithContext(ctx).First(&level, "product_id = ? AND org_id = ?", productID, orgID).Error; err != nil {
		return nil, fmt.Errorf("%w: read inventory level: %v", apperr.ErrDataAccess, err)
	}
	return &level, nil
}

// LowStock lists inventory levels at or below their minimum stock level,
// lowest stock first. Feeds the dashboard low-stock cards.
func (s *Service) LowStock(ctx context.Context, sess *session.Context) ([]model.InventoryLevel, error) {
	orgID, err := sess.CurrentOrgID()
	if err != nil {
		return nil, err
	}

	var levels []model.InventoryLevel
	err = s.db.WithContext(ctx).
		Preload("Product").
		Where("org_id = ? AND min_stock_level IS NOT NULL AND current_stock <= min_stock_level", orgID).
		Order("current_stock").
		Find(&levels).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list low stock: %v", apperr.ErrDataAccess, err)
	}
	return levels, nil
}
