package model

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product master data
type Product struct {
	ID          uint           `json:"id" gorm:"primarykey"`
	OrgID       uint           `json:"org_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	SKU         string         `json:"sku,omitempty" gorm:"type:varchar(100);index"`
	Barcode     string         `json:"barcode,omitempty" gorm:"type:varchar(100)"`
	Category    string         `json:"category,omitempty" gorm:"type:varchar(100)"`
	UnitPrice   float64        `json:"unit_price" gorm:"not null"`
	CostPrice   *float64       `json:"cost_price,omitempty"`
	TaxRate     *float64       `json:"tax_rate,omitempty"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	InventoryLevel *InventoryLevel `json:"inventory_level,omitempty" gorm:"foreignKey:ProductID"`
}

// InventoryLevel tracks the stock on hand for one product.
// Created automatically with zero stock when the product is created.
type InventoryLevel struct {
	ID              uint           `json:"id" gorm:"primarykey"`
	OrgID           uint           `json:"org_id" gorm:"index;not null"`
	ProductID       uint           `json:"product_id" gorm:"uniqueIndex;not null"`
	CurrentStock    int            `json:"current_stock" gorm:"not null;default:0"`
	MinStockLevel   *int           `json:"min_stock_level,omitempty"`
	MaxStockLevel   *int           `json:"max_stock_level,omitempty"`
	ReorderPoint    *int           `json:"reorder_point,omitempty"`
	LastRestockDate *time.Time     `json:"last_restock_date,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
