package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a customer record owned by one organization
type Customer struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrgID     uint           `json:"org_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(255);not null"`
	Phone     *string        `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Email     *string        `json:"email,omitempty" gorm:"type:varchar(100)"`
	Address   *string        `json:"address,omitempty" gorm:"type:text"`
	Notes     *string        `json:"notes,omitempty" gorm:"type:text"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
