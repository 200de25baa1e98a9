package model

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents an isolated business account (tenant)
// All business data is partitioned by it
type Organization struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Country   string         `json:"country" gorm:"type:varchar(2);default:'KE'"`
	Currency  string         `json:"currency" gorm:"type:varchar(3);default:'KES'"`
	Phone     string         `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Email     string         `json:"email,omitempty" gorm:"type:varchar(100)"`
	Address   string         `json:"address,omitempty" gorm:"type:text"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Memberships []Membership `json:"memberships,omitempty" gorm:"foreignKey:OrgID"`
}
