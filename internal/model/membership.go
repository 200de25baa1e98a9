package model

import (
	"time"

	"gorm.io/gorm"
)

// Membership roles within an organization
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Membership represents the association between users and organizations
// This allows users to belong to multiple organizations (tenants)
type Membership struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	OrgID       uint           `json:"org_id" gorm:"index;not null"`
	Role        string         `json:"role" gorm:"type:varchar(50);not null;default:'staff'"` // Role within organization: 'owner', 'admin', 'staff'
	DisplayName string         `json:"display_name,omitempty" gorm:"type:varchar(100)"`
	Phone       string         `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Active      bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Organization Organization `json:"organization,omitempty" gorm:"foreignKey:OrgID"`
}

// OrgSelection remembers the last organization a user chose.
// One row per user: the durable "selected organization id" entry
// read at sign-in and rewritten on every explicit switch.
type OrgSelection struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey"`
	OrgID     uint      `json:"org_id" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}
