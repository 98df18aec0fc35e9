package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User holds the denormalized Points total. Points is a derived field: it must
// always equal the sum of the user's non-NULL pick points and is only ever written
// by a full recompute, never incremented in place.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email,omitempty" gorm:"uniqueIndex;not null"`
	Role     string `json:"role" gorm:"type:varchar(16);default:'USER'"`
	Points   int    `json:"points" gorm:"default:0"`

	Timestamps

	Picks  []Pick      `json:"picks,omitempty" gorm:"foreignKey:UserID"`
	Badges []UserBadge `json:"badges,omitempty" gorm:"foreignKey:UserID"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
