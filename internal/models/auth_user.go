package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthUser is an account held by the self-hosted auth provider.
type AuthUser struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash     string         `gorm:"not null" json:"-"`
	UserMetadata     datatypes.JSON `json:"user_metadata"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (AuthUser) TableName() string { return TableAuthUsers }

func (u *AuthUser) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
