package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WardrobeItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id"`
	Name       string    `gorm:"size:120;not null" json:"name"`
	Color      string    `gorm:"size:60;not null" json:"color"`
	Brand      *string   `gorm:"size:120" json:"brand"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Owner    *Profile      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category *ItemCategory `gorm:"foreignKey:CategoryID" json:"-"`
}

func (WardrobeItem) TableName() string { return TableWardrobeItems }

func (w *WardrobeItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&w.ID)
	return nil
}
