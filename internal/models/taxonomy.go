package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemCategory classifies wardrobe items. Required categories gate creation generation.
type ItemCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"size:60;not null" json:"display_name"`
	IsRequired  bool      `gorm:"not null;default:false" json:"is_required"`
}

func (ItemCategory) TableName() string { return TableItemCategories }

func (c *ItemCategory) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

type Style struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"size:60;not null" json:"display_name"`
}

func (Style) TableName() string { return TableStyles }

func (s *Style) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}
