package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CreationPending  = "pending"
	CreationAccepted = "accepted"
	CreationRejected = "rejected"
)

// Creation is an outfit assembled from a user's wardrobe items.
type Creation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creations_user_name" json:"user_id"`
	StyleID   uuid.UUID `gorm:"type:uuid;not null;index" json:"style_id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex:idx_creations_user_name" json:"name"`
	ImagePath string    `gorm:"size:512;not null" json:"image_path"`
	Status    string    `gorm:"size:10;not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Style *Style   `gorm:"foreignKey:StyleID" json:"-"`
}

func (Creation) TableName() string { return TableCreations }

func (c *Creation) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	if c.Status == "" {
		c.Status = CreationPending
	}
	return nil
}

type CreationItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creation_items_pair" json:"creation_id"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_creation_items_pair;index" json:"item_id"`

	Creation *Creation     `gorm:"foreignKey:CreationID;constraint:OnDelete:CASCADE" json:"-"`
	Item     *WardrobeItem `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CreationItem) TableName() string { return TableCreationItems }

func (ci *CreationItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&ci.ID)
	return nil
}
