package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

type ListCreationsQuery struct {
	Page    *int   `query:"page"`
	Limit   *int   `query:"limit"`
	SortBy  string `query:"sort_by"`
	Order   string `query:"order"`
	Status  string `query:"status"`
	StyleID string `query:"style_id"`
	Search  string `query:"search"`
}

type CreateCreationRequest struct {
	StyleID   string `json:"style_id"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path"`
}

type GenerateCreationsRequest struct {
	StyleID string `json:"style_id"`
}

type ListCreationItemsQuery struct {
	Page         *int   `query:"page"`
	Limit        *int   `query:"limit"`
	Expand       string `query:"expand"`
	IncludeTotal string `query:"includeTotal"`
}

// WantsTotal accepts "true" or "1".
func (q ListCreationItemsQuery) WantsTotal() bool {
	return q.IncludeTotal == "true" || q.IncludeTotal == "1"
}

type AddCreationItemRequest struct {
	ItemID string `json:"item_id"`
}

type CreationItemResponse struct {
	ID         uuid.UUID            `json:"id"`
	CreationID uuid.UUID            `json:"creation_id"`
	ItemID     uuid.UUID            `json:"item_id"`
	Item       *models.WardrobeItem `json:"item,omitempty"`
}

// CreationItemsPage is one page of links; Total is set only when requested.
type CreationItemsPage struct {
	Items []CreationItemResponse
	Total *int64
	Page  int
	Limit int
}

// ContentRange renders "items <from>-<to>/<total>". It returns "" when the
// total was not requested.
func (p CreationItemsPage) ContentRange() string {
	if p.Total == nil {
		return ""
	}
	from := int64((p.Page - 1) * p.Limit)
	to := min(from+int64(p.Limit)-1, max(*p.Total-1, 0))
	return fmt.Sprintf("items %d-%d/%d", from, to, *p.Total)
}

type ImageUploadResponse struct {
	ImagePath string `json:"image_path"`
}

type ImageURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
