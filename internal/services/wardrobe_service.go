package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const (
	maxItemNameLength  = 120
	maxItemColorLength = 60
	maxItemBrandLength = 120
)

var (
	wardrobeItemColumns = []string{"id", "user_id", "category_id", "name", "color", "brand", "created_at", "updated_at"}
	wardrobeSortColumns = map[string]bool{"created_at": true, "updated_at": true, "name": true, "color": true, "brand": true}
)

// WardrobeService manages a user's clothing items. Items of other users
// are reported as missing.
type WardrobeService struct {
	client platform.Client
}

func NewWardrobeService(client platform.Client) *WardrobeService {
	return &WardrobeService{client: client}
}

func itemNotFound(id uuid.UUID) error {
	return apperr.NotFound(fmt.Sprintf("Wardrobe item with id %s not found", id))
}

func (s *WardrobeService) List(ctx context.Context, userID uuid.UUID, q dto.ListWardrobeItemsQuery) ([]models.WardrobeItem, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	order, err := sortOrder(q.SortBy, q.Order, wardrobeSortColumns)
	if err != nil {
		return nil, err
	}

	filters := []platform.Filter{platform.Eq("user_id", userID)}
	if q.CategoryID != "" {
		categoryID, err := parseID(q.CategoryID, "category_id")
		if err != nil {
			return nil, err
		}
		filters = append(filters, platform.Eq("category_id", categoryID))
	}
	if color := strings.TrimSpace(q.Color); color != "" {
		filters = append(filters, platform.ILike("color", color))
	}
	if brand := strings.TrimSpace(q.Brand); brand != "" {
		filters = append(filters, platform.ILike("brand", brand))
	}

	items := []models.WardrobeItem{}
	_, err = s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Columns: wardrobeItemColumns,
		Filters: filters,
		// id breaks ties so equal sort keys page deterministically.
		Order: []platform.Order{order, {Column: "id"}},
		Range: platform.PageRange(page, limit),
	}, &items)
	if err != nil {
		return nil, apperr.Internal("Failed to list wardrobe items", err)
	}
	return items, nil
}

func (s *WardrobeService) Get(ctx context.Context, userID, itemID uuid.UUID) (*models.WardrobeItem, error) {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, itemNotFound(itemID)
	}
	return item, nil
}

func (s *WardrobeService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateWardrobeItemRequest) (*models.WardrobeItem, error) {
	rawCategory := strings.TrimSpace(req.CategoryID)
	name := strings.TrimSpace(req.Name)
	color := strings.TrimSpace(req.Color)
	if rawCategory == "" || name == "" || color == "" {
		return nil, apperr.Validation("category_id, name and color are required")
	}
	categoryID, err := parseID(rawCategory, "category_id")
	if err != nil {
		return nil, err
	}
	if err := checkItemLengths(&name, &color, req.Brand); err != nil {
		return nil, err
	}

	item := &models.WardrobeItem{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       name,
		Color:      color,
		Brand:      normalizeBrand(req.Brand),
	}
	if err := s.client.Insert(ctx, models.TableWardrobeItems, item); err != nil {
		return nil, apperr.Internal("Failed to create wardrobe item", err)
	}
	return item, nil
}

func (s *WardrobeService) Update(ctx context.Context, userID, itemID uuid.UUID, req dto.UpdateWardrobeItemRequest) (*models.WardrobeItem, error) {
	current, err := s.Get(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return current, nil
	}

	values := map[string]any{}
	if req.CategoryID != nil {
		categoryID, err := parseID(*req.CategoryID, "category_id")
		if err != nil {
			return nil, err
		}
		values["category_id"] = categoryID
	}
	var name, color *string
	if req.Name != nil {
		n := strings.TrimSpace(*req.Name)
		if n == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		name = &n
		values["name"] = n
	}
	if req.Color != nil {
		c := strings.TrimSpace(*req.Color)
		if c == "" {
			return nil, apperr.Validation("color cannot be empty")
		}
		color = &c
		values["color"] = c
	}
	if err := checkItemLengths(name, color, req.Brand); err != nil {
		return nil, err
	}
	if req.Brand != nil {
		values["brand"] = normalizeBrand(req.Brand)
	}

	n, err := s.client.Update(ctx, models.TableWardrobeItems,
		[]platform.Filter{platform.Eq("id", itemID), platform.Eq("user_id", userID)},
		values)
	if err != nil {
		return nil, apperr.Internal("Failed to update wardrobe item", err)
	}
	if n == 0 {
		return nil, itemNotFound(itemID)
	}
	return s.Get(ctx, userID, itemID)
}

// Remove hard-deletes the item. A second call reports not found.
func (s *WardrobeService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	n, err := s.client.Delete(ctx, models.TableWardrobeItems,
		[]platform.Filter{platform.Eq("id", itemID), platform.Eq("user_id", userID)})
	if err != nil {
		return apperr.Internal("Failed to delete wardrobe item", err)
	}
	if n == 0 {
		return itemNotFound(itemID)
	}
	return nil
}

func (s *WardrobeService) owned(ctx context.Context, userID, itemID uuid.UUID) (*models.WardrobeItem, error) {
	item, err := platform.FindOne[models.WardrobeItem](ctx, s.client, platform.Query{
		Table:   models.TableWardrobeItems,
		Columns: wardrobeItemColumns,
		Filters: []platform.Filter{platform.Eq("id", itemID), platform.Eq("user_id", userID)},
	})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch wardrobe item", err)
	}
	return item, nil
}

func checkItemLengths(name, color, brand *string) error {
	if name != nil && utf8.RuneCountInString(*name) > maxItemNameLength {
		return apperr.Validation("name must be at most 120 characters long")
	}
	if color != nil && utf8.RuneCountInString(*color) > maxItemColorLength {
		return apperr.Validation("color must be at most 60 characters long")
	}
	if brand != nil && utf8.RuneCountInString(strings.TrimSpace(*brand)) > maxItemBrandLength {
		return apperr.Validation("brand must be at most 120 characters long")
	}
	return nil
}

func normalizeBrand(brand *string) *string {
	if brand == nil {
		return nil
	}
	b := strings.TrimSpace(*brand)
	if b == "" {
		return nil
	}
	return &b
}
