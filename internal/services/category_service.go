package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

var categoryColumns = []string{"id", "name", "display_name", "is_required"}

type CategoryService struct {
	client platform.Client
}

func NewCategoryService(client platform.Client) *CategoryService {
	return &CategoryService{client: client}
}

func categoryExists(name string) error {
	return apperr.Conflict(fmt.Sprintf("Category with name '%s' already exists", name))
}

// ListAll returns every category by display name. An empty registry is
// reported as not found.
func (s *CategoryService) ListAll(ctx context.Context) ([]models.ItemCategory, error) {
	var rows []models.ItemCategory
	_, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableItemCategories,
		Columns: categoryColumns,
		Order:   []platform.Order{{Column: "display_name"}, {Column: "name"}},
	}, &rows)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch item categories", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("No item categories found")
	}
	return rows, nil
}

func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.ItemCategory, error) {
	name, displayName, err := requiredNames(req.Name, req.DisplayName)
	if err != nil {
		return nil, err
	}

	taken, err := nameTaken(ctx, s.client, models.TableItemCategories, name, uuid.Nil)
	if err != nil {
		return nil, apperr.Internal("Failed to verify category name uniqueness", err)
	}
	if taken {
		return nil, categoryExists(name)
	}

	row := &models.ItemCategory{Name: name, DisplayName: displayName}
	if req.IsRequired != nil {
		row.IsRequired = *req.IsRequired
	}
	err = s.client.Insert(ctx, models.TableItemCategories, row)
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, categoryExists(name)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to create item category", err)
	}
	return row, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*models.ItemCategory, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	newName, err := renamedTo(req.Name, current.Name)
	if err != nil {
		return nil, err
	}
	displayName, err := changedDisplayName(req.DisplayName, current.DisplayName)
	if err != nil {
		return nil, err
	}
	if newName != "" {
		taken, err := nameTaken(ctx, s.client, models.TableItemCategories, newName, id)
		if err != nil {
			return nil, apperr.Internal("Failed to verify category name uniqueness", err)
		}
		if taken {
			return nil, categoryExists(newName)
		}
		values["name"] = newName
	}
	if displayName != "" {
		values["display_name"] = displayName
	}
	if req.IsRequired != nil && *req.IsRequired != current.IsRequired {
		values["is_required"] = *req.IsRequired
	}
	if len(values) == 0 {
		return current, nil
	}

	_, err = s.client.Update(ctx, models.TableItemCategories, []platform.Filter{platform.Eq("id", id)}, values)
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, apperr.Conflict("Category name already exists")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update item category", err)
	}
	return s.get(ctx, id)
}

func (s *CategoryService) get(ctx context.Context, id uuid.UUID) (*models.ItemCategory, error) {
	row, err := platform.FindOne[models.ItemCategory](ctx, s.client, platform.Query{
		Table:   models.TableItemCategories,
		Columns: categoryColumns,
		Filters: []platform.Filter{platform.Eq("id", id)},
	})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch item category", err)
	}
	if row == nil {
		return nil, apperr.NotFound(fmt.Sprintf("Item category with id %s not found", id))
	}
	return row, nil
}
