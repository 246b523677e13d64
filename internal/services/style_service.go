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

var styleColumns = []string{"id", "name", "display_name"}

type StyleService struct {
	client platform.Client
}

func NewStyleService(client platform.Client) *StyleService {
	return &StyleService{client: client}
}

func styleExists(name string) error {
	return apperr.Conflict(fmt.Sprintf("Style with name '%s' already exists", name))
}

func styleNotFound(id uuid.UUID) error {
	return apperr.NotFound(fmt.Sprintf("Style with id %s not found", id))
}

func (s *StyleService) ListAll(ctx context.Context) ([]models.Style, error) {
	var rows []models.Style
	_, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableStyles,
		Columns: styleColumns,
		Order:   []platform.Order{{Column: "display_name"}, {Column: "name"}},
	}, &rows)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch styles", err)
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("No styles found")
	}
	return rows, nil
}

func (s *StyleService) Create(ctx context.Context, req dto.CreateStyleRequest) (*models.Style, error) {
	name, displayName, err := requiredNames(req.Name, req.DisplayName)
	if err != nil {
		return nil, err
	}

	taken, err := nameTaken(ctx, s.client, models.TableStyles, name, uuid.Nil)
	if err != nil {
		return nil, apperr.Internal("Failed to verify style name uniqueness", err)
	}
	if taken {
		return nil, styleExists(name)
	}

	row := &models.Style{Name: name, DisplayName: displayName}
	err = s.client.Insert(ctx, models.TableStyles, row)
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, styleExists(name)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to create style", err)
	}
	return row, nil
}

func (s *StyleService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateStyleRequest) (*models.Style, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newName, err := renamedTo(req.Name, current.Name)
	if err != nil {
		return nil, err
	}
	displayName, err := changedDisplayName(req.DisplayName, current.DisplayName)
	if err != nil {
		return nil, err
	}

	values := map[string]any{}
	if newName != "" {
		taken, err := nameTaken(ctx, s.client, models.TableStyles, newName, id)
		if err != nil {
			return nil, apperr.Internal("Failed to verify style name uniqueness", err)
		}
		if taken {
			return nil, styleExists(newName)
		}
		values["name"] = newName
	}
	if displayName != "" {
		values["display_name"] = displayName
	}
	if len(values) == 0 {
		return current, nil
	}

	_, err = s.client.Update(ctx, models.TableStyles, []platform.Filter{platform.Eq("id", id)}, values)
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, apperr.Conflict("Style name already exists")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update style", err)
	}
	return s.Get(ctx, id)
}

// Get is shared with the creation workflow, which needs the same 404.
func (s *StyleService) Get(ctx context.Context, id uuid.UUID) (*models.Style, error) {
	row, err := platform.FindOne[models.Style](ctx, s.client, platform.Query{
		Table:   models.TableStyles,
		Columns: styleColumns,
		Filters: []platform.Filter{platform.Eq("id", id)},
	})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch style", err)
	}
	if row == nil {
		return nil, styleNotFound(id)
	}
	return row, nil
}
