package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const (
	maxCreationNameLength = 120
	canAddToCreationFn    = "can_add_to_creation"
)

var (
	creationColumns     = []string{"id", "user_id", "style_id", "name", "image_path", "status", "created_at", "updated_at"}
	creationSortColumns = map[string]bool{"created_at": true, "updated_at": true, "name": true, "status": true}
	creationStatuses    = []string{models.CreationPending, models.CreationAccepted, models.CreationRejected}
	imageExtensions     = []string{".png", ".jpg", ".jpeg", ".webp"}

	ErrCreationNameTaken = apperr.Conflict("A creation with this name already exists for the user")
	ErrCreationNotOwned  = apperr.NotFound("Creation not found")
	ErrItemNotOwned      = apperr.NotFound("Wardrobe item not found")
	ErrItemNotAddable    = apperr.Forbidden("Item cannot be added to this creation")
	ErrItemAlreadyLinked = apperr.Conflict("This item is already added to the creation")
)

var tracer trace.Tracer = otel.Tracer("github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services")

// CreationService runs the outfit workflow: manual and generated creations,
// the pending/accepted/rejected state machine, and item links.
type CreationService struct {
	client    platform.Client
	styles    *StyleService
	generator ProposalGenerator
}

func NewCreationService(client platform.Client, styles *StyleService, generator ProposalGenerator) *CreationService {
	if generator == nil {
		generator = NewRandomGenerator()
	}
	return &CreationService{client: client, styles: styles, generator: generator}
}

func creationNotFound(id uuid.UUID) error {
	return apperr.NotFound(fmt.Sprintf("Creation with id %s not found", id))
}

func (s *CreationService) List(ctx context.Context, userID uuid.UUID, q dto.ListCreationsQuery) ([]models.Creation, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	order, err := sortOrder(q.SortBy, q.Order, creationSortColumns)
	if err != nil {
		return nil, err
	}

	filters := []platform.Filter{platform.Eq("user_id", userID)}
	if q.Status != "" {
		status := strings.ToLower(strings.TrimSpace(q.Status))
		if !slices.Contains(creationStatuses, status) {
			return nil, apperr.Validation("status must be one of: " + strings.Join(creationStatuses, ", "))
		}
		filters = append(filters, platform.Eq("status", status))
	}
	if q.StyleID != "" {
		styleID, err := parseID(q.StyleID, "style_id")
		if err != nil {
			return nil, err
		}
		filters = append(filters, platform.Eq("style_id", styleID))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		filters = append(filters, platform.ILike("name", search))
	}

	rows := []models.Creation{}
	_, err = s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableCreations,
		Columns: creationColumns,
		Filters: filters,
		Order:   []platform.Order{order, {Column: "id"}},
		Range:   platform.PageRange(page, limit),
	}, &rows)
	if err != nil {
		return nil, apperr.Internal("Failed to list creations", err)
	}
	return rows, nil
}

func (s *CreationService) Get(ctx context.Context, userID, creationID uuid.UUID) (*models.Creation, error) {
	c, err := s.find(ctx, platform.Eq("id", creationID), platform.Eq("user_id", userID))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, creationNotFound(creationID)
	}
	return c, nil
}

func (s *CreationService) CreateManual(ctx context.Context, userID uuid.UUID, req dto.CreateCreationRequest) (*models.Creation, error) {
	rawStyle := strings.TrimSpace(req.StyleID)
	name := strings.TrimSpace(req.Name)
	imagePath := strings.TrimSpace(req.ImagePath)
	if rawStyle == "" || name == "" || imagePath == "" {
		return nil, apperr.Validation("style_id, name and image_path are required")
	}
	styleID, err := parseID(rawStyle, "style_id")
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(name) > maxCreationNameLength {
		return nil, apperr.Validation("name must be 1-120 characters long")
	}
	if !slices.Contains(imageExtensions, strings.ToLower(path.Ext(imagePath))) {
		return nil, apperr.Validation("image_path must end with .png, .jpg, .jpeg or .webp")
	}

	taken, err := platform.Exists(ctx, s.client, models.TableCreations,
		platform.Eq("user_id", userID), platform.Eq("name", name))
	if err != nil {
		return nil, apperr.Internal("Failed to verify creation name", err)
	}
	if taken {
		return nil, ErrCreationNameTaken
	}
	if _, err := s.styles.Get(ctx, styleID); err != nil {
		return nil, err
	}

	row := &models.Creation{
		UserID:    userID,
		StyleID:   styleID,
		Name:      name,
		ImagePath: imagePath,
		Status:    models.CreationPending,
	}
	err = s.client.Insert(ctx, models.TableCreations, row)
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, ErrCreationNameTaken
	}
	if err != nil {
		return nil, apperr.Internal("Failed to create creation", err)
	}
	return row, nil
}

// Generate proposes outfits for a style from the user's wardrobe and stores
// each one as a pending creation with its item links. Nothing is written
// when a required category is missing from the wardrobe.
func (s *CreationService) Generate(ctx context.Context, userID uuid.UUID, req dto.GenerateCreationsRequest) (out []models.Creation, err error) {
	ctx, span := tracer.Start(ctx, "CreationService.Generate",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if strings.TrimSpace(req.StyleID) == "" {
		return nil, apperr.Validation("style_id is required")
	}
	styleID, err := parseID(req.StyleID, "style_id")
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("style.id", styleID.String()))

	out, err = s.generate(ctx, userID, styleID)
	if err != nil && apperr.KindOf(err) == apperr.KindInternal {
		return nil, apperr.Internal("Failed to generate creations", err)
	}
	return out, err
}

func (s *CreationService) generate(ctx context.Context, userID, styleID uuid.UUID) ([]models.Creation, error) {
	style, err := s.styles.Get(ctx, styleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRequiredCategories(ctx, userID); err != nil {
		return nil, err
	}

	items := []models.WardrobeItem{}
	if _, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Columns: wardrobeItemColumns,
		Filters: []platform.Filter{platform.Eq("user_id", userID)},
		Order:   []platform.Order{{Column: "created_at"}, {Column: "id"}},
	}, &items); err != nil {
		return nil, err
	}

	proposals, err := s.generator.ProposeCreations(ctx, userID, *style, items)
	if err != nil {
		return nil, err
	}

	created := make([]models.Creation, 0, len(proposals))
	for _, p := range proposals {
		row := models.Creation{
			UserID:    userID,
			StyleID:   styleID,
			Name:      p.Name,
			ImagePath: p.ImagePath,
			Status:    models.CreationPending,
		}
		if err := s.client.Insert(ctx, models.TableCreations, &row); err != nil {
			return nil, err
		}
		for _, itemID := range p.ItemIDs {
			link := models.CreationItem{CreationID: row.ID, ItemID: itemID}
			if err := s.client.Insert(ctx, models.TableCreationItems, &link); err != nil {
				return nil, err
			}
		}
		created = append(created, row)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("creations.count", len(created)))
	return created, nil
}

func (s *CreationService) checkRequiredCategories(ctx context.Context, userID uuid.UUID) error {
	var required []models.ItemCategory
	if _, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableItemCategories,
		Columns: categoryColumns,
		Filters: []platform.Filter{platform.Eq("is_required", true)},
		Order:   []platform.Order{{Column: "display_name"}, {Column: "name"}},
	}, &required); err != nil {
		return err
	}
	if len(required) == 0 {
		return nil
	}

	var owned []models.WardrobeItem
	if _, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Columns: []string{"category_id"},
		Filters: []platform.Filter{platform.Eq("user_id", userID)},
	}, &owned); err != nil {
		return err
	}
	have := make(map[uuid.UUID]bool, len(owned))
	for _, it := range owned {
		have[it.CategoryID] = true
	}

	var missing []string
	for _, c := range required {
		if !have[c.ID] {
			missing = append(missing, c.DisplayName)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing required wardrobe items: " + strings.Join(missing, ", "))
	}
	return nil
}

func (s *CreationService) Accept(ctx context.Context, userID, creationID uuid.UUID) error {
	return s.transition(ctx, userID, creationID, models.CreationAccepted, "accept")
}

func (s *CreationService) Reject(ctx context.Context, userID, creationID uuid.UUID) error {
	return s.transition(ctx, userID, creationID, models.CreationRejected, "reject")
}

// transition moves a pending creation to a terminal status. A foreign
// owner gets 400 rather than 404, matching the established API.
func (s *CreationService) transition(ctx context.Context, userID, creationID uuid.UUID, target, verb string) (err error) {
	ctx, span := tracer.Start(ctx, "CreationService.transition", trace.WithAttributes(
		attribute.String("creation.id", creationID.String()),
		attribute.String("creation.target_status", target),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	c, err := s.find(ctx, platform.Eq("id", creationID))
	if err != nil {
		return err
	}
	if c == nil {
		return creationNotFound(creationID)
	}
	if c.UserID != userID {
		return apperr.Validation(fmt.Sprintf("You do not have permission to %s this creation", verb))
	}
	if c.Status != models.CreationPending {
		return apperr.Conflict("Creation is already " + c.Status)
	}

	n, err := s.client.Update(ctx, models.TableCreations, []platform.Filter{
		platform.Eq("id", creationID),
		platform.Eq("user_id", userID),
		platform.Eq("status", models.CreationPending),
	}, map[string]any{"status": target})
	if err != nil {
		return apperr.Internal(fmt.Sprintf("Failed to %s creation", verb), err)
	}
	if n == 0 {
		// Lost a race with another transition.
		if latest, ferr := s.find(ctx, platform.Eq("id", creationID)); ferr == nil && latest != nil {
			return apperr.Conflict("Creation is already " + latest.Status)
		}
		return creationNotFound(creationID)
	}
	return nil
}

// ListItems pages through a creation's item links ordered by id.
func (s *CreationService) ListItems(ctx context.Context, userID, creationID uuid.UUID, q dto.ListCreationItemsQuery) (*dto.CreationItemsPage, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	expand := strings.TrimSpace(q.Expand)
	if expand != "" && expand != "item" {
		return nil, apperr.Validation("expand must be one of: item")
	}
	if _, err := s.owned(ctx, userID, creationID); err != nil {
		return nil, err
	}

	var links []models.CreationItem
	total, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableCreationItems,
		Columns: []string{"id", "creation_id", "item_id"},
		Filters: []platform.Filter{platform.Eq("creation_id", creationID)},
		Order:   []platform.Order{{Column: "id"}},
		Range:   platform.PageRange(page, limit),
		Count:   q.WantsTotal(),
	}, &links)
	if err != nil {
		return nil, apperr.Internal("Failed to list creation items", err)
	}

	result := &dto.CreationItemsPage{
		Items: make([]dto.CreationItemResponse, len(links)),
		Page:  page,
		Limit: limit,
	}
	if q.WantsTotal() {
		result.Total = &total
	}
	for i, l := range links {
		result.Items[i] = dto.CreationItemResponse{ID: l.ID, CreationID: l.CreationID, ItemID: l.ItemID}
	}
	if expand == "item" && len(links) > 0 {
		if err := s.expandItems(ctx, userID, result.Items); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// expandItems attaches the caller's own items; links to anything else keep
// no item.
func (s *CreationService) expandItems(ctx context.Context, userID uuid.UUID, links []dto.CreationItemResponse) error {
	ids := make([]uuid.UUID, len(links))
	for i, l := range links {
		ids[i] = l.ItemID
	}
	var items []models.WardrobeItem
	if _, err := s.client.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Columns: wardrobeItemColumns,
		Filters: []platform.Filter{platform.In("id", ids), platform.Eq("user_id", userID)},
	}, &items); err != nil {
		return apperr.Internal("Failed to load creation items", err)
	}
	byID := make(map[uuid.UUID]*models.WardrobeItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for i := range links {
		links[i].Item = byID[links[i].ItemID]
	}
	return nil
}

func (s *CreationService) AddItem(ctx context.Context, userID, creationID uuid.UUID, req dto.AddCreationItemRequest) (_ *models.CreationItem, err error) {
	ctx, span := tracer.Start(ctx, "CreationService.AddItem",
		trace.WithAttributes(attribute.String("creation.id", creationID.String())))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if strings.TrimSpace(req.ItemID) == "" {
		return nil, apperr.Validation("item_id is required")
	}
	itemID, err := parseID(req.ItemID, "item_id")
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, creationID); err != nil {
		return nil, err
	}

	ownsItem, err := platform.Exists(ctx, s.client, models.TableWardrobeItems,
		platform.Eq("id", itemID), platform.Eq("user_id", userID))
	if err != nil {
		return nil, apperr.Internal("Failed to fetch wardrobe item", err)
	}
	if !ownsItem {
		return nil, ErrItemNotOwned
	}

	var allowed bool
	err = s.client.CallFunction(ctx, canAddToCreationFn, map[string]any{
		"p_creation_id": creationID,
		"p_item_id":     itemID,
	}, &allowed)
	if err != nil {
		return nil, apperr.Internal("Failed to verify item eligibility", err)
	}
	if !allowed {
		return nil, ErrItemNotAddable
	}

	link := &models.CreationItem{CreationID: creationID, ItemID: itemID}
	err = s.client.Insert(ctx, models.TableCreationItems, link)
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, ErrItemAlreadyLinked
	}
	if err != nil {
		return nil, apperr.Internal("Failed to add item to creation", err)
	}
	return link, nil
}

func (s *CreationService) owned(ctx context.Context, userID, creationID uuid.UUID) (*models.Creation, error) {
	c, err := s.find(ctx, platform.Eq("id", creationID), platform.Eq("user_id", userID))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCreationNotOwned
	}
	return c, nil
}

func (s *CreationService) find(ctx context.Context, filters ...platform.Filter) (*models.Creation, error) {
	c, err := platform.FindOne[models.Creation](ctx, s.client, platform.Query{
		Table:   models.TableCreations,
		Columns: creationColumns,
		Filters: filters,
	})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch creation", err)
	}
	return c, nil
}
