package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
)

// TaxonomyHandler serves item categories and styles. Listing is public,
// writes sit behind the admin gate.
type TaxonomyHandler struct {
	categories *services.CategoryService
	styles     *services.StyleService
}

func NewTaxonomyHandler(categories *services.CategoryService, styles *services.StyleService) *TaxonomyHandler {
	return &TaxonomyHandler{categories: categories, styles: styles}
}

func (h *TaxonomyHandler) ListCategories(c *fiber.Ctx) error {
	rows, err := h.categories.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *TaxonomyHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	row, err := h.categories.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *TaxonomyHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	row, err := h.categories.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(row)
}

func (h *TaxonomyHandler) ListStyles(c *fiber.Ctx) error {
	rows, err := h.styles.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *TaxonomyHandler) CreateStyle(c *fiber.Ctx) error {
	var req dto.CreateStyleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	row, err := h.styles.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *TaxonomyHandler) UpdateStyle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStyleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	row, err := h.styles.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(row)
}
