package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
)

type WardrobeHandler struct {
	wardrobe *services.WardrobeService
}

func NewWardrobeHandler(wardrobe *services.WardrobeService) *WardrobeHandler {
	return &WardrobeHandler{wardrobe: wardrobe}
}

func (h *WardrobeHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var q dto.ListWardrobeItemsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	items, err := h.wardrobe.List(c.UserContext(), userID, q)
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *WardrobeHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	item, err := h.wardrobe.Get(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *WardrobeHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateWardrobeItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	item, err := h.wardrobe.Create(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *WardrobeHandler) Update(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateWardrobeItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	item, err := h.wardrobe.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (h *WardrobeHandler) Remove(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.wardrobe.Remove(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
