package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
)

type CreationHandler struct {
	creations *services.CreationService
	images    *services.ImageService
}

func NewCreationHandler(creations *services.CreationService, images *services.ImageService) *CreationHandler {
	return &CreationHandler{creations: creations, images: images}
}

func (h *CreationHandler) List(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var q dto.ListCreationsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	rows, err := h.creations.List(c.UserContext(), userID, q)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *CreationHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	row, err := h.creations.Get(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(row)
}

func (h *CreationHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCreationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	row, err := h.creations.CreateManual(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *CreationHandler) Generate(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.GenerateCreationsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	rows, err := h.creations.Generate(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *CreationHandler) Accept(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.creations.Accept(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Creation accepted successfully"})
}

func (h *CreationHandler) Reject(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.creations.Reject(c.UserContext(), userID, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Creation rejected successfully"})
}

// ListItems returns the page as a bare array. The total, when requested,
// travels in X-Total-Count and Content-Range.
func (h *CreationHandler) ListItems(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var q dto.ListCreationItemsQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.creations.ListItems(c.UserContext(), userID, id, q)
	if err != nil {
		return err
	}
	if page.Total != nil {
		c.Set("X-Total-Count", strconv.FormatInt(*page.Total, 10))
		c.Set(fiber.HeaderContentRange, page.ContentRange())
	}
	return c.JSON(page.Items)
}

func (h *CreationHandler) AddItem(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AddCreationItemRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	link, err := h.creations.AddItem(c.UserContext(), userID, id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(link)
}

func (h *CreationHandler) UploadImage(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return apperr.Internal("Failed to read upload", err)
	}
	defer f.Close()

	resp, err := h.images.Upload(c.UserContext(), userID, fh.Size, f)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CreationHandler) ImageURL(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	resp, err := h.images.URL(c.UserContext(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
