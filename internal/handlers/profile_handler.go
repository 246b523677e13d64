package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
)

var errForeignProfile = apperr.Forbidden("You can only access your own profile")

type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// guard resolves :user_id and checks it against the request principal.
func (h *ProfileHandler) guard(c *fiber.Ctx) (uuid.UUID, error) {
	userID, err := paramID(c, "user_id")
	if err != nil {
		return uuid.Nil, err
	}
	p, err := access.GetPrincipal(c)
	if err != nil || !access.Allow(p, userID) {
		return uuid.Nil, errForeignProfile
	}
	return userID, nil
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := h.guard(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := h.guard(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.Update(c.UserContext(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
