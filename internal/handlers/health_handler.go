package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	version string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Check is the liveness probe; it reports the database state but always
// answers 200.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(h.report(c))
}

// Ready answers 503 while the database is unreachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	resp := h.report(c)
	if resp.DB != "ok" {
		resp.Status = "unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *HealthHandler) report(c *fiber.Ctx) dto.HealthResponse {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}
	return dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Version:   h.version,
	}
}
