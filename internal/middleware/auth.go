package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const AdminSecretHeader = "x-admin-secret"

// TokenIntrospector resolves a bearer token to a principal.
type TokenIntrospector interface {
	IntrospectToken(ctx context.Context, token string) (*platform.Principal, error)
}

// Gate admits requests by admin secret, bearer token, or either.
type Gate struct {
	adminSecret []byte
	tokens      TokenIntrospector
}

func NewGate(adminSecret string, tokens TokenIntrospector) *Gate {
	return &Gate{adminSecret: []byte(adminSecret), tokens: tokens}
}

func (g *Gate) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := g.admin(c)
		if err != nil {
			return err
		}
		access.SetPrincipal(c, p)
		return c.Next()
	}
}

func (g *Gate) BearerRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := g.bearer(c)
		if err != nil {
			return err
		}
		access.SetPrincipal(c, p)
		return c.Next()
	}
}

// BearerOrAdmin tries the admin secret first, then the bearer token. The
// failure never says which path was tried or why it failed.
func (g *Gate) BearerOrAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p, err := g.admin(c); err == nil {
			access.SetPrincipal(c, p)
			return c.Next()
		}
		p, err := g.bearer(c)
		if err != nil {
			return apperr.Unauthenticated("Unauthorized: missing or invalid credentials")
		}
		access.SetPrincipal(c, p)
		return c.Next()
	}
}

func (g *Gate) admin(c *fiber.Ctx) (access.Principal, error) {
	provided := c.Get(AdminSecretHeader)
	if provided == "" {
		return access.Principal{}, apperr.Unauthenticated("Missing x-admin-secret header")
	}
	if len(g.adminSecret) == 0 {
		return access.Principal{}, apperr.Forbidden("Server misconfiguration: admin secret not set")
	}
	if subtle.ConstantTimeCompare([]byte(provided), g.adminSecret) != 1 {
		return access.Principal{}, apperr.Forbidden("Invalid admin secret")
	}
	return access.Admin(), nil
}

func (g *Gate) bearer(c *fiber.Ctx) (access.Principal, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return access.Principal{}, apperr.Unauthenticated("Missing Authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || scheme != "Bearer" || token == "" {
		return access.Principal{}, apperr.Unauthenticated("Invalid Authorization header format. Expected: Bearer <token>")
	}

	p, err := g.tokens.IntrospectToken(c.UserContext(), token)
	if err != nil || p == nil {
		if err != nil && !errors.Is(err, platform.ErrInvalidToken) {
			slog.Warn("token introspection failed", "error", err, "request_id", c.Locals("requestid"))
		}
		return access.Principal{}, apperr.Unauthenticated("Invalid or expired token")
	}
	return access.Principal{ID: p.ID, Email: p.Email}, nil
}
