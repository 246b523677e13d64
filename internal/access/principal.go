// Package access holds the authenticated principal of a request and the
// ownership rule applied to per-user resources.
package access

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const principalKey = "principal"

var ErrNoPrincipal = errors.New("no principal in context")

// Principal is either an authenticated user or the admin marker.
type Principal struct {
	ID    uuid.UUID
	Email string
	Admin bool
}

// Admin is the elevated principal admitted by the admin secret.
func Admin() Principal {
	return Principal{Admin: true}
}

// Allow reports whether p may act on a resource owned by ownerID.
func Allow(p Principal, ownerID uuid.UUID) bool {
	if p.Admin {
		return true
	}
	return p.ID != uuid.Nil && p.ID == ownerID
}

func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(principalKey, p)
}

func GetPrincipal(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(principalKey).(Principal)
	if !ok {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}

// GetUserID returns the id of a user principal. Admin principals have none.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	p, err := GetPrincipal(c)
	if err != nil {
		return uuid.Nil, err
	}
	if p.ID == uuid.Nil {
		return uuid.Nil, ErrNoPrincipal
	}
	return p.ID, nil
}
