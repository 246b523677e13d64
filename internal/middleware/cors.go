package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
)

// CORS allows the configured origins. Credentials are only allowed with an
// explicit origin list; fiber refuses them next to a wildcard.
func CORS(cfg *config.Config) fiber.Handler {
	origins := strings.Join(cfg.CORSOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, " + AdminSecretHeader,
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		ExposeHeaders:    "X-Total-Count, Content-Range, X-Request-ID",
		AllowCredentials: origins != "*",
	})
}
