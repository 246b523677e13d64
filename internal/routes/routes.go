package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/middleware"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Wardrobe *handlers.WardrobeHandler
	Taxonomy *handlers.TaxonomyHandler
	Creation *handlers.CreationHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, gate *middleware.Gate, h Handlers) {
	app.Get("/health", h.Health.Check)
	app.Get("/health/ready", h.Health.Ready)

	// Auth: public, stricter per-IP rate limit
	auth := app.Group("/auth/v1")
	auth.Use(limiter.New(limiter.Config{
		Max:               cfg.AuthRateMax,
		Expiration:        cfg.AuthRateWindow,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later")
		},
	}))
	auth.Post("/signup", h.Auth.Signup)
	auth.Post("/login", h.Auth.Login)

	profiles := app.Group("/profiles", gate.BearerOrAdmin())
	profiles.Get("/:user_id", h.Profile.Get)
	profiles.Patch("/:user_id", h.Profile.Update)

	// Taxonomy reads are public
	app.Get("/item_categories", h.Taxonomy.ListCategories)
	app.Get("/styles", h.Taxonomy.ListStyles)

	user := gate.BearerRequired()

	items := app.Group("/wardrobe_items", user)
	items.Get("/", h.Wardrobe.List)
	items.Post("/", h.Wardrobe.Create)
	items.Get("/:id", h.Wardrobe.Get)
	items.Patch("/:id", h.Wardrobe.Update)
	items.Delete("/:id", h.Wardrobe.Remove)

	// Static segments are registered before /:id
	creations := app.Group("/creations", user)
	creations.Get("/", h.Creation.List)
	creations.Post("/", h.Creation.Create)
	creations.Post("/generate", h.Creation.Generate)
	creations.Post("/images", h.Creation.UploadImage)
	creations.Get("/:id", h.Creation.Get)
	creations.Get("/:id/image_url", h.Creation.ImageURL)
	creations.Get("/:id/items", h.Creation.ListItems)
	creations.Post("/:id/items", h.Creation.AddItem)
	creations.Post("/:id/accept", h.Creation.Accept)
	creations.Post("/:id/reject", h.Creation.Reject)

	admin := app.Group("/admin", gate.AdminRequired())
	admin.Post("/item_categories", h.Taxonomy.CreateCategory)
	admin.Put("/item_categories/:id", h.Taxonomy.UpdateCategory)
	admin.Post("/styles", h.Taxonomy.CreateStyle)
	admin.Put("/styles/:id", h.Taxonomy.UpdateStyle)
	admin.Post("/users", h.Admin.CreateUser)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("Cannot " + c.Method() + " " + c.Path())
	})
}
