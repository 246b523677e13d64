// Package server assembles the HTTP application from its dependencies.
package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/storage"
)

type Deps struct {
	Client    platform.Client
	Health    handlers.Pinger
	Storage   storage.ObjectStore
	Generator services.ProposalGenerator
	Version   string
}

// Option customises the app after global middleware and before routes.
type Option func(*fiber.App)

// NewClient builds the platform client for the configured auth provider.
func NewClient(cfg *config.Config, db *gorm.DB) (platform.Client, error) {
	store := platform.NewGormStore(db, database.StoreOptions(cfg.DatabaseDriver)...)

	var auth platform.AuthProvider
	switch cfg.AuthProvider {
	case config.AuthProviderLocal:
		auth = platform.NewLocalAuth(db, cfg.JWTSecret, cfg.JWTAccessExpiry)
	case config.AuthProviderSupabase:
		auth = platform.NewGoTrueAuth(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseServiceRoleKey, cfg.AuthTimeout)
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.AuthProvider)
	}
	return platform.New(store, auth), nil
}

// NewGenerator picks the proposal generator named by the config.
func NewGenerator(cfg *config.Config) services.ProposalGenerator {
	if cfg.Generation.Provider == config.GenerationLLM {
		return services.NewLLMGenerator(cfg.Generation)
	}
	return services.NewRandomGenerator()
}

func New(cfg *config.Config, deps Deps, opts ...Option) *fiber.App {
	profiles := services.NewProfileService(deps.Client)
	styles := services.NewStyleService(deps.Client)
	creations := services.NewCreationService(deps.Client, styles, deps.Generator)

	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(services.NewAuthService(deps.Client, profiles)),
		Profile:  handlers.NewProfileHandler(profiles),
		Wardrobe: handlers.NewWardrobeHandler(services.NewWardrobeService(deps.Client)),
		Taxonomy: handlers.NewTaxonomyHandler(services.NewCategoryService(deps.Client), styles),
		Creation: handlers.NewCreationHandler(creations,
			services.NewImageService(deps.Storage, creations, cfg.Storage.MaxUploadBytes)),
		Admin:  handlers.NewAdminHandler(services.NewAdminService(deps.Client)),
		Health: handlers.NewHealthHandler(deps.Health, deps.Version),
	}

	// Room for a full-size image plus multipart framing.
	bodyLimit := 4 * 1024 * 1024
	if limit := int(cfg.Storage.MaxUploadBytes) + 1024*1024; limit > bodyLimit {
		bodyLimit = limit
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.OTelServiceName,
		BodyLimit:             bodyLimit,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})
	for _, opt := range opts {
		opt(app)
	}

	gate := middleware.NewGate(cfg.AdminSecret, deps.Client)
	routes.Setup(app, cfg, gate, h)
	return app
}
