package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

// canAddToCreationSQL mirrors the can_add_to_creation Postgres function for
// drivers that cannot store it.
const canAddToCreationSQL = `SELECT EXISTS (
	SELECT 1 FROM creations c
	JOIN wardrobe_items w ON w.user_id = c.user_id
	WHERE c.id = @p_creation_id AND w.id = @p_item_id AND c.status <> 'rejected'
)`

// Connect opens the configured database and tunes its pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.SQLitePath, gcfg)
		if err != nil {
			return nil, err
		}
		slog.Info("database connected", "driver", "sqlite", "path", cfg.SQLitePath)
		return db, nil
	case config.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected", "driver", "postgres", "host", cfg.DBHost)
	return db, nil
}

// OpenSQLite opens a SQLite database with foreign keys enforced and creates
// the schema with AutoMigrate. Use ":memory:" for a private in-memory database.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		}
	}
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared across queries.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("sqlite automigrate: %w", err)
	}
	return db, nil
}

// sqliteDSN turns on foreign_keys, which SQLite leaves off per connection.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// StoreOptions returns the data store overrides the driver needs.
func StoreOptions(driver string) []platform.StoreOption {
	if driver == config.DriverSQLite {
		return []platform.StoreOption{
			platform.WithFunction("can_add_to_creation", platform.SQLFunction(canAddToCreationSQL)),
		}
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type pinger struct{ db *gorm.DB }

func (p pinger) Ping(ctx context.Context) error { return Ping(ctx, p.db) }

// Pinger adapts db to the health handler.
func Pinger(db *gorm.DB) interface{ Ping(context.Context) error } {
	return pinger{db: db}
}
