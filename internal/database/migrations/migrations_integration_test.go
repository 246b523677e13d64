//go:build integration

package migrations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database/migrations"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

func TestMigrationsAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "wardrobe",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := &config.Config{
		DatabaseDriver: config.DriverPostgres,
		DBHost:         host,
		DBPort:         port.Port(),
		DBUser:         "testuser",
		DBPassword:     "testpass",
		DBName:         "wardrobe",
		DBSSLMode:      "disable",
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := migrations.CheckStatus(sqlDB); !errors.Is(err, migrations.ErrNoVersion) {
		t.Fatalf("CheckStatus on fresh db = %v, want ErrNoVersion", err)
	}
	if err := migrations.MigrateUp(sqlDB); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	status, err := migrations.CheckStatus(sqlDB)
	if err != nil || !status.Current() {
		t.Fatalf("CheckStatus after migrate = %+v, %v", status, err)
	}
	// Running again is a no-op.
	if err := migrations.MigrateUp(sqlDB); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}

	store := platform.NewGormStore(db)

	owner := models.Profile{ID: uuid.New(), Username: "owner"}
	other := models.Profile{ID: uuid.New(), Username: "other"}
	category := models.ItemCategory{Name: "top", DisplayName: "Top"}
	style := models.Style{Name: "casual", DisplayName: "Casual"}
	for _, row := range []struct {
		table string
		value any
	}{
		{models.TableProfiles, &owner},
		{models.TableProfiles, &other},
		{models.TableItemCategories, &category},
		{models.TableStyles, &style},
	} {
		if err := store.Insert(ctx, row.table, row.value); err != nil {
			t.Fatalf("insert %s: %v", row.table, err)
		}
	}

	dup := models.ItemCategory{Name: "TOP", DisplayName: "Top again"}
	if err := store.Insert(ctx, models.TableItemCategories, &dup); !errors.Is(err, platform.ErrUniqueViolation) {
		t.Fatalf("case-insensitive duplicate category = %v, want ErrUniqueViolation", err)
	}

	creation := models.Creation{UserID: owner.ID, StyleID: style.ID, Name: "Look", ImagePath: "/a.png"}
	mine := models.WardrobeItem{UserID: owner.ID, CategoryID: category.ID, Name: "Tee", Color: "white"}
	theirs := models.WardrobeItem{UserID: other.ID, CategoryID: category.ID, Name: "Tee", Color: "black"}
	for _, row := range []struct {
		table string
		value any
	}{
		{models.TableCreations, &creation},
		{models.TableWardrobeItems, &mine},
		{models.TableWardrobeItems, &theirs},
	} {
		if err := store.Insert(ctx, row.table, row.value); err != nil {
			t.Fatalf("insert %s: %v", row.table, err)
		}
	}

	check := func(itemID uuid.UUID) bool {
		var ok bool
		err := store.CallFunction(ctx, "can_add_to_creation", map[string]any{
			"p_creation_id": creation.ID,
			"p_item_id":     itemID,
		}, &ok)
		if err != nil {
			t.Fatalf("can_add_to_creation: %v", err)
		}
		return ok
	}
	if !check(mine.ID) {
		t.Error("owner's item should be addable")
	}
	if check(theirs.ID) {
		t.Error("another user's item should not be addable")
	}

	if err := migrations.MigrateDown(sqlDB, 3); err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}
}
