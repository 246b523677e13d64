// Package testutil builds in-memory backends for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const JWTSecret = "test-secret"

// Backend bundles an in-memory SQLite database with the platform client
// built on it.
type Backend struct {
	DB     *gorm.DB
	Store  *platform.GormStore
	Auth   *platform.LocalAuth
	Client platform.Client
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	// Each test gets its own named in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenSQLite(dsn, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	store := platform.NewGormStore(db, database.StoreOptions(config.DriverSQLite)...)
	auth := platform.NewLocalAuth(db, JWTSecret, time.Hour)
	return &Backend{
		DB:     db,
		Store:  store,
		Auth:   auth,
		Client: platform.New(store, auth),
	}
}

// SignUp registers an account with a profile and returns its id and access token.
func (b *Backend) SignUp(t *testing.T, email, username string) (uuid.UUID, string) {
	t.Helper()
	ctx := context.Background()
	p, err := b.Auth.SignUp(ctx, email, "password123", map[string]any{"username": username})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	b.MustCreate(t, &models.Profile{ID: p.ID, Username: username})
	session, err := b.Auth.SignInWithPassword(ctx, email, "password123")
	if err != nil {
		t.Fatalf("sign in %s: %v", email, err)
	}
	return p.ID, session.AccessToken
}

func (b *Backend) MustCreate(t *testing.T, rows ...any) {
	t.Helper()
	for _, row := range rows {
		if err := b.DB.Create(row).Error; err != nil {
			t.Fatalf("create %T: %v", row, err)
		}
	}
}

func (b *Backend) Category(t *testing.T, name, display string, required bool) models.ItemCategory {
	t.Helper()
	c := models.ItemCategory{Name: name, DisplayName: display, IsRequired: required}
	b.MustCreate(t, &c)
	return c
}

func (b *Backend) Style(t *testing.T, name, display string) models.Style {
	t.Helper()
	s := models.Style{Name: name, DisplayName: display}
	b.MustCreate(t, &s)
	return s
}

func (b *Backend) Item(t *testing.T, userID, categoryID uuid.UUID, name, color string) models.WardrobeItem {
	t.Helper()
	w := models.WardrobeItem{UserID: userID, CategoryID: categoryID, Name: name, Color: color}
	b.MustCreate(t, &w)
	return w
}

func (b *Backend) Creation(t *testing.T, userID, styleID uuid.UUID, name string) models.Creation {
	t.Helper()
	c := models.Creation{UserID: userID, StyleID: styleID, Name: name, ImagePath: "/img/" + name + ".png"}
	b.MustCreate(t, &c)
	return c
}

func (b *Backend) Count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := b.DB.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
