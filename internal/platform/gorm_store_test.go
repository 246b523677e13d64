package platform_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/testutil"
)

func seedItems(t *testing.T, b *testutil.Backend) (uuid.UUID, uuid.UUID) {
	t.Helper()
	user := models.Profile{ID: uuid.New(), Username: "alice"}
	other := models.Profile{ID: uuid.New(), Username: "bob"}
	b.MustCreate(t, &user, &other)
	top := b.Category(t, "top", "Top", true)
	brand := "Acme"
	b.MustCreate(t,
		&models.WardrobeItem{UserID: user.ID, CategoryID: top.ID, Name: "Shirt", Color: "Dark Blue", Brand: &brand},
		&models.WardrobeItem{UserID: user.ID, CategoryID: top.ID, Name: "Alpha", Color: "red"},
		&models.WardrobeItem{UserID: user.ID, CategoryID: top.ID, Name: "Tee", Color: "light blue"},
		&models.WardrobeItem{UserID: other.ID, CategoryID: top.ID, Name: "Theirs", Color: "blue"},
	)
	return user.ID, top.ID
}

func TestQueryTableFiltersOrderAndRange(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()
	userID, _ := seedItems(t, b)

	var items []models.WardrobeItem
	total, err := b.Store.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Filters: []platform.Filter{platform.Eq("user_id", userID), platform.ILike("color", "BLUE")},
		Order:   []platform.Order{{Column: "name"}},
		Range:   &platform.Range{From: 0, To: 0},
		Count:   true,
	}, &items)
	if err != nil {
		t.Fatalf("QueryTable: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(items) != 1 || items[0].Name != "Shirt" {
		t.Fatalf("items = %+v, want only Shirt", items)
	}

	items = nil
	_, err = b.Store.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Filters: []platform.Filter{platform.Eq("user_id", userID)},
		Order:   []platform.Order{{Column: "name", Desc: true}},
		Range:   &platform.Range{From: 1, To: 2},
	}, &items)
	if err != nil {
		t.Fatalf("QueryTable: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Shirt" || items[1].Name != "Alpha" {
		t.Fatalf("second page = %+v", items)
	}
}

func TestQueryTableRejectsUnknownTableAndColumn(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()

	var rows []models.Profile
	if _, err := b.Store.QueryTable(ctx, platform.Query{Table: "pg_shadow"}, &rows); !errors.Is(err, platform.ErrUnknownTable) {
		t.Errorf("unknown table err = %v", err)
	}
	_, err := b.Store.QueryTable(ctx, platform.Query{
		Table: models.TableProfiles,
		Order: []platform.Order{{Column: "name; DROP TABLE profiles"}},
	}, &rows)
	if !errors.Is(err, platform.ErrInvalidColumn) {
		t.Errorf("bad order column err = %v", err)
	}
}

func TestInsertTranslatesUniqueViolation(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()

	first := models.Profile{ID: uuid.New(), Username: "taken"}
	if err := b.Store.Insert(ctx, models.TableProfiles, &first); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := models.Profile{ID: uuid.New(), Username: "taken"}
	err := b.Store.Insert(ctx, models.TableProfiles, &dup)
	if !errors.Is(err, platform.ErrUniqueViolation) {
		t.Fatalf("duplicate insert err = %v, want ErrUniqueViolation", err)
	}
}

func TestUpdateAndDeleteReportRowsAffected(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()
	userID, _ := seedItems(t, b)

	n, err := b.Store.Update(ctx, models.TableWardrobeItems,
		[]platform.Filter{platform.Eq("user_id", userID), platform.Eq("name", "Alpha")},
		map[string]any{"color": "green"})
	if err != nil || n != 1 {
		t.Fatalf("Update = %d, %v", n, err)
	}

	item, err := platform.FindOne[models.WardrobeItem](ctx, b.Store, platform.Query{
		Table:   models.TableWardrobeItems,
		Filters: []platform.Filter{platform.Eq("name", "Alpha")},
	})
	if err != nil || item == nil || item.Color != "green" {
		t.Fatalf("FindOne after update = %+v, %v", item, err)
	}

	n, err = b.Store.Delete(ctx, models.TableWardrobeItems, []platform.Filter{platform.Eq("id", item.ID)})
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	n, err = b.Store.Delete(ctx, models.TableWardrobeItems, []platform.Filter{platform.Eq("id", item.ID)})
	if err != nil || n != 0 {
		t.Fatalf("second Delete = %d, %v", n, err)
	}

	if _, err := b.Store.Delete(ctx, models.TableWardrobeItems, nil); err == nil {
		t.Error("Delete without filters should fail")
	}
}

func TestInFilterAndExists(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()
	userID, _ := seedItems(t, b)

	var items []models.WardrobeItem
	_, err := b.Store.QueryTable(ctx, platform.Query{
		Table:   models.TableWardrobeItems,
		Filters: []platform.Filter{platform.In("name", []string{"Alpha", "Tee", "Missing"})},
	}, &items)
	if err != nil || len(items) != 2 {
		t.Fatalf("In filter = %d items, %v", len(items), err)
	}

	ok, err := platform.Exists(ctx, b.Store, models.TableWardrobeItems, platform.Eq("user_id", userID), platform.Eq("name", "Tee"))
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	ok, err = platform.Exists(ctx, b.Store, models.TableWardrobeItems, platform.Eq("name", "Nope"))
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestCallFunctionCanAddToCreation(t *testing.T) {
	b := testutil.NewBackend(t)
	ctx := context.Background()
	userID, catID := seedItems(t, b)
	style := b.Style(t, "casual", "Casual")
	creation := b.Creation(t, userID, style.ID, "Look")

	other := models.Profile{ID: uuid.New(), Username: "carol"}
	b.MustCreate(t, &other)
	mine := b.Item(t, userID, catID, "Jeans", "blue")
	theirs := b.Item(t, other.ID, catID, "Skirt", "black")

	call := func(itemID uuid.UUID) bool {
		var ok bool
		err := b.Store.CallFunction(ctx, "can_add_to_creation", map[string]any{
			"p_creation_id": creation.ID,
			"p_item_id":     itemID,
		}, &ok)
		if err != nil {
			t.Fatalf("CallFunction: %v", err)
		}
		return ok
	}

	if !call(mine.ID) {
		t.Error("own item should be addable")
	}
	if call(theirs.ID) {
		t.Error("foreign item should not be addable")
	}

	b.DB.Model(&models.Creation{}).Where("id = ?", creation.ID).Update("status", models.CreationRejected)
	if call(mine.ID) {
		t.Error("items cannot be added to a rejected creation")
	}
}
