package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/testutil"
)

func newCreationService(b *testutil.Backend, gen services.ProposalGenerator) *services.CreationService {
	return services.NewCreationService(b.Client, services.NewStyleService(b.Client), gen)
}

func TestAcceptRejectStateMachine(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	bob, _ := b.SignUp(t, "bob@example.com", "bob")
	style := b.Style(t, "casual", "Casual")
	c := b.Creation(t, alice, style.ID, "Look")

	err := svc.Accept(ctx, bob, c.ID)
	wantErr(t, err, apperr.KindValidation, "You do not have permission to accept this creation")
	err = svc.Reject(ctx, bob, c.ID)
	wantErr(t, err, apperr.KindValidation, "You do not have permission to reject this creation")
	if got := statusOf(t, b, c.ID); got != models.CreationPending {
		t.Fatalf("status after foreign calls = %q, want pending", got)
	}

	if err := svc.Accept(ctx, alice, c.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got := statusOf(t, b, c.ID); got != models.CreationAccepted {
		t.Fatalf("status = %q, want accepted", got)
	}

	err = svc.Reject(ctx, alice, c.ID)
	wantErr(t, err, apperr.KindConflict, "Creation is already accepted")

	missing := uuid.New()
	err = svc.Accept(ctx, alice, missing)
	wantErr(t, err, apperr.KindNotFound, "Creation with id "+missing.String()+" not found")
}

func TestCreateManual(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")

	req := dto.CreateCreationRequest{StyleID: style.ID.String(), Name: "Sunday", ImagePath: "/img/sunday.JPG"}
	c, err := svc.CreateManual(ctx, alice, req)
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}
	if c.Status != models.CreationPending || c.UserID != alice {
		t.Errorf("creation = %+v", c)
	}

	_, err = svc.CreateManual(ctx, alice, req)
	wantErr(t, err, apperr.KindConflict, "A creation with this name already exists for the user")

	missing := uuid.New()
	_, err = svc.CreateManual(ctx, alice, dto.CreateCreationRequest{StyleID: missing.String(), Name: "Other", ImagePath: "a.png"})
	wantErr(t, err, apperr.KindNotFound, "Style with id "+missing.String()+" not found")

	_, err = svc.CreateManual(ctx, alice, dto.CreateCreationRequest{StyleID: style.ID.String(), Name: "Gif", ImagePath: "a.gif"})
	wantErr(t, err, apperr.KindValidation, "image_path must end with .png, .jpg, .jpeg or .webp")
}

func TestGenerateRequiresRequiredCategories(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")
	tops := b.Category(t, "tops", "Tops", true)
	b.Category(t, "shoes", "Shoes", true)
	b.Category(t, "bottoms", "Bottoms", true)
	b.Category(t, "hats", "Hats", false)
	b.Item(t, alice, tops.ID, "Shirt", "white")

	_, err := svc.Generate(ctx, alice, dto.GenerateCreationsRequest{StyleID: style.ID.String()})
	wantErr(t, err, apperr.KindValidation, "Missing required wardrobe items: Bottoms, Shoes")

	if n := b.Count(t, &models.Creation{}, "user_id = ?", alice); n != 0 {
		t.Errorf("creations = %d, want none written", n)
	}

	missing := uuid.New()
	_, err = svc.Generate(ctx, alice, dto.GenerateCreationsRequest{StyleID: missing.String()})
	wantErr(t, err, apperr.KindNotFound, "Style with id "+missing.String()+" not found")
}

func TestGenerateStoresProposals(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, services.NewRandomGenerator())
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")
	tops := b.Category(t, "tops", "Tops", true)
	for i := range 4 {
		b.Item(t, alice, tops.ID, fmt.Sprintf("Shirt %d", i), "white")
	}

	for round := range 2 {
		created, err := svc.Generate(ctx, alice, dto.GenerateCreationsRequest{StyleID: style.ID.String()})
		if err != nil {
			t.Fatalf("Generate round %d: %v", round, err)
		}
		if len(created) != 3 {
			t.Fatalf("created = %d, want 3", len(created))
		}
		for _, c := range created {
			if c.Status != models.CreationPending || !strings.HasPrefix(c.Name, "AI Generated Creation") {
				t.Errorf("creation = %+v", c)
			}
			if !strings.HasPrefix(c.ImagePath, "/mock/creation-") {
				t.Errorf("image_path = %q", c.ImagePath)
			}
			if n := b.Count(t, &models.CreationItem{}, "creation_id = ?", c.ID); n != 3 {
				t.Errorf("links for %s = %d, want 3", c.Name, n)
			}
		}
	}
	if n := b.Count(t, &models.Creation{}, "user_id = ?", alice); n != 6 {
		t.Errorf("creations = %d, want 6 after two rounds", n)
	}
}

type failingGenerator struct{}

func (failingGenerator) ProposeCreations(context.Context, uuid.UUID, models.Style, []models.WardrobeItem) ([]services.Proposal, error) {
	return nil, fmt.Errorf("boom")
}

func TestGenerateWrapsUnexpectedFailures(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, failingGenerator{})
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")

	_, err := svc.Generate(context.Background(), alice, dto.GenerateCreationsRequest{StyleID: style.ID.String()})
	wantErr(t, err, apperr.KindInternal, "Failed to generate creations")
}

func TestListItemsContentRange(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	bob, _ := b.SignUp(t, "bob@example.com", "bob")
	style := b.Style(t, "casual", "Casual")
	tops := b.Category(t, "tops", "Tops", false)
	c := b.Creation(t, alice, style.ID, "Big look")
	for i := range 25 {
		item := b.Item(t, alice, tops.ID, fmt.Sprintf("Item %02d", i), "grey")
		b.MustCreate(t, &models.CreationItem{CreationID: c.ID, ItemID: item.ID})
	}

	page, err := svc.ListItems(ctx, alice, c.ID, dto.ListCreationItemsQuery{Page: ptr(2), Limit: ptr(10), IncludeTotal: "true", Expand: "item"})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(page.Items) != 10 {
		t.Fatalf("items = %d, want 10", len(page.Items))
	}
	if page.Total == nil || *page.Total != 25 {
		t.Fatalf("total = %v, want 25", page.Total)
	}
	if got := page.ContentRange(); got != "items 10-19/25" {
		t.Errorf("Content-Range = %q, want items 10-19/25", got)
	}
	for _, l := range page.Items {
		if l.Item == nil || l.Item.ID != l.ItemID {
			t.Errorf("link %s not expanded", l.ID)
		}
	}

	last, err := svc.ListItems(ctx, alice, c.ID, dto.ListCreationItemsQuery{Page: ptr(3), Limit: ptr(10), IncludeTotal: "1"})
	if err != nil {
		t.Fatalf("ListItems page 3: %v", err)
	}
	if got := last.ContentRange(); got != "items 20-24/25" {
		t.Errorf("last Content-Range = %q", got)
	}
	if last.Items[0].Item != nil {
		t.Error("item expanded without expand=item")
	}

	_, err = svc.ListItems(ctx, bob, c.ID, dto.ListCreationItemsQuery{})
	wantErr(t, err, apperr.KindNotFound, "Creation not found")
}

func TestAddItem(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	bob, _ := b.SignUp(t, "bob@example.com", "bob")
	style := b.Style(t, "casual", "Casual")
	tops := b.Category(t, "tops", "Tops", false)
	c := b.Creation(t, alice, style.ID, "Look")
	mine := b.Item(t, alice, tops.ID, "Shirt", "white")
	theirs := b.Item(t, bob, tops.ID, "Hoodie", "black")

	link, err := svc.AddItem(ctx, alice, c.ID, dto.AddCreationItemRequest{ItemID: mine.ID.String()})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if link.CreationID != c.ID || link.ItemID != mine.ID {
		t.Errorf("link = %+v", link)
	}

	_, err = svc.AddItem(ctx, alice, c.ID, dto.AddCreationItemRequest{ItemID: mine.ID.String()})
	wantErr(t, err, apperr.KindConflict, "This item is already added to the creation")

	_, err = svc.AddItem(ctx, alice, c.ID, dto.AddCreationItemRequest{ItemID: theirs.ID.String()})
	wantErr(t, err, apperr.KindNotFound, "Wardrobe item not found")

	_, err = svc.AddItem(ctx, bob, c.ID, dto.AddCreationItemRequest{ItemID: theirs.ID.String()})
	wantErr(t, err, apperr.KindNotFound, "Creation not found")

	rejected := b.Creation(t, alice, style.ID, "Nope")
	if err := svc.Reject(ctx, alice, rejected.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	_, err = svc.AddItem(ctx, alice, rejected.ID, dto.AddCreationItemRequest{ItemID: mine.ID.String()})
	wantErr(t, err, apperr.KindForbidden, "Item cannot be added to this creation")
}

func TestListCreationsFilters(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")
	b.Creation(t, alice, style.ID, "Summer Brunch")
	done := b.Creation(t, alice, style.ID, "Winter Walk")
	if err := svc.Accept(ctx, alice, done.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	got, err := svc.List(ctx, alice, dto.ListCreationsQuery{Status: "accepted"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != done.ID {
		t.Errorf("accepted = %+v", got)
	}

	got, err = svc.List(ctx, alice, dto.ListCreationsQuery{Search: "brunch", StyleID: style.ID.String()})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Summer Brunch" {
		t.Errorf("search = %+v", got)
	}

	_, err = svc.List(ctx, alice, dto.ListCreationsQuery{Status: "archived"})
	wantErr(t, err, apperr.KindValidation, "status must be one of: pending, accepted, rejected")
}

func statusOf(t *testing.T, b *testutil.Backend, id uuid.UUID) string {
	t.Helper()
	var c models.Creation
	if err := b.DB.First(&c, "id = ?", id).Error; err != nil {
		t.Fatalf("load creation: %v", err)
	}
	return c.Status
}

func TestRemovingItemDropsItsLinks(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := newCreationService(b, nil)
	wardrobe := services.NewWardrobeService(b.Client)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")
	tops := b.Category(t, "tops", "Tops", true)
	shirt := b.Item(t, alice, tops.ID, "Shirt", "white")
	tee := b.Item(t, alice, tops.ID, "Tee", "black")
	c := b.Creation(t, alice, style.ID, "Look")

	for _, item := range []models.WardrobeItem{shirt, tee} {
		if _, err := svc.AddItem(ctx, alice, c.ID, dto.AddCreationItemRequest{ItemID: item.ID.String()}); err != nil {
			t.Fatalf("AddItem %s: %v", item.Name, err)
		}
	}
	if err := wardrobe.Remove(ctx, alice, shirt.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if n := b.Count(t, &models.CreationItem{}, "item_id = ?", shirt.ID); n != 0 {
		t.Errorf("links to deleted item = %d, want 0", n)
	}
	page, err := svc.ListItems(ctx, alice, c.ID, dto.ListCreationItemsQuery{IncludeTotal: "true"})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ItemID != tee.ID || *page.Total != 1 {
		t.Errorf("items = %+v total = %v, want only the tee", page.Items, *page.Total)
	}
}
