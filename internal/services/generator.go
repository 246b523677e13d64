package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

const (
	proposalSlots       = 3
	maxItemsPerProposal = 3
)

// Proposal is one outfit suggested by a ProposalGenerator.
type Proposal struct {
	Name      string
	ImagePath string
	ItemIDs   []uuid.UUID
}

// ProposalGenerator picks outfits for a style from a user's items.
type ProposalGenerator interface {
	ProposeCreations(ctx context.Context, userID uuid.UUID, style models.Style, items []models.WardrobeItem) ([]Proposal, error)
}

// RandomGenerator fills every slot with a random handful of items.
type RandomGenerator struct {
	now func() time.Time
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{now: time.Now}
}

func (g *RandomGenerator) ProposeCreations(_ context.Context, _ uuid.UUID, _ models.Style, items []models.WardrobeItem) ([]Proposal, error) {
	stamp := g.now().UnixMilli()
	out := make([]Proposal, 0, proposalSlots)
	for i := 1; i <= proposalSlots; i++ {
		out = append(out, Proposal{
			Name:      placeholderName(i),
			ImagePath: fmt.Sprintf("/mock/creation-%d-%d.png", stamp, i),
			ItemIDs:   pickItems(items, maxItemsPerProposal),
		})
	}
	return out, nil
}

// placeholderName carries a short random suffix so repeated generations
// stay clear of the (user_id, name) unique index.
func placeholderName(n int) string {
	return fmt.Sprintf("AI Generated Creation %d (%s)", n, uuid.NewString()[:8])
}

func pickItems(items []models.WardrobeItem, limit int) []uuid.UUID {
	if len(items) == 0 {
		return nil
	}
	n := min(limit, len(items))
	ids := make([]uuid.UUID, 0, n)
	for _, idx := range rand.Perm(len(items))[:n] {
		ids = append(ids, items[idx].ID)
	}
	return ids
}
