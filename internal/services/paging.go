package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// normalizePage applies defaults to absent values and bounds to a 1-based
// page and page size. An explicit zero is out of range, not absent.
func normalizePage(rawPage, rawLimit *int) (int, int, error) {
	page, limit := DefaultPage, DefaultLimit
	if rawPage != nil {
		page = *rawPage
	}
	if rawLimit != nil {
		limit = *rawLimit
	}
	if page < 1 {
		return 0, 0, apperr.Validation("page must be greater than or equal to 1")
	}
	if limit < 1 || limit > MaxLimit {
		return 0, 0, apperr.Validation("limit must be between 1 and 100")
	}
	return page, limit, nil
}

// sortOrder validates a sort column against allowed and a direction
// against asc/desc. Empty values fall back to created_at desc.
func sortOrder(sortBy, order string, allowed map[string]bool) (platform.Order, error) {
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !allowed[sortBy] {
		return platform.Order{}, apperr.Validation("sort_by must be one of: " + strings.Join(keys(allowed), ", "))
	}
	switch strings.ToLower(order) {
	case "", "desc":
		return platform.Order{Column: sortBy, Desc: true}, nil
	case "asc":
		return platform.Order{Column: sortBy}, nil
	default:
		return platform.Order{}, apperr.Validation("order must be one of: asc, desc")
	}
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for _, k := range sortedColumns {
		if m[k] {
			out = append(out, k)
		}
	}
	return out
}

var sortedColumns = []string{"created_at", "updated_at", "name", "color", "brand", "status"}

// parseID validates a client-supplied uuid.
func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Validation(field + " must be a valid UUID")
	}
	return id, nil
}
