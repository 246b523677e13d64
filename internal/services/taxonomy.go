package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

var kebabCase = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func validateTaxonomyName(name string) error {
	if len(name) < 2 || len(name) > 50 || !kebabCase.MatchString(name) {
		return apperr.Validation("name must be 2-50 characters of lowercase letters, digits and single hyphens (kebab-case)")
	}
	return nil
}

func validateDisplayName(displayName string) error {
	if n := utf8.RuneCountInString(displayName); n < 2 || n > 60 {
		return apperr.Validation("display_name must be 2-60 characters long")
	}
	return nil
}

// requiredNames trims and validates the fields shared by category and style creation.
func requiredNames(name, displayName string) (string, string, error) {
	name = strings.TrimSpace(name)
	displayName = strings.TrimSpace(displayName)
	if name == "" || displayName == "" {
		return "", "", apperr.Validation("name and display_name are required")
	}
	if err := validateTaxonomyName(name); err != nil {
		return "", "", err
	}
	if err := validateDisplayName(displayName); err != nil {
		return "", "", err
	}
	return name, displayName, nil
}

// renamedTo validates an optional new name. It returns "" when the name
// is absent or unchanged.
func renamedTo(name *string, current string) (string, error) {
	if name == nil {
		return "", nil
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		return "", apperr.Validation("name cannot be empty")
	}
	if err := validateTaxonomyName(n); err != nil {
		return "", err
	}
	if n == current {
		return "", nil
	}
	return n, nil
}

func changedDisplayName(displayName *string, current string) (string, error) {
	if displayName == nil {
		return "", nil
	}
	d := strings.TrimSpace(*displayName)
	if d == "" {
		return "", apperr.Validation("display_name cannot be empty")
	}
	if err := validateDisplayName(d); err != nil {
		return "", err
	}
	if d == current {
		return "", nil
	}
	return d, nil
}

// nameTaken reports a case-insensitive name collision in table, ignoring
// the row with id exclude.
func nameTaken(ctx context.Context, ds platform.DataStore, table, name string, exclude uuid.UUID) (bool, error) {
	filters := []platform.Filter{platform.IEq("name", name)}
	if exclude != uuid.Nil {
		filters = append(filters, platform.Neq("id", exclude))
	}
	return platform.Exists(ctx, ds, table, filters...)
}
