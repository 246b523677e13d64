package models

import "github.com/google/uuid"

// Table names shared by the data store and the services.
const (
	TableProfiles       = "profiles"
	TableWardrobeItems  = "wardrobe_items"
	TableItemCategories = "item_categories"
	TableStyles         = "styles"
	TableCreations      = "creations"
	TableCreationItems  = "creation_items"
	TableAuthUsers      = "auth_users"
	TableSystemLogs     = "system_logs"
)

// New returns a pointer to an empty model for the given table.
func New(table string) (any, bool) {
	switch table {
	case TableProfiles:
		return &Profile{}, true
	case TableWardrobeItems:
		return &WardrobeItem{}, true
	case TableItemCategories:
		return &ItemCategory{}, true
	case TableStyles:
		return &Style{}, true
	case TableCreations:
		return &Creation{}, true
	case TableCreationItems:
		return &CreationItem{}, true
	case TableAuthUsers:
		return &AuthUser{}, true
	case TableSystemLogs:
		return &SystemLog{}, true
	}
	return nil, false
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&AuthUser{},
		&Profile{},
		&ItemCategory{},
		&Style{},
		&WardrobeItem{},
		&Creation{},
		&CreationItem{},
		&SystemLog{},
	}
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
