package dto

type ListWardrobeItemsQuery struct {
	Page       *int   `query:"page"`
	Limit      *int   `query:"limit"`
	SortBy     string `query:"sort_by"`
	Order      string `query:"order"`
	CategoryID string `query:"category_id"`
	Color      string `query:"color"`
	Brand      string `query:"brand"`
}

type CreateWardrobeItemRequest struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Brand      *string `json:"brand"`
}

// UpdateWardrobeItemRequest changes only the fields that are present.
type UpdateWardrobeItemRequest struct {
	CategoryID *string `json:"category_id"`
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	Brand      *string `json:"brand"`
}

func (r UpdateWardrobeItemRequest) Empty() bool {
	return r.CategoryID == nil && r.Name == nil && r.Color == nil && r.Brand == nil
}
