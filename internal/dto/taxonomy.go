package dto

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	IsRequired  *bool  `json:"is_required"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
	IsRequired  *bool   `json:"is_required"`
}

type CreateStyleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type UpdateStyleRequest struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"display_name"`
}
