package dto

import "github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"

type SignupMetadata struct {
	Username *string `json:"username"`
}

type SignupRequest struct {
	Email              string          `json:"email"`
	Password           string          `json:"password"`
	AdditionalMetadata *SignupMetadata `json:"additional_metadata"`
}

// RequestedUsername returns the username supplied in the metadata, if any.
func (r SignupRequest) RequestedUsername() *string {
	if r.AdditionalMetadata == nil {
		return nil
	}
	return r.AdditionalMetadata.Username
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Profile     models.Profile `json:"profile"`
}

type AdminCreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
}
