package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

var ErrUserExists = apperr.Validation("User with this email already exists")

// AdminService provisions accounts on behalf of operators.
type AdminService struct {
	client platform.Client
}

func NewAdminService(client platform.Client) *AdminService {
	return &AdminService{client: client}
}

// CreateUser creates a confirmed account. No profile is created here; the
// first login creates it.
func (s *AdminService) CreateUser(ctx context.Context, req dto.AdminCreateUserRequest) (*dto.AdminUserResponse, error) {
	email, err := validateCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	p, err := s.client.CreateUser(ctx, platform.CreateUserParams{
		Email:        email,
		Password:     req.Password,
		EmailConfirm: true,
	})
	if err != nil {
		var authErr *platform.AuthError
		if errors.As(err, &authErr) && isDuplicateUserMessage(authErr.Message) {
			return nil, ErrUserExists
		}
		return nil, apperr.Internal("Failed to create user", err)
	}
	return &dto.AdminUserResponse{ID: p.ID.String(), Email: p.Email}, nil
}

func isDuplicateUserMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "already registered") ||
		strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate")
}
