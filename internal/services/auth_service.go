package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const minPasswordLength = 6

var ErrInvalidCredentials = apperr.Unauthenticated("Invalid email or password")

// AuthService registers and signs in users and keeps their profiles in step.
type AuthService struct {
	client   platform.Client
	profiles *ProfileService
}

func NewAuthService(client platform.Client, profiles *ProfileService) *AuthService {
	return &AuthService{client: client, profiles: profiles}
}

func (s *AuthService) Signup(ctx context.Context, req dto.SignupRequest) (*models.Profile, error) {
	email, err := validateCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	base := UsernameFromEmail(email)
	if requested := req.RequestedUsername(); requested != nil {
		u := strings.TrimSpace(*requested)
		if !validUsername(u) {
			return nil, ErrInvalidUsername
		}
		base = u
	}
	username, err := s.profiles.EnsureUniqueUsername(ctx, base)
	if err != nil {
		return nil, err
	}

	principal, err := s.client.SignUp(ctx, email, req.Password, map[string]any{"username": username})
	if err != nil {
		var authErr *platform.AuthError
		if errors.As(err, &authErr) {
			return nil, apperr.Validation(authErr.Message)
		}
		return nil, apperr.Internal("Failed to register user", err)
	}
	if principal == nil {
		return nil, apperr.Internal("Signup succeeded but no user id was returned", nil)
	}

	return s.profiles.EnsureProfile(ctx, principal.ID, username)
}

// Login never says which part of the credentials was wrong.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	session, err := s.client.SignInWithPassword(ctx, email, req.Password)
	if err != nil {
		var authErr *platform.AuthError
		if !errors.As(err, &authErr) {
			slog.Warn("sign in failed", "error", err)
		}
		return nil, ErrInvalidCredentials
	}
	if session == nil || session.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.find(ctx, session.User.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		username, err := s.profiles.EnsureUniqueUsername(ctx, UsernameFromEmail(email))
		if err != nil {
			return nil, err
		}
		if profile, err = s.profiles.EnsureProfile(ctx, session.User.ID, username); err != nil {
			return nil, err
		}
	}

	return &dto.LoginResponse{AccessToken: session.AccessToken, Profile: *profile}, nil
}

// validateCredentials checks the email shape and password length and
// returns the normalized email.
func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", apperr.Validation("email and password are required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("email must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return "", apperr.Validation("password must be at least 6 characters long")
	}
	return email, nil
}
