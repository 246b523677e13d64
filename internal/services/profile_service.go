package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

const (
	maxUsernameAttempts = 50
	minUsernameLength   = 3
	maxUsernameLength   = 30
)

var (
	ErrUsernameExhausted = apperr.Validation("Unable to generate a unique username, please try a different one")
	ErrUsernameTaken     = apperr.Validation("Username is already taken")
	ErrInvalidUsername   = apperr.Validation("username must be 3-30 characters long and contain only letters, numbers and underscores")
	ErrProfileNotFound   = apperr.NotFound("Profile not found")

	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	nonUsernameChar = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

type ProfileService struct {
	client platform.Client
}

func NewProfileService(client platform.Client) *ProfileService {
	return &ProfileService{client: client}
}

// UsernameFromEmail derives a username base from the local part of email.
func UsernameFromEmail(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	base := nonUsernameChar.ReplaceAllString(local, "_")
	if len(base) < minUsernameLength {
		base += "_user"
	}
	if len(base) > maxUsernameLength-2 {
		base = base[:maxUsernameLength-2]
	}
	return base
}

func validUsername(u string) bool {
	return len(u) >= minUsernameLength && len(u) <= maxUsernameLength && usernamePattern.MatchString(u)
}

// EnsureUniqueUsername returns base, or base followed by the first free
// numeric suffix.
func (s *ProfileService) EnsureUniqueUsername(ctx context.Context, base string) (string, error) {
	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		taken, err := platform.Exists(ctx, s.client, models.TableProfiles, platform.Eq("username", candidate))
		if err != nil {
			return "", apperr.Internal("Failed to verify username availability", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrUsernameExhausted
}

// EnsureProfile fetches the profile for id, creating it with username when absent.
func (s *ProfileService) EnsureProfile(ctx context.Context, id uuid.UUID, username string) (*models.Profile, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	profile := &models.Profile{ID: id, Username: username}
	err = s.client.Insert(ctx, models.TableProfiles, profile)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, platform.ErrUniqueViolation) {
		return nil, apperr.Internal("Failed to create profile", err)
	}

	// Either a concurrent request created this profile, or the username
	// was claimed in between.
	if existing, err := s.find(ctx, id); err != nil || existing != nil {
		return existing, err
	}
	base := username
	if len(base) > maxUsernameLength-2 {
		base = base[:maxUsernameLength-2]
	}
	retry, err := s.EnsureUniqueUsername(ctx, base)
	if err != nil {
		return nil, err
	}
	profile = &models.Profile{ID: id, Username: retry}
	if err := s.client.Insert(ctx, models.TableProfiles, profile); err != nil {
		return nil, apperr.Internal("Failed to create profile", err)
	}
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProfileRequest) (*models.Profile, error) {
	if req.Username == nil {
		return nil, apperr.Validation("No fields provided for update")
	}
	username := strings.TrimSpace(*req.Username)
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Username == username {
		return current, nil
	}

	taken, err := platform.Exists(ctx, s.client, models.TableProfiles,
		platform.Eq("username", username), platform.Neq("id", id))
	if err != nil {
		return nil, apperr.Internal("Failed to verify username availability", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	_, err = s.client.Update(ctx, models.TableProfiles,
		[]platform.Filter{platform.Eq("id", id)},
		map[string]any{"username": username})
	if errors.Is(err, platform.ErrUniqueViolation) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update profile", err)
	}
	return s.Get(ctx, id)
}

func (s *ProfileService) find(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p, err := platform.FindOne[models.Profile](ctx, s.client, platform.Query{
		Table:   models.TableProfiles,
		Filters: []platform.Filter{platform.Eq("id", id)},
	})
	if err != nil {
		return nil, apperr.Internal("Failed to fetch profile", err)
	}
	return p, nil
}
