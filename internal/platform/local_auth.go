package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/models"
)

// LocalAuth keeps accounts in the auth_users table and issues HS256 access
// tokens. It stands in for GoTrue in development and tests.
type LocalAuth struct {
	db     *gorm.DB
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewLocalAuth(db *gorm.DB, secret string, expiry time.Duration) *LocalAuth {
	return &LocalAuth{
		db:     db,
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

func (a *LocalAuth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Principal, error) {
	user, err := a.createUser(ctx, email, password, metadata, false)
	if err != nil {
		return nil, err
	}
	return &Principal{ID: user.ID, Email: user.Email}, nil
}

func (a *LocalAuth) CreateUser(ctx context.Context, params CreateUserParams) (*Principal, error) {
	user, err := a.createUser(ctx, params.Email, params.Password, params.UserMetadata, params.EmailConfirm)
	if err != nil {
		return nil, err
	}
	return &Principal{ID: user.ID, Email: user.Email}, nil
}

func (a *LocalAuth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var user models.AuthUser
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &AuthError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &AuthError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	}

	token, err := a.issueToken(&user)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		ExpiresIn:   int(a.expiry.Seconds()),
		User:        Principal{ID: user.ID, Email: user.Email},
	}, nil
}

func (a *LocalAuth) IntrospectToken(ctx context.Context, tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return nil, ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user models.AuthUser
	err = a.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return &Principal{ID: user.ID, Email: user.Email}, nil
}

func (a *LocalAuth) createUser(ctx context.Context, email, password string, metadata map[string]any, confirmed bool) (*models.AuthUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, &AuthError{Status: http.StatusBadRequest, Message: "Email and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	meta := datatypes.JSON("{}")
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		meta = raw
	}

	user := models.AuthUser{
		Email:        email,
		PasswordHash: string(hash),
		UserMetadata: meta,
	}
	if confirmed {
		now := a.now()
		user.EmailConfirmedAt = &now
	}

	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(translate(err), ErrUniqueViolation) {
			return nil, &AuthError{Status: http.StatusUnprocessableEntity, Message: "User already registered"}
		}
		return nil, err
	}
	return &user, nil
}

func (a *LocalAuth) issueToken(user *models.AuthUser) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(a.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
