package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/storage"
)

var (
	ErrStorageDisabled = apperr.Unavailable("Image storage is not configured")

	imageTypes = map[string]string{
		"image/png":  "png",
		"image/jpeg": "jpg",
		"image/webp": "webp",
	}
)

// ImageService uploads creation images and hands out short-lived read URLs.
// A nil store disables both operations.
type ImageService struct {
	store     storage.ObjectStore
	creations *CreationService
	maxBytes  int64
}

func NewImageService(store storage.ObjectStore, creations *CreationService, maxBytes int64) *ImageService {
	return &ImageService{store: store, creations: creations, maxBytes: maxBytes}
}

// Upload stores body under users/<user_id>/ and returns the object key to
// use as a creation's image_path. The type is sniffed from the content.
func (s *ImageService) Upload(ctx context.Context, userID uuid.UUID, size int64, body io.Reader) (*dto.ImageUploadResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if size <= 0 {
		return nil, apperr.Validation("file is required")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("file must be at most %d bytes", s.maxBytes))
	}

	br := bufio.NewReaderSize(body, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, apperr.Internal("Failed to read upload", err)
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, apperr.Validation("file must be a png, jpeg or webp image")
	}

	key := fmt.Sprintf("users/%s/%s.%s", userID, uuid.NewString(), ext)
	if err := s.store.Upload(ctx, key, contentType, br); err != nil {
		return nil, apperr.Internal("Failed to upload image", err)
	}
	return &dto.ImageUploadResponse{ImagePath: key}, nil
}

// URL presigns a GET for the image of one of the caller's creations.
func (s *ImageService) URL(ctx context.Context, userID, creationID uuid.UUID) (*dto.ImageURLResponse, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	c, err := s.creations.Get(ctx, userID, creationID)
	if err != nil {
		return nil, err
	}
	url, expiresAt, err := s.store.PresignGet(ctx, strings.TrimPrefix(c.ImagePath, "/"))
	if err != nil {
		return nil, apperr.Internal("Failed to sign image URL", err)
	}
	return &dto.ImageURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}
