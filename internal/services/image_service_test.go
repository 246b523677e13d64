package services_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/testutil"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Upload(_ context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	if _, ok := m.objects[key]; !ok {
		return "", time.Time{}, errors.New("no such key")
	}
	return "https://storage.test/" + key + "?sig=1", time.Now().Add(time.Minute), nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageUploadAndURL(t *testing.T) {
	b := testutil.NewBackend(t)
	store := newMemoryStore()
	creations := newCreationService(b, nil)
	svc := services.NewImageService(store, creations, 1024)
	ctx := context.Background()
	alice, _ := b.SignUp(t, "alice@example.com", "alice")
	style := b.Style(t, "casual", "Casual")

	up, err := svc.Upload(ctx, alice, int64(len(pngHeader)), bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	pattern := regexp.MustCompile(`^users/` + alice.String() + `/[0-9a-f-]{36}\.png$`)
	if !pattern.MatchString(up.ImagePath) {
		t.Errorf("image_path = %q", up.ImagePath)
	}
	if !bytes.Equal(store.objects[up.ImagePath], pngHeader) {
		t.Error("stored bytes differ from upload")
	}
	if store.types[up.ImagePath] != "image/png" {
		t.Errorf("content type = %q", store.types[up.ImagePath])
	}

	c := b.Creation(t, alice, style.ID, "Look")
	if err := b.DB.Model(&c).Update("image_path", "/"+up.ImagePath).Error; err != nil {
		t.Fatalf("set image_path: %v", err)
	}
	got, err := svc.URL(ctx, alice, c.ID)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if got.URL != "https://storage.test/"+up.ImagePath+"?sig=1" {
		t.Errorf("url = %q", got.URL)
	}

	_, err = svc.URL(ctx, uuid.New(), c.ID)
	wantErr(t, err, apperr.KindNotFound, "")
}

func TestImageUploadRejects(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := services.NewImageService(newMemoryStore(), newCreationService(b, nil), 8)
	user := uuid.New()

	_, err := svc.Upload(context.Background(), user, 100, bytes.NewReader(make([]byte, 100)))
	wantErr(t, err, apperr.KindValidation, "file must be at most 8 bytes")

	_, err = svc.Upload(context.Background(), user, 5, bytes.NewReader([]byte("hello")))
	wantErr(t, err, apperr.KindValidation, "file must be a png, jpeg or webp image")
}

func TestImageStorageDisabled(t *testing.T) {
	b := testutil.NewBackend(t)
	svc := services.NewImageService(nil, newCreationService(b, nil), 0)

	_, err := svc.Upload(context.Background(), uuid.New(), 10, bytes.NewReader(pngHeader))
	wantErr(t, err, apperr.KindUnavailable, "Image storage is not configured")
	_, err = svc.URL(context.Background(), uuid.New(), uuid.New())
	wantErr(t, err, apperr.KindUnavailable, "Image storage is not configured")
}
