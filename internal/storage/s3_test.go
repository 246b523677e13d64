package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
)

func TestPresignGetPathStyle(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.StorageConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "wardrobe",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
		PresignTTL:      5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}

	before := time.Now()
	raw, expires, err := store.PresignGet(context.Background(), "users/u1/look.png")
	if err != nil {
		t.Fatalf("PresignGet: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if u.Host != "localhost:9000" {
		t.Errorf("host = %q", u.Host)
	}
	if !strings.HasPrefix(u.Path, "/wardrobe/users/u1/look.png") {
		t.Errorf("path = %q, want bucket-prefixed key", u.Path)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "300" {
		t.Errorf("X-Amz-Expires = %q, want 300", got)
	}
	if expires.Before(before.Add(5 * time.Minute)) {
		t.Errorf("expires_at %v is earlier than the ttl", expires)
	}
}
