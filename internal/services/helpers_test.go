package services_test

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/apperr"
)

// wantErr fails unless err is an *apperr.Error of kind with message msg.
// An empty msg only checks the kind.
func wantErr(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want kind %d %q", kind, msg)
	}
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("err = %v (%T), want *apperr.Error", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("kind = %d (%q), want %d", e.Kind, e.Message, kind)
	}
	if msg != "" && e.Message != msg {
		t.Fatalf("message = %q, want %q", e.Message, msg)
	}
}

func ptr[T any](v T) *T { return &v }
