package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/platform"
)

func newGoTrueServer(t *testing.T, handler http.HandlerFunc) *platform.GoTrueAuth {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return platform.NewGoTrueAuth(srv.URL, "anon-key", "service-key", 5*time.Second)
}

func TestGoTrueIntrospectToken(t *testing.T) {
	userID := uuid.New()
	auth := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Errorf("apikey = %q", r.Header.Get("apikey"))
		}
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": userID.String(), "email": "u@example.com"})
	})

	p, err := auth.IntrospectToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("IntrospectToken: %v", err)
	}
	if p.ID != userID || p.Email != "u@example.com" {
		t.Errorf("principal = %+v", p)
	}

	if _, err := auth.IntrospectToken(context.Background(), "bad"); !errors.Is(err, platform.ErrInvalidToken) {
		t.Errorf("bad token err = %v, want ErrInvalidToken", err)
	}
}

func TestGoTrueSignUpSurfacesProviderMessage(t *testing.T) {
	auth := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["data"].(map[string]any)["username"] != "neo" {
			t.Errorf("metadata not forwarded: %v", body)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`))
	})

	_, err := auth.SignUp(context.Background(), "neo@example.com", "secret1", map[string]any{"username": "neo"})
	var authErr *platform.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthError", err)
	}
	if authErr.Message != "User already registered" {
		t.Errorf("message = %q", authErr.Message)
	}
}

func TestGoTrueSignUpAcceptsSessionOrUserShape(t *testing.T) {
	userID := uuid.New()
	for name, payload := range map[string]any{
		"user":    map[string]any{"id": userID.String(), "email": "x@example.com"},
		"session": map[string]any{"access_token": "t", "user": map[string]any{"id": userID.String(), "email": "x@example.com"}},
	} {
		t.Run(name, func(t *testing.T) {
			auth := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(payload)
			})
			p, err := auth.SignUp(context.Background(), "x@example.com", "secret1", nil)
			if err != nil {
				t.Fatalf("SignUp: %v", err)
			}
			if p.ID != userID {
				t.Errorf("id = %s", p.ID)
			}
		})
	}
}

func TestGoTrueSignInAndCreateUser(t *testing.T) {
	userID := uuid.New()
	auth := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			if r.URL.Query().Get("grant_type") != "password" {
				t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "jwt", "refresh_token": "r", "expires_in": 3600,
				"user": map[string]any{"id": userID.String(), "email": "x@example.com"},
			})
		case "/auth/v1/admin/users":
			if r.Header.Get("Authorization") != "Bearer service-key" {
				t.Errorf("admin call must use the service role key")
			}
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["email_confirm"] != true {
				t.Errorf("email_confirm = %v", body["email_confirm"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": userID.String(), "email": "x@example.com"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	s, err := auth.SignInWithPassword(context.Background(), "x@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if s.AccessToken != "jwt" || s.User.ID != userID || s.ExpiresIn != 3600 {
		t.Errorf("session = %+v", s)
	}

	p, err := auth.CreateUser(context.Background(), platform.CreateUserParams{
		Email: "x@example.com", Password: "secret1", EmailConfirm: true,
	})
	if err != nil || p.ID != userID {
		t.Fatalf("CreateUser = %+v, %v", p, err)
	}
}

func TestGoTrueServerErrorIsNotAnAuthError(t *testing.T) {
	auth := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := auth.SignInWithPassword(context.Background(), "x@example.com", "secret1")
	var authErr *platform.AuthError
	if err == nil || errors.As(err, &authErr) {
		t.Fatalf("err = %v, want transport-level error", err)
	}
}
