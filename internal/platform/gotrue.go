package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GoTrueAuth talks to a Supabase GoTrue server over HTTP.
type GoTrueAuth struct {
	baseURL        string
	apiKey         string
	serviceRoleKey string
	client         *http.Client
}

func NewGoTrueAuth(baseURL, apiKey, serviceRoleKey string, timeout time.Duration) *GoTrueAuth {
	return &GoTrueAuth{
		baseURL:        strings.TrimRight(baseURL, "/") + "/auth/v1",
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		client:         &http.Client{Timeout: timeout},
	}
}

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *gotrueUser `json:"user"`
}

// signup answers with a session when autoconfirm is on and with a bare user otherwise.
type gotrueSignupResponse struct {
	gotrueUser
	User *gotrueUser `json:"user"`
}

type gotrueError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (g *GoTrueAuth) IntrospectToken(ctx context.Context, token string) (*Principal, error) {
	var u gotrueUser
	if err := g.do(ctx, http.MethodGet, "/user", token, g.apiKey, nil, &u); err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u.principal()
}

func (g *GoTrueAuth) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Principal, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}
	var resp gotrueSignupResponse
	if err := g.do(ctx, http.MethodPost, "/signup", g.apiKey, g.apiKey, body, &resp); err != nil {
		return nil, err
	}
	if resp.User != nil {
		return resp.User.principal()
	}
	return resp.gotrueUser.principal()
}

func (g *GoTrueAuth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	var resp gotrueSession
	if err := g.do(ctx, http.MethodPost, "/token?grant_type=password", g.apiKey, g.apiKey, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, errors.New("gotrue: session without token or user")
	}
	p, err := resp.User.principal()
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         *p,
	}, nil
}

func (g *GoTrueAuth) CreateUser(ctx context.Context, params CreateUserParams) (*Principal, error) {
	if g.serviceRoleKey == "" {
		return nil, errors.New("gotrue: service role key not configured")
	}
	body := map[string]any{
		"email":         params.Email,
		"password":      params.Password,
		"email_confirm": params.EmailConfirm,
	}
	if len(params.UserMetadata) > 0 {
		body["user_metadata"] = params.UserMetadata
	}
	var u gotrueUser
	if err := g.do(ctx, http.MethodPost, "/admin/users", g.serviceRoleKey, g.serviceRoleKey, body, &u); err != nil {
		return nil, err
	}
	return u.principal()
}

func (g *GoTrueAuth) do(ctx context.Context, method, path, bearer, apiKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var ge gotrueError
		_ = json.Unmarshal(raw, &ge)
		msg := ge.text()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &AuthError{Status: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("gotrue %s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gotrue: decode response: %w", err)
	}
	return nil
}

func (u gotrueUser) principal() (*Principal, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("gotrue: response without a valid user id")
	}
	return &Principal{ID: id, Email: u.Email}, nil
}
