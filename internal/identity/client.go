// Package identity talks to Supabase Auth (GoTrue). All owner ids in the
// service come from here.
package identity

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

	"budget-tracker-go/internal/config"
)

const defaultTimeout = 5 * time.Second

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfigured      = errors.New("identity provider not configured")
)

// APIError is a non-auth failure reported by the provider, e.g. a sign-up
// for an already registered email.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider: %d %s", e.Status, e.Message)
}

type User struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
}

type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	ExpiresAt    int64
	User         User
}

type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	verifier *TokenVerifier
}

func NewClient(cfg config.SupabaseConfig) *Client {
	timeout := cfg.AuthTimeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.PublishableKey,
		http:    &http.Client{Timeout: timeout},
	}
	if cfg.JWTSecret != "" {
		client.verifier = NewTokenVerifier(cfg.JWTSecret)
	}
	return client
}

type userPayload struct {
	ID           string         `json:"id"`
	Sub          string         `json:"sub"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type sessionPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	User         *userPayload `json:"user"`
}

type errorPayload struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SignUp registers a new account. The provider may hold the session back
// until the email is confirmed, so only the user is returned.
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if fullName != "" {
		body["data"] = map[string]string{"full_name": fullName}
	}

	var payload struct {
		userPayload
		User *userPayload `json:"user"`
	}
	status, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("sign up: unexpected status %d", status)
	}

	source := payload.userPayload
	if payload.User != nil {
		source = *payload.User
	}
	user := source.toUser()
	if user.ID == "" {
		return nil, errors.New("sign up: provider returned no user id")
	}
	return &user, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	session, err := c.token(ctx, "password", body)
	if errors.Is(err, ErrUnauthenticated) {
		return nil, ErrInvalidCredentials
	}
	return session, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return c.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return ErrUnauthenticated
	}
	return err
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var payload userPayload
	if _, err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	user := payload.toUser()
	if user.ID == "" {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}

// Authenticate resolves an access token to its user, locally when a JWT
// secret is configured and through the provider otherwise.
func (c *Client) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	if c.verifier != nil {
		return c.verifier.Verify(accessToken)
	}
	return c.GetUser(ctx, accessToken)
}

func (c *Client) token(ctx context.Context, grantType string, body any) (*Session, error) {
	var payload sessionPayload
	if _, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type="+grantType, "", body, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if payload.AccessToken == "" {
		return nil, ErrUnauthenticated
	}

	session := &Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		TokenType:    payload.TokenType,
		ExpiresIn:    payload.ExpiresIn,
		ExpiresAt:    payload.ExpiresAt,
	}
	if payload.User != nil {
		session.User = payload.User.toUser()
	}
	return session, nil
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, body, out any) (int, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return 0, ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorPayload
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
		return resp.StatusCode, &APIError{
			Status:  resp.StatusCode,
			Message: firstNonEmpty(payload.Msg, payload.ErrorDescription, payload.Message, payload.Error, http.StatusText(resp.StatusCode)),
		}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (p userPayload) toUser() User {
	return User{
		ID:        firstNonEmpty(p.ID, p.Sub),
		Email:     p.Email,
		FullName:  firstNonEmpty(stringFromMap(p.UserMetadata, "full_name"), stringFromMap(p.UserMetadata, "name")),
		AvatarURL: stringFromMap(p.UserMetadata, "avatar_url"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func stringFromMap(values map[string]any, key string) string {
	if values == nil {
		return ""
	}
	parsed, _ := values[key].(string)
	return parsed
}
