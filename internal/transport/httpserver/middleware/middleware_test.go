package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budget-tracker-go/internal/config"
	"budget-tracker-go/internal/identity"
	"budget-tracker-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	users map[string]identity.User
	err   error
}

func (f fakeAuthenticator) Authenticate(ctx context.Context, token string) (*identity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, identity.ErrUnauthenticated
	}
	return &user, nil
}

type recordingProfiles struct {
	saved []string
}

func (p *recordingProfiles) UpsertProfile(ctx context.Context, userID, fullName, email, avatarURL string) error {
	p.saved = append(p.saved, userID+"|"+fullName+"|"+email)
	return nil
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	token, _ := AccessTokenFromContext(r.Context())
	_, _ = w.Write([]byte(user.ID + "|" + token))
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	profiles := &recordingProfiles{}
	auth := NewSupabaseAuth(config.SupabaseConfig{}, fakeAuthenticator{users: map[string]identity.User{
		"good": {ID: "user-1", Email: "jane@example.com", FullName: "Jane"},
	}}, profiles, logger.NewNop())
	h := auth.Middleware(http.HandlerFunc(echoUser))

	rec := serve(h, "Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|good", rec.Body.String())
	assert.Equal(t, []string{"user-1|Jane|jane@example.com"}, profiles.saved)

	for _, header := range []string{"", "Bearer", "Basic good", "Bearer bad"} {
		rec := serve(h, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), `"invalid_token"`)
	}
}

func TestAuthMiddlewareProviderFailure(t *testing.T) {
	h := NewSupabaseAuth(config.SupabaseConfig{}, fakeAuthenticator{err: errors.New("dial tcp: refused")}, nil, nil).
		Middleware(http.HandlerFunc(echoUser))
	assert.Equal(t, http.StatusUnauthorized, serve(h, "Bearer good").Code)

	h = NewSupabaseAuth(config.SupabaseConfig{}, fakeAuthenticator{err: identity.ErrNotConfigured}, nil, nil).
		Middleware(http.HandlerFunc(echoUser))
	assert.Equal(t, http.StatusInternalServerError, serve(h, "Bearer good").Code)
}

func TestAuthMiddlewareSkipAuth(t *testing.T) {
	cfg := config.SupabaseConfig{SkipAuth: true, MockUserID: "mock-user"}
	h := NewSupabaseAuth(cfg, fakeAuthenticator{}, nil, nil).Middleware(http.HandlerFunc(echoUser))

	rec := serve(h, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mock-user|", rec.Body.String())

	h = NewSupabaseAuth(config.SupabaseConfig{SkipAuth: true}, fakeAuthenticator{}, nil, nil).Middleware(http.HandlerFunc(echoUser))
	assert.Equal(t, http.StatusInternalServerError, serve(h, "").Code)
}

func TestKeyedRateLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(1, 2)
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:2222").Code)

	limited := call("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1111").Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:4444").Code)

	now = now.Add(2 * idleLimiterTTL)
	limiter.Reserve("10.0.0.3")
	assert.Len(t, limiter.limiters, 1)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	h := NewCORS([]string{" http://localhost:3000 ", ""})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/budgets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/budgets", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
