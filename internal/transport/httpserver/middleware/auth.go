package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"budget-tracker-go/internal/config"
	"budget-tracker-go/internal/identity"
	"budget-tracker-go/pkg/logger"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*identity.User, error)
}

type ProfileSaver interface {
	UpsertProfile(ctx context.Context, userID, fullName, email, avatarURL string) error
}

type SupabaseAuth struct {
	authenticator Authenticator
	profiles      ProfileSaver
	skipAuth      bool
	mockUser      User
	log           logger.Logger
}

type contextKey int

const (
	userKey contextKey = iota
	accessTokenKey
)

type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

func NewSupabaseAuth(cfg config.SupabaseConfig, authenticator Authenticator, profiles ProfileSaver, log logger.Logger) *SupabaseAuth {
	if log == nil {
		log = logger.NewNop()
	}
	return &SupabaseAuth{
		authenticator: authenticator,
		profiles:      profiles,
		skipAuth:      cfg.SkipAuth,
		mockUser: User{
			ID:    strings.TrimSpace(cfg.MockUserID),
			Email: strings.TrimSpace(cfg.MockUserEmail),
		},
		log: log,
	}
}

// Middleware resolves the caller from the bearer token and stores it on the
// request context. Handlers downstream read the owner id from there.
func (a *SupabaseAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			user := a.mockUser
			if user.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			a.saveProfile(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		resolved, err := a.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrNotConfigured) {
				a.log.InternalError("auth: identity provider not configured", err)
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
				return
			}
			if !errors.Is(err, identity.ErrUnauthenticated) {
				a.log.WithContext(r.Context()).InternalError("auth: authenticate failed", err)
			}
			unauthorized(w)
			return
		}

		user := User{
			ID:        resolved.ID,
			Email:     resolved.Email,
			Name:      resolved.FullName,
			AvatarURL: resolved.AvatarURL,
		}
		a.saveProfile(r.Context(), user)

		ctx := WithUser(r.Context(), user)
		ctx = context.WithValue(ctx, accessTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *SupabaseAuth) saveProfile(ctx context.Context, user User) {
	if a.profiles == nil {
		return
	}
	if err := a.profiles.UpsertProfile(ctx, user.ID, user.Name, user.Email, user.AvatarURL); err != nil {
		a.log.WithContext(ctx).InternalError("auth: upsert profile failed", err, "user_id", user.ID)
	}
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

// AccessTokenFromContext returns the bearer token the request was
// authenticated with. It is empty when auth is skipped.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey).(string)
	return token, ok && token != ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
