package handler

import (
	"errors"
	"net/http"
	"strings"

	"budget-tracker-go/internal/domain/validation"
	"budget-tracker-go/internal/identity"
	"budget-tracker-go/internal/transport/httpserver/middleware"
	"github.com/badoux/checkmail"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type signupResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    authUserResponse `json:"user"`
}

type sessionResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	ExpiresIn    int              `json:"expires_in"`
	ExpiresAt    int64            `json:"expires_at,omitempty"`
	User         authUserResponse `json:"user"`
}

type authMeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithContext(r.Context())

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := h.validate.Validate(req); err != nil {
		h.writeRequestError(w, "auth.signup", err)
		return
	}
	if err := checkmail.ValidateFormat(req.Email); err != nil {
		writeValidationError(w, &validation.Error{
			Message: "email must be a valid email address",
			Fields:  map[string]string{"email": "must be a valid email address"},
		})
		return
	}

	user, err := h.Identity.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		var apiErr *identity.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			log.BusinessError("auth.signup: provider rejected sign up", err)
			writeError(w, http.StatusBadRequest, "signup_failed", apiErr.Message)
			return
		}
		log.InternalError("auth.signup: sign up failed", err)
		writeInternalError(w)
		return
	}

	if err := h.Users.UpsertProfile(r.Context(), user.ID, req.FullName, req.Email, ""); err != nil {
		log.InternalError("auth.signup: create profile failed", err, "user_id", user.ID)
	}

	log.Info("auth.signup: user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, signupResponse{
		Success: true,
		Message: "Signup successful. Check your email for verification.",
		User:    authUserResponse{ID: user.ID, Email: firstNonEmpty(user.Email, req.Email)},
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithContext(r.Context())

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Validate(req); err != nil {
		h.writeRequestError(w, "auth.login", err)
		return
	}

	session, err := h.Identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			log.BusinessError("auth.login: invalid credentials", err)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		log.InternalError("auth.login: sign in failed", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.log.WithContext(r.Context())

	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}
	if err := h.validate.Validate(req); err != nil {
		h.writeRequestError(w, "auth.refresh", err)
		return
	}

	session, err := h.Identity.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			log.BusinessError("auth.refresh: refresh token rejected", err)
			writeUnauthorized(w)
			return
		}
		log.InternalError("auth.refresh: refresh failed", err)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	if token, ok := middleware.AccessTokenFromContext(r.Context()); ok {
		if err := h.Identity.SignOut(r.Context(), token); err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				writeUnauthorized(w)
				return
			}
			h.log.WithContext(r.Context()).InternalError("auth.logout: sign out failed", err, "user_id", user.ID)
			writeInternalError(w)
			return
		}
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Logged out successfully"})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	writeJSON(w, http.StatusOK, authMeResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	})
}

func toSessionResponse(session *identity.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		ExpiresAt:    session.ExpiresAt,
		User:         authUserResponse{ID: session.User.ID, Email: session.User.Email},
	}
}

// writeRequestError answers a failed DTO validation with 400.
func (h *Handlers) writeRequestError(w http.ResponseWriter, op string, err error) {
	if verr, ok := validation.As(err); ok {
		writeValidationError(w, verr)
		return
	}
	h.log.InternalError(op+": validate request failed", err)
	writeInternalError(w)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
