package user

import (
	"context"
	"strings"

	"budget-tracker-go/internal/domain/validation"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertProfile writes the non-empty fields; empty ones keep their stored value.
func (s *Service) UpsertProfile(ctx context.Context, userID, fullName, email, avatarURL string) error {
	if userID == "" {
		return validation.NewFieldError("user_id", "is required")
	}

	profile := Profile{UserID: userID}
	if name := strings.TrimSpace(fullName); name != "" {
		profile.FullName = &name
	}
	if email != "" {
		profile.Email = &email
	}
	if avatarURL != "" {
		profile.AvatarURL = &avatarURL
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}
