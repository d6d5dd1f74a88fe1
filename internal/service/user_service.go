package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// UserService keeps local user records in step with the external identity
// provider. It never issues credentials; identity lives upstream.
type UserService struct {
	userRepo repository.UserRepository
}

type SyncUserInput struct {
	ExternalID string
	Name       string
	Email      string
	Image      string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// SyncUser upserts the local record for the identity provider's subject and
// returns the canonical row. Calling it again with fresh profile data
// refreshes name, email and image.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*models.User, error) {
	if strings.TrimSpace(in.ExternalID) == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, models.NewValidationError("Email is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Email
	}

	user := &models.User{
		ExternalID: in.ExternalID,
		Name:       name,
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Image:      in.Image,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	return s.userRepo.GetByExternalID(ctx, in.ExternalID)
}

// GetByExternalID resolves the identity provider's subject to the local user.
func (s *UserService) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.userRepo.GetByExternalID(ctx, externalID)
}
