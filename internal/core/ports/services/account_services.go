package services

import (
	"context"

	"github.com/paymybuddy/backend/internal/core/domain"
	"github.com/paymybuddy/backend/internal/dto"
)

// AccountSvcFacade is the account directory and identity collaborator:
// registration, credential checks for login, lookups and profile maintenance.
type AccountSvcFacade interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error)
	VerifyCredentials(ctx context.Context, email, password string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) (*domain.Account, error)
	ChangePassword(ctx context.Context, accountID string, req dto.ChangePasswordRequest) error
}
