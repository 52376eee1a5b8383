package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
	"github.com/paymybuddy/backend/internal/middleware"
)

var (
	ErrSelfConnection   = errors.New("cannot add yourself as a connection")
	ErrAlreadyConnected = errors.New("already connected with this account")
)

// connectionService maintains the acquaintance graph. The relation is
// symmetric: the duplicate check consults both directions even though the
// stored edge records who initiated it.
type connectionService struct {
	accountRepo    portsrepo.AccountRepository
	connectionRepo portsrepo.ConnectionRepository
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(connectionRepo portsrepo.ConnectionRepository, accountRepo portsrepo.AccountRepository) portssvc.ConnectionSvcFacade {
	return &connectionService{
		accountRepo:    accountRepo,
		connectionRepo: connectionRepo,
	}
}

var _ portssvc.ConnectionSvcFacade = (*connectionService)(nil)

// AddConnection creates an edge between the owner and the friend account.
func (s *connectionService) AddConnection(ctx context.Context, ownerEmail, friendEmail string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	ownerEmail = normalizeEmail(ownerEmail)
	friendEmail = normalizeEmail(friendEmail)

	if ownerEmail == friendEmail {
		logger.Warn("Self connection attempt")
		return ErrSelfConnection
	}

	owner, err := s.accountRepo.FindAccountByEmail(ctx, ownerEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, ownerEmail)
		}
		logger.Error("Failed to resolve owner account", slog.String("error", err.Error()))
		return fmt.Errorf("failed to resolve owner account: %w", err)
	}

	friend, err := s.accountRepo.FindAccountByEmail(ctx, friendEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, friendEmail)
		}
		logger.Error("Failed to resolve friend account", slog.String("error", err.Error()))
		return fmt.Errorf("failed to resolve friend account: %w", err)
	}

	// Both directions count: bob adding alice after alice added bob is a duplicate.
	exists, err := s.connectionRepo.ConnectionExists(ctx, owner.AccountID, friend.AccountID)
	if err != nil {
		logger.Error("Failed to check existing connection", slog.String("error", err.Error()))
		return fmt.Errorf("failed to check existing connection: %w", err)
	}
	if exists {
		return ErrAlreadyConnected
	}

	conn := domain.Connection{
		InitiatorID: owner.AccountID,
		FriendID:    friend.AccountID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.connectionRepo.SaveConnection(ctx, conn); err != nil {
		// The canonical unique index catches the race between check and insert.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return ErrAlreadyConnected
		}
		logger.Error("Failed to save connection", slog.String("error", err.Error()))
		return fmt.Errorf("failed to save connection: %w", err)
	}

	logger.Info("Connection added", slog.String("owner_id", owner.AccountID), slog.String("friend_id", friend.AccountID))
	return nil
}

// ConnectionsOf returns the accounts connected to the given account. Display
// only; the transfer engine never consults this.
func (s *connectionService) ConnectionsOf(ctx context.Context, email string) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to resolve account for connections", slog.String("error", err.Error()))
		}
		return nil, err
	}

	connections, err := s.connectionRepo.ListConnectionsOf(ctx, account.AccountID)
	if err != nil {
		logger.Error("Failed to list connections", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to retrieve connections: %w", err)
	}

	if connections == nil {
		return []domain.Account{}, nil
	}

	return connections, nil
}
