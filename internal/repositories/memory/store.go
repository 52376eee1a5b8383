// Package memory provides an in-memory implementation of the repository
// ports. It backs unit and concurrency tests and the local development mode;
// it honours the same atomicity contract as the postgres repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
)

// Store is a thread-safe in-memory implementation of the account, transfer
// and connection repositories. Transfers take the per-account mutexes of both
// parties in ascending account-id order, mirroring the row-lock order of the
// postgres implementation, so the sufficiency check and the two balance
// writes form one serializable unit and opposite-direction transfers cannot
// deadlock.
type Store struct {
	mu          sync.RWMutex
	accounts    map[string]domain.Account // keyed by account ID
	emailIndex  map[string]string         // lowercased email -> account ID
	transfers   []domain.Transfer
	connections map[string]domain.Connection // keyed by canonical pair
	nextID      int64

	muMap map[string]*sync.Mutex // per-account transfer locks
	mapMu sync.Mutex             // protects muMap itself
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]domain.Account),
		emailIndex:  make(map[string]string),
		connections: make(map[string]domain.Connection),
		muMap:       make(map[string]*sync.Mutex),
	}
}

var (
	_ portsrepo.AccountRepository    = (*Store)(nil)
	_ portsrepo.TransferRepository   = (*Store)(nil)
	_ portsrepo.ConnectionRepository = (*Store)(nil)
)

func (s *Store) accountLock(accountID string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, exists := s.muMap[accountID]; !exists {
		s.muMap[accountID] = &sync.Mutex{}
	}
	return s.muMap[accountID]
}

// pairKey canonicalises an unordered account pair so edge uniqueness holds
// regardless of which side initiated.
func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// --- AccountRepository ---

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := s.emailIndex[email]; exists {
		return fmt.Errorf("%w: email %s", apperrors.ErrDuplicate, email)
	}

	s.accounts[account.AccountID] = account
	s.emailIndex[email] = account.AccountID
	return nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &account, nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	account := s.accounts[accountID]
	return &account, nil
}

// UpdateAccount persists profile fields only. Balance and email stay as
// stored: the transfer path owns the former and the latter is immutable.
func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}

	stored.DisplayName = account.DisplayName
	stored.PasswordHash = account.PasswordHash
	stored.LastUpdatedAt = account.LastUpdatedAt
	s.accounts[account.AccountID] = stored
	return nil
}

// --- TransferRepository ---

func (s *Store) SaveTransfer(ctx context.Context, transfer domain.Transfer) (*domain.Transfer, error) {
	senderLock := s.accountLock(transfer.SenderID)
	receiverLock := s.accountLock(transfer.ReceiverID)

	// Lock in ascending id order to avoid deadlocks.
	if transfer.SenderID < transfer.ReceiverID {
		senderLock.Lock()
		receiverLock.Lock()
	} else {
		receiverLock.Lock()
		senderLock.Lock()
	}
	defer senderLock.Unlock()
	defer receiverLock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.accounts[transfer.SenderID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, transfer.SenderID)
	}
	receiver, ok := s.accounts[transfer.ReceiverID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, transfer.ReceiverID)
	}

	if sender.Balance.LessThan(transfer.Amount) {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientFunds, transfer.SenderID)
	}

	sender.Balance = sender.Balance.Sub(transfer.Amount)
	receiver.Balance = receiver.Balance.Add(transfer.Amount)
	sender.LastUpdatedAt = transfer.Timestamp
	receiver.LastUpdatedAt = transfer.Timestamp
	s.accounts[sender.AccountID] = sender
	s.accounts[receiver.AccountID] = receiver

	s.nextID++
	transfer.TransferID = s.nextID
	s.transfers = append(s.transfers, transfer)

	return &transfer, nil
}

func (s *Store) ListTransfersByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Transfer
	for _, t := range s.transfers {
		if t.SenderID == accountID || t.ReceiverID == accountID {
			result = append(result, t)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].TransferID > result[j].TransferID
	})

	return result, nil
}

// --- ConnectionRepository ---

func (s *Store) SaveConnection(ctx context.Context, conn domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(conn.InitiatorID, conn.FriendID)
	if _, exists := s.connections[key]; exists {
		return apperrors.ErrDuplicate
	}
	s.connections[key] = conn
	return nil
}

func (s *Store) ConnectionExists(ctx context.Context, accountA, accountB string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.connections[pairKey(accountA, accountB)]
	return exists, nil
}

func (s *Store) ListConnectionsOf(ctx context.Context, accountID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Account
	for _, conn := range s.connections {
		var otherID string
		switch accountID {
		case conn.InitiatorID:
			otherID = conn.FriendID
		case conn.FriendID:
			otherID = conn.InitiatorID
		default:
			continue
		}
		if account, ok := s.accounts[otherID]; ok {
			result = append(result, account)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// TotalBalance sums every account balance. Exposed for invariant checks in
// tests: the sum must be unchanged by any sequence of transfers.
func (s *Store) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, a := range s.accounts {
		total = total.Add(a.Balance)
	}
	return total
}
