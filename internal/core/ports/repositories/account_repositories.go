package repositories

import (
	"context"
	"time"

	"github.com/finbooks/ledger-core/internal/core/domain"
)

// ListAccountsFilter narrows ListAccounts results. Nil fields match everything.
type ListAccountsFilter struct {
	AccountType     *domain.AccountType
	ParentAccountID *string // Empty string matches root accounts
	IncludeInactive bool
}

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing IDs
	// are simply absent from the returned map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts in insertion order, optionally filtered.
	ListAccounts(ctx context.Context, filter ListAccountsFilter) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate if the
	// code is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. The account is retained
	// for historical lookups.
	DeactivateAccount(ctx context.Context, accountID string, now time.Time) error
}

// AccountRepository combines read and write access to the chart of accounts.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
