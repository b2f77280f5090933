package services

import (
	"context"

	"github.com/finbooks/ledger-core/internal/core/domain"
	"github.com/finbooks/ledger-core/internal/dto"
)

// AccountReaderSvc defines read operations on the account registry.
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts in insertion order, optionally filtered
	// by type and parent.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)

	// ResolveParentChain walks from the account's immediate parent to its root.
	ResolveParentChain(ctx context.Context, accountID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations on the account registry.
type AccountWriterSvc interface {
	// CreateAccount registers a new account.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)

	// UpdateAccount updates an account's mutable details (name, description,
	// parent). Code and type are immutable.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error)

	// DeactivateAccount disables an account that no journal item references.
	DeactivateAccount(ctx context.Context, accountID string) error
}

// AccountSvcFacade combines all account registry service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
