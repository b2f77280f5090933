package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portsrepo "github.com/finbooks/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger-core/internal/core/ports/services"
	"github.com/finbooks/ledger-core/internal/dto"
	"github.com/finbooks/ledger-core/internal/middleware"
)

var (
	ErrDuplicateCode = fmt.Errorf("%w: account code already in use", apperrors.ErrDuplicate)
	ErrInvalidParent = fmt.Errorf("%w: parent account does not resolve", apperrors.ErrValidation)
	ErrSelfParent    = fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
)

// AccountService owns the chart of accounts: uniqueness, type constraints and
// parent/child relationships.
type AccountService struct {
	accountRepo portsrepo.AccountRepository
	ledger      portsrepo.JournalReader // read-only, for the in-use guard on disable
	guard       *MutationGuard
}

// NewAccountService creates a new account registry service. guard serializes
// mutations with the other services on the same store; pass nil to let the
// service own a private one.
func NewAccountService(accountRepo portsrepo.AccountRepository, ledger portsrepo.JournalReader, guard *MutationGuard) portssvc.AccountSvcFacade {
	if guard == nil {
		guard = NewMutationGuard()
	}
	return &AccountService{
		accountRepo: accountRepo,
		ledger:      ledger,
		guard:       guard,
	}
}

// Ensure AccountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// CreateAccount registers a new account after checking code uniqueness, type
// validity and parent resolution. No other account is mutated.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s.guard.lock()
	defer s.guard.unlock()

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" {
		return nil, fmt.Errorf("%w: account code must not be blank", apperrors.ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: account name must not be blank", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check code uniqueness", slog.String("error", err.Error()), slog.String("code", code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parentID = *req.ParentAccountID
		if _, err := s.accountRepo.FindAccountByID(ctx, parentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidParent, parentID)
			}
			return nil, fmt.Errorf("failed to resolve parent account %s: %w", parentID, err)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            name,
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		// The repository re-checks code uniqueness under its write lock.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
		}
		logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("code", code))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts by their IDs.
func (s *AccountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts retrieves accounts in insertion order, filtered by type and
// parent when requested.
func (s *AccountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.ListAccountsFilter{
		ParentAccountID: params.ParentAccountID,
		IncludeInactive: params.IncludeInactive,
	}
	if params.AccountType != nil {
		accountType := domain.AccountType(*params.AccountType)
		if !accountType.IsValid() {
			return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, *params.AccountType)
		}
		filter.AccountType = &accountType
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, filter)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// UpdateAccount applies mutable changes: name, description and parent. A
// reparent is rejected before it could introduce a cycle.
func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s.guard.lock()
	defer s.guard.unlock()

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: account name must not be blank", apperrors.ErrValidation)
		}
		account.Name = name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.ParentAccountID != nil {
		newParentID := strings.TrimSpace(*req.ParentAccountID)
		if newParentID != account.ParentAccountID {
			if err := s.checkReparent(ctx, accountID, newParentID); err != nil {
				return nil, err
			}
			account.ParentAccountID = newParentID
			updated = true
		}
	}

	if !updated {
		logger.Debug("No fields provided for account update", slog.String("account_id", accountID))
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to save account update", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to save account update: %w", err)
	}

	logger.Info("Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

// checkReparent verifies the new parent exists and is not the account itself
// or one of its descendants.
func (s *AccountService) checkReparent(ctx context.Context, accountID, newParentID string) error {
	if newParentID == "" {
		return nil // Detaching to a root is always safe
	}
	if newParentID == accountID {
		return ErrSelfParent
	}

	parent, err := s.accountRepo.FindAccountByID(ctx, newParentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrInvalidParent, newParentID)
		}
		return fmt.Errorf("failed to resolve parent account %s: %w", newParentID, err)
	}

	// Walk from the candidate parent to its root. Meeting the account being
	// reparented means the candidate is a descendant.
	visited := map[string]struct{}{newParentID: {}}
	current := parent
	for current.ParentAccountID != "" {
		ancestorID := current.ParentAccountID
		if ancestorID == accountID {
			return fmt.Errorf("%w: %s is a descendant of %s", apperrors.ErrCycle, newParentID, accountID)
		}
		if _, seen := visited[ancestorID]; seen {
			return fmt.Errorf("%w: ancestor chain of %s revisits %s", apperrors.ErrCycle, newParentID, ancestorID)
		}
		visited[ancestorID] = struct{}{}

		current, err = s.accountRepo.FindAccountByID(ctx, ancestorID)
		if err != nil {
			return fmt.Errorf("failed to walk ancestor chain at %s: %w", ancestorID, err)
		}
	}
	return nil
}

// ResolveParentChain walks from the account's immediate parent to its root.
// The cycle check is defensive: creation and reparent already prevent cycles,
// so hitting one here is an integrity violation worth surfacing loudly.
func (s *AccountService) ResolveParentChain(ctx context.Context, accountID string) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	chain := []domain.Account{}
	visited := map[string]struct{}{accountID: {}}
	currentID := account.ParentAccountID
	for currentID != "" {
		if _, seen := visited[currentID]; seen {
			logger.Error("Cycle detected in account hierarchy", slog.String("account_id", accountID), slog.String("revisited", currentID))
			return nil, fmt.Errorf("%w: parent chain of %s revisits %s", apperrors.ErrCycle, accountID, currentID)
		}
		visited[currentID] = struct{}{}

		parent, err := s.accountRepo.FindAccountByID(ctx, currentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Error("Dangling parent reference in account hierarchy", slog.String("account_id", accountID), slog.String("parent_id", currentID))
				return nil, fmt.Errorf("%w: parent %s of account %s does not resolve", apperrors.ErrInternal, currentID, accountID)
			}
			return nil, fmt.Errorf("failed to walk parent chain at %s: %w", currentID, err)
		}
		chain = append(chain, *parent)
		currentID = parent.ParentAccountID
	}
	return chain, nil
}

// DeactivateAccount disables an account so it is excluded from future
// selection. Accounts referenced by any journal item, active or archived, stay
// enabled to preserve ledger integrity.
func (s *AccountService) DeactivateAccount(ctx context.Context, accountID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	s.guard.lock()
	defer s.guard.unlock()

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already disabled", apperrors.ErrValidation, accountID)
	}

	inUse, err := s.ledger.HasItemsForAccount(ctx, accountID)
	if err != nil {
		logger.Error("Failed to check journal references", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to check journal references for account %s: %w", accountID, err)
	}
	if inUse {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountInUse, accountID)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, time.Now().UTC()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to deactivate account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	logger.Info("Account deactivated successfully", slog.String("account_id", accountID))
	return nil
}
