package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portsrepo "github.com/finbooks/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger-core/internal/core/ports/services"
	"github.com/finbooks/ledger-core/internal/middleware"
)

// LedgerService answers balance queries derived from the account registry and
// the committed ledger. Balances follow the uniform debit-minus-credit
// convention, so the trial balance nets to zero by construction.
type LedgerService struct {
	accountRepo portsrepo.AccountReader
	journalRepo portsrepo.BalanceReader
}

// NewLedgerService creates a new ledger query service.
func NewLedgerService(accountRepo portsrepo.AccountReader, journalRepo portsrepo.BalanceReader) portssvc.LedgerQuerySvc {
	return &LedgerService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
}

// Ensure LedgerService implements the portssvc.LedgerQuerySvc interface
var _ portssvc.LedgerQuerySvc = (*LedgerService)(nil)

// AccountBalance returns sum(debit - credit) over the account's committed
// items, optionally bounded by asOf (inclusive). Disabled accounts remain
// queryable for historical lookups.
func (s *LedgerService) AccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.journalRepo.NetAmountByAccount(ctx, accountID, asOf)
	if err != nil {
		logger.Error("Failed to compute account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to compute balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

// RollupBalance returns the account's own balance plus the balances of every
// descendant, gathered depth first over the registry forest. All net amounts
// come from a single consistent ledger read, so the result is independent of
// traversal order.
func (s *LedgerService) RollupBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, portsrepo.ListAccountsFilter{IncludeInactive: true})
	if err != nil {
		logger.Error("Failed to list accounts for rollup", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to list accounts for rollup: %w", err)
	}

	children := make(map[string][]string, len(accounts))
	for _, acc := range accounts {
		if acc.ParentAccountID != "" {
			children[acc.ParentAccountID] = append(children[acc.ParentAccountID], acc.AccountID)
		}
	}

	subtree := []string{}
	visited := map[string]bool{}
	stack := []string{accountID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			logger.Error("Cycle detected in account hierarchy during rollup", slog.String("account_id", current))
			return decimal.Zero, fmt.Errorf("account hierarchy contains a cycle at %s: %w", current, apperrors.ErrCycle)
		}
		visited[current] = true
		subtree = append(subtree, current)
		stack = append(stack, children[current]...)
	}

	nets, err := s.journalRepo.NetAmountsByAccounts(ctx, subtree, asOf)
	if err != nil {
		logger.Error("Failed to compute rollup balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to compute rollup for account %s: %w", accountID, err)
	}

	total := decimal.Zero
	for _, id := range subtree {
		total = total.Add(nets[id])
	}
	return total, nil
}

// TrialBalance returns one row per registered account, including accounts with
// zero balance. Net debit balances fill the Debit column, net credit balances
// the Credit column; the two column totals are equal for any committed ledger.
func (s *LedgerService) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.accountRepo.ListAccounts(ctx, portsrepo.ListAccountsFilter{IncludeInactive: true})
	if err != nil {
		logger.Error("Failed to list accounts for trial balance", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts for trial balance: %w", err)
	}

	nets, err := s.journalRepo.NetAmountsByAccounts(ctx, nil, asOf)
	if err != nil {
		logger.Error("Failed to compute trial balance", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to compute trial balance: %w", err)
	}

	rows := make([]domain.TrialBalanceRow, len(accounts))
	for i, acc := range accounts {
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			AccountCode: acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if net, ok := nets[acc.AccountID]; ok {
			if net.IsNegative() {
				row.Credit = net.Neg()
			} else {
				row.Debit = net
			}
		}
		rows[i] = row
	}

	logger.Debug("Trial balance generated", slog.Int("rows", len(rows)))
	return rows, nil
}
