package services

import (
	"context"
	"time"

	"github.com/finbooks/ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerQuerySvc answers aggregate balance queries derived from the account
// registry and the committed ledger.
type LedgerQuerySvc interface {
	// AccountBalance returns sum(debit - credit) over the account's committed
	// items, bounded by asOf (inclusive) when non-nil.
	AccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// RollupBalance returns the account's balance plus the recursive balances
	// of every descendant account.
	RollupBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// TrialBalance returns one row per registered account. The debit and
	// credit totals over all rows are always equal.
	TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)
}
