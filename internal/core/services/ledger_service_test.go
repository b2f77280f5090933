package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portssvc "github.com/finbooks/ledger-core/internal/core/ports/services"
	"github.com/finbooks/ledger-core/internal/core/services"
	"github.com/finbooks/ledger-core/internal/dto"
	"github.com/finbooks/ledger-core/internal/repositories/memory"
)

// LedgerServiceTestSuite exercises balance queries end to end: real services
// over the in-memory store, no mocks.
type LedgerServiceTestSuite struct {
	suite.Suite
	store    *memory.Store
	accounts portssvc.AccountSvcFacade
	journal  portssvc.JournalSvcFacade
	ledger   portssvc.LedgerQuerySvc
	ctx      context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.store = memory.NewStore()
	guard := services.NewMutationGuard()
	s.accounts = services.NewAccountService(s.store, s.store, guard)
	s.journal = services.NewJournalService(s.store, s.store, services.DefaultMinorUnits, guard)
	s.ledger = services.NewLedgerService(s.store, s.store)
	s.ctx = context.Background()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) mustCreateAccount(code, name string, accountType domain.AccountType, parentID string) *domain.Account {
	req := dto.CreateAccountRequest{Code: code, Name: name, AccountType: accountType}
	if parentID != "" {
		req.ParentAccountID = &parentID
	}
	account, err := s.accounts.CreateAccount(s.ctx, req)
	s.Require().NoError(err)
	return account
}

func (s *LedgerServiceTestSuite) mustCommit(date time.Time, description string, items ...dto.JournalItemRequest) *domain.JournalEntry {
	entry, err := s.journal.CommitEntry(s.ctx, dto.CreateJournalEntryRequest{
		Date:        date,
		Description: description,
		Items:       items,
	})
	s.Require().NoError(err)
	return entry
}

func (s *LedgerServiceTestSuite) TestCommittedEntryMovesBalances() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	revenue := s.mustCreateAccount("4000", "Sales", domain.Revenue, "")

	s.mustCommit(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Cash sale",
		debitItem(cash.AccountID, "150"), creditItem(revenue.AccountID, "150"))

	cashBalance, err := s.ledger.AccountBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(cashBalance.Equal(decimal.RequireFromString("150")), "cash balance = %s", cashBalance)

	revenueBalance, err := s.ledger.AccountBalance(s.ctx, revenue.AccountID, nil)
	s.Require().NoError(err)
	s.True(revenueBalance.Equal(decimal.RequireFromString("-150")), "revenue balance = %s", revenueBalance)
}

func (s *LedgerServiceTestSuite) TestRejectedEntryLeavesLedgerUnchanged() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	revenue := s.mustCreateAccount("4000", "Sales", domain.Revenue, "")

	_, err := s.journal.CommitEntry(s.ctx, dto.CreateJournalEntryRequest{
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "Fat fingered",
		Items:       []dto.JournalItemRequest{debitItem(cash.AccountID, "100"), creditItem(revenue.AccountID, "99")},
	})
	s.Require().Error(err)

	entries, listErr := s.journal.ListEntries(s.ctx)
	s.Require().NoError(listErr)
	s.Empty(entries)

	balance, balErr := s.ledger.AccountBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(balErr)
	s.True(balance.IsZero())
}

func (s *LedgerServiceTestSuite) TestTrialBalanceNetsToZero() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	loan := s.mustCreateAccount("2000", "Bank loan", domain.Liability, "")
	revenue := s.mustCreateAccount("4000", "Sales", domain.Revenue, "")
	rent := s.mustCreateAccount("5000", "Rent", domain.Expense, "")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.mustCommit(day, "Loan drawdown", debitItem(cash.AccountID, "5000"), creditItem(loan.AccountID, "5000"))
	s.mustCommit(day.AddDate(0, 0, 1), "Cash sale", debitItem(cash.AccountID, "720.50"), creditItem(revenue.AccountID, "720.50"))
	s.mustCommit(day.AddDate(0, 0, 2), "March rent", debitItem(rent.AccountID, "1200"), creditItem(cash.AccountID, "1200"))

	rows, err := s.ledger.TrialBalance(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(rows, 4)

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		s.False(row.Debit.IsNegative())
		s.False(row.Credit.IsNegative())
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	s.True(totalDebit.Equal(totalCredit), "debits %s != credits %s", totalDebit, totalCredit)
}

func (s *LedgerServiceTestSuite) TestTrialBalanceIncludesZeroBalanceAccounts() {
	s.mustCreateAccount("1000", "Cash", domain.Asset, "")

	rows, err := s.ledger.TrialBalance(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.True(rows[0].Debit.IsZero())
	s.True(rows[0].Credit.IsZero())
}

func (s *LedgerServiceTestSuite) TestRollupSumsSubtree() {
	assets := s.mustCreateAccount("1000", "Assets", domain.Asset, "")
	cash := s.mustCreateAccount("1100", "Cash", domain.Asset, assets.AccountID)
	bank := s.mustCreateAccount("1200", "Bank", domain.Asset, assets.AccountID)
	savings := s.mustCreateAccount("1210", "Savings", domain.Asset, bank.AccountID)
	equity := s.mustCreateAccount("3000", "Equity", domain.Equity, "")

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s.mustCommit(day, "Seed cash", debitItem(cash.AccountID, "100"), creditItem(equity.AccountID, "100"))
	s.mustCommit(day, "Seed bank", debitItem(bank.AccountID, "250"), creditItem(equity.AccountID, "250"))
	s.mustCommit(day, "Seed savings", debitItem(savings.AccountID, "40"), creditItem(equity.AccountID, "40"))
	s.mustCommit(day, "Parent level booking", debitItem(assets.AccountID, "10"), creditItem(equity.AccountID, "10"))

	rollup, err := s.ledger.RollupBalance(s.ctx, assets.AccountID, nil)
	s.Require().NoError(err)
	s.True(rollup.Equal(decimal.RequireFromString("400")), "rollup = %s", rollup)

	// Rollup of a node equals its own balance plus the rollups of its children.
	own, err := s.ledger.AccountBalance(s.ctx, assets.AccountID, nil)
	s.Require().NoError(err)
	cashRollup, err := s.ledger.RollupBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	bankRollup, err := s.ledger.RollupBalance(s.ctx, bank.AccountID, nil)
	s.Require().NoError(err)
	s.True(rollup.Equal(own.Add(cashRollup).Add(bankRollup)))
}

func (s *LedgerServiceTestSuite) TestRollupLeafEqualsOwnBalance() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	equity := s.mustCreateAccount("3000", "Equity", domain.Equity, "")
	s.mustCommit(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Seed",
		debitItem(cash.AccountID, "75"), creditItem(equity.AccountID, "75"))

	own, err := s.ledger.AccountBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	rollup, err := s.ledger.RollupBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(own.Equal(rollup))
}

func (s *LedgerServiceTestSuite) TestBalanceAsOfExcludesLaterEntries() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	equity := s.mustCreateAccount("3000", "Equity", domain.Equity, "")

	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	s.mustCommit(march, "March funding", debitItem(cash.AccountID, "100"), creditItem(equity.AccountID, "100"))
	s.mustCommit(april, "April funding", debitItem(cash.AccountID, "50"), creditItem(equity.AccountID, "50"))

	cutoff := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	balance, err := s.ledger.AccountBalance(s.ctx, cash.AccountID, &cutoff)
	s.Require().NoError(err)
	s.True(balance.Equal(decimal.RequireFromString("100")), "asOf balance = %s", balance)

	// The bound is inclusive.
	balance, err = s.ledger.AccountBalance(s.ctx, cash.AccountID, &april)
	s.Require().NoError(err)
	s.True(balance.Equal(decimal.RequireFromString("150")))
}

func (s *LedgerServiceTestSuite) TestAmendmentMovesBalancesAndKeepsRevision() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	revenue := s.mustCreateAccount("4000", "Sales", domain.Revenue, "")

	entry := s.mustCommit(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Cash sale",
		debitItem(cash.AccountID, "150"), creditItem(revenue.AccountID, "150"))

	_, err := s.journal.AmendEntry(s.ctx, entry.EntryID, dto.AmendJournalEntryRequest{
		Items: []dto.JournalItemRequest{debitItem(cash.AccountID, "175"), creditItem(revenue.AccountID, "175")},
	})
	s.Require().NoError(err)

	balance, err := s.ledger.AccountBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(balance.Equal(decimal.RequireFromString("175")))

	revisions, err := s.journal.ListRevisions(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	s.Require().Len(revisions, 1)
	s.Equal(1, revisions[0].Version)
}

func (s *LedgerServiceTestSuite) TestRemovalExcludesEntryFromBalances() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")
	revenue := s.mustCreateAccount("4000", "Sales", domain.Revenue, "")

	entry := s.mustCommit(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "Cash sale",
		debitItem(cash.AccountID, "150"), creditItem(revenue.AccountID, "150"))

	s.Require().NoError(s.journal.RemoveEntry(s.ctx, entry.EntryID))

	balance, err := s.ledger.AccountBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(balance.IsZero())

	// The archived reference still blocks disabling the account.
	err = s.accounts.DeactivateAccount(s.ctx, cash.AccountID)
	s.Require().Error(err)
}

func (s *LedgerServiceTestSuite) TestConcurrentReparentsCannotFormCycle() {
	a := s.mustCreateAccount("1000", "Fixed assets", domain.Asset, "")
	b := s.mustCreateAccount("1100", "Equipment", domain.Asset, "")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = s.accounts.UpdateAccount(s.ctx, a.AccountID, dto.UpdateAccountRequest{ParentAccountID: &b.AccountID})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = s.accounts.UpdateAccount(s.ctx, b.AccountID, dto.UpdateAccountRequest{ParentAccountID: &a.AccountID})
	}()
	wg.Wait()

	// Whichever reparent ran second sees the first one's edge and is rejected.
	s.True((errs[0] == nil) != (errs[1] == nil), "exactly one reparent should succeed, got %v and %v", errs[0], errs[1])

	_, err := s.ledger.RollupBalance(s.ctx, a.AccountID, nil)
	s.Require().NoError(err)
	_, err = s.ledger.RollupBalance(s.ctx, b.AccountID, nil)
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TestRollupRejectsCorruptedHierarchy() {
	assets := s.mustCreateAccount("1000", "Assets", domain.Asset, "")
	cash := s.mustCreateAccount("1100", "Cash", domain.Asset, assets.AccountID)

	// Corrupt the stored hierarchy behind the registry's back so the two
	// accounts point at each other.
	corrupted := *assets
	corrupted.ParentAccountID = cash.AccountID
	s.Require().NoError(s.store.UpdateAccount(s.ctx, corrupted))

	_, err := s.ledger.RollupBalance(s.ctx, assets.AccountID, nil)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrCycle)
}

func (s *LedgerServiceTestSuite) TestDisabledAccountStaysQueryable() {
	cash := s.mustCreateAccount("1000", "Cash", domain.Asset, "")

	s.Require().NoError(s.accounts.DeactivateAccount(s.ctx, cash.AccountID))

	balance, err := s.ledger.AccountBalance(s.ctx, cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(balance.IsZero())
}
