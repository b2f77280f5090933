package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portsrepo "github.com/finbooks/ledger-core/internal/core/ports/repositories"
	"github.com/finbooks/ledger-core/internal/repositories/memory"
)

func newAccount(code string, accountType domain.AccountType, parentID string) domain.Account {
	now := time.Now().UTC()
	return domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            "Account " + code,
		AccountType:     accountType,
		ParentAccountID: parentID,
		IsActive:        true,
		AuditFields:     domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

func newEntry(date time.Time, items ...domain.JournalItem) domain.JournalEntry {
	entryID := uuid.NewString()
	for i := range items {
		items[i].ItemID = uuid.NewString()
		items[i].EntryID = entryID
	}
	now := time.Now().UTC()
	return domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   date,
		Description: "test entry",
		Version:     1,
		Items:       items,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

func TestSaveAccountRejectsDuplicateCode(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := newAccount("1000", domain.Asset, "")
	require.NoError(t, store.SaveAccount(ctx, first))

	clash := newAccount("1000", domain.Expense, "")
	err := store.SaveAccount(ctx, clash)
	require.ErrorIs(t, err, apperrors.ErrDuplicate)

	// Registry unchanged after the failed insert
	accounts, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, first.AccountID, accounts[0].AccountID)
}

func TestListAccountsInsertionOrderAndFilters(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	root := newAccount("1000", domain.Asset, "")
	childA := newAccount("1100", domain.Asset, root.AccountID)
	childB := newAccount("1200", domain.Expense, root.AccountID)
	require.NoError(t, store.SaveAccount(ctx, root))
	require.NoError(t, store.SaveAccount(ctx, childA))
	require.NoError(t, store.SaveAccount(ctx, childB))

	all, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"1000", "1100", "1200"}, []string{all[0].Code, all[1].Code, all[2].Code})

	asset := domain.Asset
	byType, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{AccountType: &asset})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	parent := root.AccountID
	byParent, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{ParentAccountID: &parent})
	require.NoError(t, err)
	assert.Len(t, byParent, 2)

	roots := ""
	byRoot, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{ParentAccountID: &roots})
	require.NoError(t, err)
	require.Len(t, byRoot, 1)
	assert.Equal(t, root.AccountID, byRoot[0].AccountID)
}

func TestDeactivateAccountExcludedFromDefaultListing(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	account := newAccount("2000", domain.Liability, "")
	require.NoError(t, store.SaveAccount(ctx, account))
	require.NoError(t, store.DeactivateAccount(ctx, account.AccountID, time.Now().UTC()))

	active, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.ListAccounts(ctx, portsrepo.ListAccountsFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	// Still retrievable for historical lookups
	found, err := store.FindAccountByID(ctx, account.AccountID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestReplaceEntryArchivesSupersededVersion(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := newEntry(date,
		domain.JournalItem{AccountID: "a", Debit: decimal.NewFromInt(100)},
		domain.JournalItem{AccountID: "b", Credit: decimal.NewFromInt(100)},
	)
	require.NoError(t, store.SaveEntry(ctx, entry))

	replacement := entry
	replacement.Version = 2
	replacement.Items = []domain.JournalItem{
		{ItemID: uuid.NewString(), EntryID: entry.EntryID, AccountID: "a", Debit: decimal.NewFromInt(80)},
		{ItemID: uuid.NewString(), EntryID: entry.EntryID, AccountID: "b", Credit: decimal.NewFromInt(80)},
	}
	require.NoError(t, store.ReplaceEntry(ctx, replacement))

	current, err := store.FindEntryByID(ctx, entry.EntryID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)

	revisions, err := store.ListRevisions(ctx, entry.EntryID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, 1, revisions[0].Version)
	assert.True(t, revisions[0].Items[0].Debit.Equal(decimal.NewFromInt(100)))
}

func TestDeleteEntryArchivesAndRemovesFromLedger(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	entry := newEntry(date,
		domain.JournalItem{AccountID: "a", Debit: decimal.NewFromInt(50)},
		domain.JournalItem{AccountID: "b", Credit: decimal.NewFromInt(50)},
	)
	require.NoError(t, store.SaveEntry(ctx, entry))
	require.NoError(t, store.DeleteEntry(ctx, entry.EntryID))

	_, err := store.FindEntryByID(ctx, entry.EntryID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Audit trail retains the final version
	revisions, err := store.ListRevisions(ctx, entry.EntryID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)

	// Balances exclude the removed entry
	net, err := store.NetAmountByAccount(ctx, "a", nil)
	require.NoError(t, err)
	assert.True(t, net.IsZero())

	// Archived items still count as references
	inUse, err := store.HasItemsForAccount(ctx, "a")
	require.NoError(t, err)
	assert.True(t, inUse)

	err = store.DeleteEntry(ctx, entry.EntryID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNetAmountsRespectAsOfBound(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	january := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	march := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveEntry(ctx, newEntry(january,
		domain.JournalItem{AccountID: "a", Debit: decimal.NewFromInt(100)},
		domain.JournalItem{AccountID: "b", Credit: decimal.NewFromInt(100)},
	)))
	require.NoError(t, store.SaveEntry(ctx, newEntry(march,
		domain.JournalItem{AccountID: "a", Debit: decimal.NewFromInt(40)},
		domain.JournalItem{AccountID: "b", Credit: decimal.NewFromInt(40)},
	)))

	cutoff := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	net, err := store.NetAmountByAccount(ctx, "a", &cutoff)
	require.NoError(t, err)
	assert.True(t, net.Equal(decimal.NewFromInt(100)), "got %s", net)

	// The cutoff date itself is included
	inclusive := january
	net, err = store.NetAmountByAccount(ctx, "a", &inclusive)
	require.NoError(t, err)
	assert.True(t, net.Equal(decimal.NewFromInt(100)))

	nets, err := store.NetAmountsByAccounts(ctx, nil, nil)
	require.NoError(t, err)
	assert.True(t, nets["a"].Equal(decimal.NewFromInt(140)))
	assert.True(t, nets["b"].Equal(decimal.NewFromInt(-140)))

	subset, err := store.NetAmountsByAccounts(ctx, []string{"b"}, nil)
	require.NoError(t, err)
	_, hasA := subset["a"]
	assert.False(t, hasA)
	assert.True(t, subset["b"].Equal(decimal.NewFromInt(-140)))
}

func TestFindEntryReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	entry := newEntry(time.Now().UTC(),
		domain.JournalItem{AccountID: "a", Debit: decimal.NewFromInt(10)},
		domain.JournalItem{AccountID: "b", Credit: decimal.NewFromInt(10)},
	)
	require.NoError(t, store.SaveEntry(ctx, entry))

	fetched, err := store.FindEntryByID(ctx, entry.EntryID)
	require.NoError(t, err)
	fetched.Items[0].Debit = decimal.NewFromInt(999)

	again, err := store.FindEntryByID(ctx, entry.EntryID)
	require.NoError(t, err)
	assert.True(t, again.Items[0].Debit.Equal(decimal.NewFromInt(10)))
}
