package repositories

import (
	"context"
	"time"

	"github.com/finbooks/ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for committed journal entries.
type JournalReader interface {
	// FindEntryByID retrieves a committed entry, items included.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves all committed entries in insertion order.
	ListEntries(ctx context.Context) ([]domain.JournalEntry, error)

	// ListRevisions retrieves the superseded versions of an entry, oldest
	// first. Returns apperrors.ErrNotFound if the entry never existed.
	ListRevisions(ctx context.Context, entryID string) ([]domain.JournalEntry, error)

	// HasItemsForAccount reports whether any journal item, committed or
	// archived in the revision trail, references the account.
	HasItemsForAccount(ctx context.Context, accountID string) (bool, error)
}

// JournalWriter defines mutations on the ledger. Implementations serialize
// these calls and apply each one atomically.
type JournalWriter interface {
	// SaveEntry appends a newly committed entry to the ledger. Returns
	// apperrors.ErrDuplicate if the entry ID is already present.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// ReplaceEntry swaps the committed entry for a re-validated replacement,
	// archiving the superseded version in the revision trail. Returns
	// apperrors.ErrNotFound if there is no committed entry with that ID.
	ReplaceEntry(ctx context.Context, replacement domain.JournalEntry) error

	// DeleteEntry removes a committed entry from the active ledger, archiving
	// its final version in the revision trail.
	DeleteEntry(ctx context.Context, entryID string) error
}

// BalanceReader answers aggregate queries over committed items. Each call
// observes a consistent snapshot of the ledger.
type BalanceReader interface {
	// NetAmountByAccount returns sum(debit - credit) over all committed items
	// for the account, bounded by asOf (inclusive) when non-nil.
	NetAmountByAccount(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)

	// NetAmountsByAccounts returns net amounts for the given accounts in one
	// consistent read. A nil accountIDs slice means every account with
	// activity.
	NetAmountsByAccounts(ctx context.Context, accountIDs []string, asOf *time.Time) (map[string]decimal.Decimal, error)
}

// JournalRepository combines all ledger repository interfaces.
type JournalRepository interface {
	JournalReader
	JournalWriter
	BalanceReader
}
