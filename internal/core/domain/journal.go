package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalItem is a single line within a journal entry, affecting one account.
// A line is either a debit line or a credit line: exactly one of Debit/Credit
// is nonzero on a valid item.
type JournalItem struct {
	ItemID    string          `json:"itemID"`  // Primary Key (UUID)
	EntryID   string          `json:"entryID"` // FK -> JournalEntry.EntryID
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`  // Non-negative; zero on credit lines
	Credit    decimal.Decimal `json:"credit"` // Non-negative; zero on debit lines
}

// JournalEntry represents a single, balanced financial event composed of at
// least two items. Committed entries are append-only: an amendment replaces
// the whole entry and the superseded version moves to the revision trail.
type JournalEntry struct {
	EntryID     string        `json:"entryID"` // Primary Key (UUID)
	EntryDate   time.Time     `json:"date"`    // Date the event occurred
	Description string        `json:"description"`
	Version     int           `json:"version"` // 1 for the original commit, bumped on each amendment
	Items       []JournalItem `json:"items"`
	AuditFields
}

// Totals returns the debit and credit sums over all items.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for _, item := range e.Items {
		debit = debit.Add(item.Debit)
		credit = credit.Add(item.Credit)
	}
	return debit, credit
}

// Net returns the entry's net effect on a single account (debit minus credit).
func (e JournalEntry) Net(accountID string) decimal.Decimal {
	net := decimal.Zero
	for _, item := range e.Items {
		if item.AccountID == accountID {
			net = net.Add(item.Debit).Sub(item.Credit)
		}
	}
	return net
}
