// Package memory provides the default ledger storage: a single explicit store
// object owning the account and entry collections. A readers-writer lock
// serializes mutations and gives every read a consistent snapshot, matching
// the single-writer model the services rely on.
package memory

import (
	"context"
	"fmt"
	"time"

	"sync"

	"github.com/shopspring/decimal"

	"github.com/finbooks/ledger-core/internal/apperrors"
	"github.com/finbooks/ledger-core/internal/core/domain"
	portsrepo "github.com/finbooks/ledger-core/internal/core/ports/repositories"
)

// Store is an in-memory implementation of the account and journal repository
// ports. The zero value is not usable; construct with NewStore.
type Store struct {
	mu sync.RWMutex

	accounts     map[string]domain.Account
	accountOrder []string          // account IDs in insertion order
	codes        map[string]string // code -> account ID

	entries    map[string]domain.JournalEntry
	entryOrder []string // entry IDs in insertion order
	revisions  map[string][]domain.JournalEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		codes:     make(map[string]string),
		entries:   make(map[string]domain.JournalEntry),
		revisions: make(map[string][]domain.JournalEntry),
	}
}

// Ensure Store implements both repository ports
var (
	_ portsrepo.AccountRepository = (*Store)(nil)
	_ portsrepo.JournalRepository = (*Store)(nil)
)

// copyEntry clones an entry so callers can never alias store-owned items.
func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	clone := e
	clone.Items = make([]domain.JournalItem, len(e.Items))
	copy(clone.Items, e.Items)
	return clone
}

// --- AccountRepository ---

// SaveAccount persists a new account, enforcing code uniqueness under the
// write lock.
func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
	}
	if _, taken := s.codes[account.Code]; taken {
		return fmt.Errorf("%w: code %s", apperrors.ErrDuplicate, account.Code)
	}

	s.accounts[account.AccountID] = account
	s.accountOrder = append(s.accountOrder, account.AccountID)
	s.codes[account.Code] = account.AccountID
	return nil
}

// UpdateAccount replaces an existing account's record. The code is immutable
// and kept from the stored record.
func (s *Store) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.accounts[account.AccountID]
	if !exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
	}
	account.Code = stored.Code
	account.AccountType = stored.AccountType
	account.CreatedAt = stored.CreatedAt
	s.accounts[account.AccountID] = account
	return nil
}

// DeactivateAccount marks an account inactive, retaining it for historical
// lookups.
func (s *Store) DeactivateAccount(_ context.Context, accountID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	account.IsActive = false
	account.LastUpdatedAt = now
	s.accounts[accountID] = account
	return nil
}

// FindAccountByID retrieves an account by ID.
func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, exists := s.accounts[accountID]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

// FindAccountByCode retrieves an account by its unique code.
func (s *Store) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID, exists := s.codes[code]
	if !exists {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	account := s.accounts[accountID]
	return &account, nil
}

// FindAccountsByIDs retrieves multiple accounts; missing IDs are absent from
// the result.
func (s *Store) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, exists := s.accounts[id]; exists {
			result[id] = account
		}
	}
	return result, nil
}

// ListAccounts returns accounts in insertion order, filtered.
func (s *Store) ListAccounts(_ context.Context, filter portsrepo.ListAccountsFilter) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(s.accountOrder))
	for _, id := range s.accountOrder {
		account := s.accounts[id]
		if !filter.IncludeInactive && !account.IsActive {
			continue
		}
		if filter.AccountType != nil && account.AccountType != *filter.AccountType {
			continue
		}
		if filter.ParentAccountID != nil && account.ParentAccountID != *filter.ParentAccountID {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// --- JournalRepository ---

// SaveEntry appends a newly committed entry.
func (s *Store) SaveEntry(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	s.entries[entry.EntryID] = copyEntry(entry)
	s.entryOrder = append(s.entryOrder, entry.EntryID)
	return nil
}

// ReplaceEntry swaps a committed entry for its replacement, archiving the
// superseded version. The archive and the swap happen under one lock, so no
// reader observes a half-applied amendment.
func (s *Store) ReplaceEntry(_ context.Context, replacement domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[replacement.EntryID]
	if !exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, replacement.EntryID)
	}
	s.revisions[replacement.EntryID] = append(s.revisions[replacement.EntryID], current)
	s.entries[replacement.EntryID] = copyEntry(replacement)
	return nil
}

// DeleteEntry removes a committed entry from the active ledger, archiving its
// final version.
func (s *Store) DeleteEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.entries[entryID]
	if !exists {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	s.revisions[entryID] = append(s.revisions[entryID], current)
	delete(s.entries, entryID)
	for i, id := range s.entryOrder {
		if id == entryID {
			s.entryOrder = append(s.entryOrder[:i], s.entryOrder[i+1:]...)
			break
		}
	}
	return nil
}

// FindEntryByID retrieves a committed entry.
func (s *Store) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[entryID]
	if !exists {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}
	clone := copyEntry(entry)
	return &clone, nil
}

// ListEntries returns committed entries in insertion order.
func (s *Store) ListEntries(_ context.Context) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.JournalEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		entries = append(entries, copyEntry(s.entries[id]))
	}
	return entries, nil
}

// ListRevisions returns superseded versions of an entry, oldest first.
func (s *Store) ListRevisions(_ context.Context, entryID string) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, active := s.entries[entryID]
	archived, hasRevisions := s.revisions[entryID]
	if !active && !hasRevisions {
		return nil, fmt.Errorf("%w: journal entry %s", apperrors.ErrNotFound, entryID)
	}

	result := make([]domain.JournalEntry, len(archived))
	for i, rev := range archived {
		result[i] = copyEntry(rev)
	}
	return result, nil
}

// HasItemsForAccount reports whether any committed or archived item references
// the account.
func (s *Store) HasItemsForAccount(_ context.Context, accountID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		for _, item := range entry.Items {
			if item.AccountID == accountID {
				return true, nil
			}
		}
	}
	for _, revs := range s.revisions {
		for _, entry := range revs {
			for _, item := range entry.Items {
				if item.AccountID == accountID {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// NetAmountByAccount returns sum(debit - credit) over committed items for one
// account, bounded by asOf (inclusive) when non-nil.
func (s *Store) NetAmountByAccount(_ context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	net := decimal.Zero
	for _, entry := range s.entries {
		if asOf != nil && entry.EntryDate.After(*asOf) {
			continue
		}
		net = net.Add(entry.Net(accountID))
	}
	return net, nil
}

// NetAmountsByAccounts returns net amounts per account in one consistent
// read. A nil accountIDs slice means every account with activity.
func (s *Store) NetAmountsByAccounts(_ context.Context, accountIDs []string, asOf *time.Time) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wanted map[string]struct{}
	if accountIDs != nil {
		wanted = make(map[string]struct{}, len(accountIDs))
		for _, id := range accountIDs {
			wanted[id] = struct{}{}
		}
	}

	nets := make(map[string]decimal.Decimal)
	for _, entry := range s.entries {
		if asOf != nil && entry.EntryDate.After(*asOf) {
			continue
		}
		for _, item := range entry.Items {
			if wanted != nil {
				if _, ok := wanted[item.AccountID]; !ok {
					continue
				}
			}
			current, ok := nets[item.AccountID]
			if !ok {
				current = decimal.Zero
			}
			nets[item.AccountID] = current.Add(item.Debit).Sub(item.Credit)
		}
	}
	return nets, nil
}
