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

// DefaultMinorUnits is the rounding scale for balance comparison when the
// configuration does not override it (2 for cent-based currencies).
const DefaultMinorUnits int32 = 2

// JournalService validates candidate journal entries against double-entry
// rules and owns the committed ledger. It holds a read-only view of the
// account registry for referential checks.
type JournalService struct {
	journalRepo portsrepo.JournalRepository
	accounts    portsrepo.AccountReader
	minorUnits  int32
	guard       *MutationGuard
}

// NewJournalService creates a new journal validator service. minorUnits is the
// currency's minor-unit scale used when comparing debit and credit totals.
// guard serializes mutations with the account registry on the same store;
// pass nil to let the service own a private one.
func NewJournalService(journalRepo portsrepo.JournalRepository, accounts portsrepo.AccountReader, minorUnits int32, guard *MutationGuard) portssvc.JournalSvcFacade {
	if minorUnits < 0 {
		minorUnits = DefaultMinorUnits
	}
	if guard == nil {
		guard = NewMutationGuard()
	}
	return &JournalService{
		journalRepo: journalRepo,
		accounts:    accounts,
		minorUnits:  minorUnits,
		guard:       guard,
	}
}

// Ensure JournalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*JournalService)(nil)

// buildItems converts request lines to domain items linked to entryID.
func buildItems(entryID string, items []dto.JournalItemRequest) []domain.JournalItem {
	domainItems := make([]domain.JournalItem, len(items))
	for i, item := range items {
		domainItems[i] = domain.JournalItem{
			ItemID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: item.AccountID,
			Debit:     item.Debit,
			Credit:    item.Credit,
		}
	}
	return domainItems
}

// validateEntry checks every invariant and collects the full violation set so
// the caller can report all problems at once. The error return covers registry
// read failures only.
func (s *JournalService) validateEntry(ctx context.Context, entry domain.JournalEntry) (domain.ValidationErrors, error) {
	var errs domain.ValidationErrors

	if strings.TrimSpace(entry.Description) == "" {
		errs = append(errs, domain.ValidationError{
			Code:      domain.EmptyDescription,
			ItemIndex: -1,
			Detail:    "description must not be blank",
		})
	}

	if len(entry.Items) < 2 {
		errs = append(errs, domain.ValidationError{
			Code:      domain.InsufficientItems,
			ItemIndex: -1,
			Detail:    fmt.Sprintf("double entry requires at least 2 items, got %d", len(entry.Items)),
		})
	}

	accountIDs := make([]string, 0, len(entry.Items))
	for _, item := range entry.Items {
		accountIDs = append(accountIDs, item.AccountID)
	}
	accountsMap, err := s.accounts.FindAccountsByIDs(ctx, uniqueStrings(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for validation: %w", err)
	}

	for i, item := range entry.Items {
		if item.Debit.IsNegative() {
			errs = append(errs, domain.ValidationError{
				Code:      domain.NegativeAmount,
				ItemIndex: i,
				AccountID: item.AccountID,
				Detail:    fmt.Sprintf("debit %s is negative", item.Debit),
			})
		}
		if item.Credit.IsNegative() {
			errs = append(errs, domain.ValidationError{
				Code:      domain.NegativeAmount,
				ItemIndex: i,
				AccountID: item.AccountID,
				Detail:    fmt.Sprintf("credit %s is negative", item.Credit),
			})
		}

		// An item is either a debit line or a credit line, never both, never
		// neither.
		if item.Debit.IsZero() == item.Credit.IsZero() {
			errs = append(errs, domain.ValidationError{
				Code:      domain.AmbiguousItem,
				ItemIndex: i,
				AccountID: item.AccountID,
				Detail:    "exactly one of debit and credit must be nonzero",
			})
		}

		account, found := accountsMap[item.AccountID]
		if !found {
			errs = append(errs, domain.ValidationError{
				Code:      domain.UnknownAccount,
				ItemIndex: i,
				AccountID: item.AccountID,
				Detail:    "account does not resolve in the registry",
			})
		} else if !account.IsActive {
			errs = append(errs, domain.ValidationError{
				Code:      domain.UnknownAccount,
				ItemIndex: i,
				AccountID: item.AccountID,
				Detail:    "account is disabled",
			})
		}
	}

	// Compare exact decimal totals after rounding to the currency minor unit.
	// Never floating point equality on currency.
	totalDebit, totalCredit := entry.Totals()
	roundedDebit := totalDebit.Round(s.minorUnits)
	roundedCredit := totalCredit.Round(s.minorUnits)
	if !roundedDebit.Equal(roundedCredit) {
		errs = append(errs, domain.ValidationError{
			Code:      domain.Unbalanced,
			ItemIndex: -1,
			Detail:    fmt.Sprintf("total debits %s != total credits %s", roundedDebit, roundedCredit),
		})
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

// Validate runs a dry-run validation of a candidate entry. A nil
// ValidationErrors result means the candidate would commit.
func (s *JournalService) Validate(ctx context.Context, req dto.CreateJournalEntryRequest) (domain.ValidationErrors, error) {
	candidate := domain.JournalEntry{
		EntryDate:   req.Date,
		Description: req.Description,
		Items:       buildItems("", req.Items),
	}
	return s.validateEntry(ctx, candidate)
}

// CommitEntry validates a candidate entry and appends it to the ledger.
// Commit is atomic: either the full entry is recorded or nothing is.
func (s *JournalService) CommitEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s.guard.lock()
	defer s.guard.unlock()

	now := time.Now().UTC()
	entryID := uuid.NewString()
	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.Date,
		Description: req.Description,
		Version:     1,
		Items:       buildItems(entryID, req.Items),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	verrs, err := s.validateEntry(ctx, entry)
	if err != nil {
		logger.Error("Failed to validate journal entry", slog.String("error", err.Error()))
		return nil, err
	}
	if verrs != nil {
		logger.Warn("Journal entry rejected", slog.Int("violations", len(verrs)))
		return nil, verrs
	}

	if err := s.journalRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	logger.Info("Journal entry committed", slog.String("entry_id", entryID), slog.Int("items", len(entry.Items)))
	return &entry, nil
}

// AmendEntry re-validates a full replacement for an existing entry and swaps
// it in. The superseded version is retained in the revision trail, never
// silently overwritten.
func (s *JournalService) AmendEntry(ctx context.Context, entryID string, req dto.AmendJournalEntryRequest) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s.guard.lock()
	defer s.guard.unlock()

	current, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal entry for amendment", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}

	replacement := domain.JournalEntry{
		EntryID:     current.EntryID,
		EntryDate:   current.EntryDate,
		Description: current.Description,
		Version:     current.Version + 1,
		Items:       buildItems(current.EntryID, req.Items),
		AuditFields: domain.AuditFields{
			CreatedAt:     current.CreatedAt, // createdAt is immutable
			LastUpdatedAt: time.Now().UTC(),
		},
	}
	if req.Date != nil {
		replacement.EntryDate = *req.Date
	}
	if req.Description != nil {
		replacement.Description = *req.Description
	}

	verrs, err := s.validateEntry(ctx, replacement)
	if err != nil {
		logger.Error("Failed to validate amendment", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}
	if verrs != nil {
		logger.Warn("Journal amendment rejected", slog.String("entry_id", entryID), slog.Int("violations", len(verrs)))
		return nil, verrs
	}

	if err := s.journalRepo.ReplaceEntry(ctx, replacement); err != nil {
		logger.Error("Failed to replace journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}

	logger.Info("Journal entry amended", slog.String("entry_id", entryID), slog.Int("version", replacement.Version))
	return &replacement, nil
}

// RemoveEntry removes a committed entry from the active ledger. Its final
// version joins the revision trail for auditability.
func (s *JournalService) RemoveEntry(ctx context.Context, entryID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	s.guard.lock()
	defer s.guard.unlock()

	if err := s.journalRepo.DeleteEntry(ctx, entryID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to remove journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return err
	}

	logger.Info("Journal entry removed", slog.String("entry_id", entryID))
	return nil
}

// GetEntryByID retrieves a committed entry with its items.
func (s *JournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves all committed entries in insertion order.
func (s *JournalService) ListEntries(ctx context.Context) ([]domain.JournalEntry, error) {
	entries, err := s.journalRepo.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	if entries == nil {
		return []domain.JournalEntry{}, nil
	}
	return entries, nil
}

// ListRevisions retrieves the audit trail of superseded versions, oldest first.
func (s *JournalService) ListRevisions(ctx context.Context, entryID string) ([]domain.JournalEntry, error) {
	revisions, err := s.journalRepo.ListRevisions(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if revisions == nil {
		return []domain.JournalEntry{}, nil
	}
	return revisions, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
