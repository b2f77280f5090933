package services

import (
	"context"

	"github.com/finbooks/ledger-core/internal/core/domain"
	"github.com/finbooks/ledger-core/internal/dto"
)

// JournalReaderSvc defines read operations over committed journal entries.
type JournalReaderSvc interface {
	// GetEntryByID retrieves a committed entry with its items.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves all committed entries in insertion order.
	ListEntries(ctx context.Context) ([]domain.JournalEntry, error)

	// ListRevisions retrieves the audit trail of superseded versions for an
	// entry, oldest first.
	ListRevisions(ctx context.Context, entryID string) ([]domain.JournalEntry, error)
}

// JournalWriterSvc defines the mutations of the ledger. Every mutation is
// all-or-nothing: an invalid candidate leaves the ledger untouched.
type JournalWriterSvc interface {
	// Validate checks a candidate entry against double-entry rules and returns
	// the full set of violations, or nil when the candidate is valid. The
	// error return covers registry read failures, not validation outcomes.
	Validate(ctx context.Context, req dto.CreateJournalEntryRequest) (domain.ValidationErrors, error)

	// CommitEntry validates and appends a new entry. On validation failure the
	// returned error is a domain.ValidationErrors carrying every violation.
	CommitEntry(ctx context.Context, req dto.CreateJournalEntryRequest) (*domain.JournalEntry, error)

	// AmendEntry re-validates a full replacement and swaps it in, keeping the
	// superseded version in the revision trail.
	AmendEntry(ctx context.Context, entryID string, req dto.AmendJournalEntryRequest) (*domain.JournalEntry, error)

	// RemoveEntry removes a committed entry from the active ledger.
	RemoveEntry(ctx context.Context, entryID string) error
}

// JournalSvcFacade combines all journal service interfaces.
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
