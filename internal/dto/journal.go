package dto

import (
	"time"

	"github.com/finbooks/ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalItemRequest is one candidate line of a journal entry. Amounts are
// exact decimals; a valid line sets exactly one of debit/credit.
type JournalItemRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// CreateJournalEntryRequest defines a candidate entry for commit (or dry-run
// validation). Double entry requires at least two items.
type CreateJournalEntryRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Items       []JournalItemRequest `json:"items" binding:"required,min=2,dive"`
}

// ValidateJournalEntryRequest is the dry-run variant of
// CreateJournalEntryRequest. Binding stays permissive so that a missing
// description or a short item list reaches the validator and comes back as
// part of the collected violation set rather than as a binding error.
type ValidateJournalEntryRequest struct {
	Date        time.Time            `json:"date"`
	Description string               `json:"description"`
	Items       []JournalItemRequest `json:"items"`
}

// ToCreateRequest converts the permissive dry-run shape to the commit shape.
func (r ValidateJournalEntryRequest) ToCreateRequest() CreateJournalEntryRequest {
	return CreateJournalEntryRequest{
		Date:        r.Date,
		Description: r.Description,
		Items:       r.Items,
	}
}

// AmendJournalEntryRequest defines a full replacement for an existing entry.
// Items always replace the committed ones; date and description fall back to
// the current values when omitted.
type AmendJournalEntryRequest struct {
	Date        *time.Time           `json:"date"`
	Description *string              `json:"description"`
	Items       []JournalItemRequest `json:"items" binding:"required,min=2,dive"`
}

// JournalItemResponse defines the data returned for a single entry line.
type JournalItemResponse struct {
	ItemID    string          `json:"itemID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       string                `json:"entryID"`
	Date          time.Time             `json:"date"`
	Description   string                `json:"description"`
	Version       int                   `json:"version"`
	Items         []JournalItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastUpdatedAt time.Time             `json:"lastUpdatedAt"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to a response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	items := make([]JournalItemResponse, len(e.Items))
	for i, item := range e.Items {
		items[i] = JournalItemResponse{
			ItemID:    item.ItemID,
			AccountID: item.AccountID,
			Debit:     item.Debit,
			Credit:    item.Credit,
		}
	}
	return JournalEntryResponse{
		EntryID:       e.EntryID,
		Date:          e.EntryDate,
		Description:   e.Description,
		Version:       e.Version,
		Items:         items,
		CreatedAt:     e.CreatedAt,
		LastUpdatedAt: e.LastUpdatedAt,
	}
}

// ToListJournalEntriesResponse converts domain entries to a list response.
func ToListJournalEntriesResponse(entries []domain.JournalEntry) ListJournalEntriesResponse {
	res := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ToJournalEntryResponse(&e)
	}
	return ListJournalEntriesResponse{Entries: res}
}

// ListJournalEntriesResponse wraps the list of committed entries.
type ListJournalEntriesResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
}

// ValidateEntryResponse is the result of a dry-run validation: either valid,
// or the full set of violations at once.
type ValidateEntryResponse struct {
	Valid  bool                     `json:"valid"`
	Errors []domain.ValidationError `json:"errors,omitempty"`
}
