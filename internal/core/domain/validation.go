package domain

import (
	"fmt"
	"strings"
)

// ValidationCode identifies a single journal-entry invariant violation.
type ValidationCode string

const (
	EmptyDescription  ValidationCode = "EMPTY_DESCRIPTION"
	InsufficientItems ValidationCode = "INSUFFICIENT_ITEMS"
	UnknownAccount    ValidationCode = "UNKNOWN_ACCOUNT"
	AmbiguousItem     ValidationCode = "AMBIGUOUS_ITEM"
	NegativeAmount    ValidationCode = "NEGATIVE_AMOUNT"
	Unbalanced        ValidationCode = "UNBALANCED"
)

// ValidationError describes one violation found in a candidate journal entry.
// ItemIndex is -1 for entry-level violations.
type ValidationError struct {
	Code      ValidationCode `json:"code"`
	ItemIndex int            `json:"itemIndex"`
	AccountID string         `json:"accountID,omitempty"`
	Detail    string         `json:"detail"`
}

func (e ValidationError) Error() string {
	if e.ItemIndex >= 0 {
		return fmt.Sprintf("%s (item %d): %s", e.Code, e.ItemIndex, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// ValidationErrors is the full set of violations for a candidate entry, so a
// caller can report all problems at once rather than one at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "journal entry validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether the set contains a violation with the given code.
func (e ValidationErrors) Has(code ValidationCode) bool {
	for _, v := range e {
		if v.Code == code {
			return true
		}
	}
	return false
}
