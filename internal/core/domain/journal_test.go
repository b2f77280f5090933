package domain_test

import (
	"testing"

	"github.com/finbooks/ledger-core/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestJournalEntryTotals(t *testing.T) {
	entry := domain.JournalEntry{
		Items: []domain.JournalItem{
			{AccountID: "a", Debit: decimal.NewFromFloat(100.50), Credit: decimal.Zero},
			{AccountID: "b", Debit: decimal.Zero, Credit: decimal.NewFromFloat(60.25)},
			{AccountID: "c", Debit: decimal.Zero, Credit: decimal.NewFromFloat(40.25)},
		},
	}

	debit, credit := entry.Totals()
	assert.True(t, debit.Equal(decimal.NewFromFloat(100.50)), "debit total mismatch: %s", debit)
	assert.True(t, credit.Equal(decimal.NewFromFloat(100.50)), "credit total mismatch: %s", credit)
}

func TestJournalEntryNet(t *testing.T) {
	entry := domain.JournalEntry{
		Items: []domain.JournalItem{
			{AccountID: "a", Debit: decimal.NewFromInt(150)},
			{AccountID: "a", Credit: decimal.NewFromInt(20)},
			{AccountID: "b", Credit: decimal.NewFromInt(130)},
		},
	}

	assert.True(t, entry.Net("a").Equal(decimal.NewFromInt(130)))
	assert.True(t, entry.Net("b").Equal(decimal.NewFromInt(-130)))
	assert.True(t, entry.Net("missing").IsZero())
}

func TestValidationErrorsError(t *testing.T) {
	errs := domain.ValidationErrors{
		{Code: domain.EmptyDescription, ItemIndex: -1, Detail: "description is required"},
		{Code: domain.AmbiguousItem, ItemIndex: 1, Detail: "item must be either a debit or a credit"},
	}

	msg := errs.Error()
	assert.Contains(t, msg, "EMPTY_DESCRIPTION")
	assert.Contains(t, msg, "AMBIGUOUS_ITEM (item 1)")
	assert.True(t, errs.Has(domain.EmptyDescription))
	assert.False(t, errs.Has(domain.Unbalanced))
}

func TestAccountTypeIsValid(t *testing.T) {
	for _, typ := range []domain.AccountType{domain.Asset, domain.Liability, domain.Equity, domain.Revenue, domain.Expense} {
		assert.True(t, typ.IsValid(), "expected %s to be valid", typ)
	}
	assert.False(t, domain.AccountType("INCOME").IsValid())
	assert.False(t, domain.AccountType("").IsValid())
}
