package domain

import "github.com/shopspring/decimal"

// TrialBalanceRow is one account's line in a trial balance report. Net debit
// balances appear in the Debit column, net credit balances in the Credit
// column; the totals over all rows are equal for any set of committed entries.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// Balance returns the row's net balance (debit minus credit).
func (r TrialBalanceRow) Balance() decimal.Decimal {
	return r.Debit.Sub(r.Credit)
}
