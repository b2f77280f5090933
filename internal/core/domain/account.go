package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five recognized account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents a node in the chart of accounts.
// This is the primary representation used by services.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary Key (UUID), immutable
	Code            string      `json:"code"`            // Short alphanumeric identifier, unique, immutable
	Name            string      `json:"name"`            // User-defined name, mutable
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc. Fixed at creation.
	ParentAccountID string      `json:"parentAccountID"` // Empty for root accounts (forest, not a single tree)
	Description     string      `json:"description"`     // Optional user description
	IsActive        bool        `json:"isActive"`        // Disabled accounts are kept for historical lookups
	AuditFields
}
