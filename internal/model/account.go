package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account per the Spanish chart of accounts (PGC).
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeIncome    AccountType = "Income"
	AccountTypeExpense   AccountType = "Expense"
)

// IsBalanceSheet reports whether accounts of this type belong on the
// balance sheet (as opposed to the income statement).
func (t AccountType) IsBalanceSheet() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity:
		return true
	}
	return false
}

// Account is a raw chart-of-accounts row from the bronze layer.
// The ID is the opaque source identifier and stays stable across re-syncs.
type Account struct {
	ID      string
	Num     int64
	Name    string
	Group   string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// NormalizedAccount is the silver-layer account record: one per bronze
// Account, enriched with PGC hierarchy and report placement attributes.
type NormalizedAccount struct {
	AccountID      string
	AccountNumber  int64 // padded to 8 digits
	AccountName    string
	AccountGroup   string
	AccountType    AccountType
	AccountSubtype string

	// Hierarchy. ParentAccountNumber is 0 for root accounts.
	ParentAccountNumber int64
	AccountLevel        int
	IsAnalytic          bool

	PGCGroup    int
	PGCSubgroup int
	PGCDetail   int

	// Balance-sheet placement, populated only for Asset/Liability/Equity.
	BalanceSection    string
	BalanceSubsection string
	BalanceGroup      string
	BalanceSubgroup   string
	BalanceOrder      int

	// P&L placement, populated only for Income/Expense.
	PygSection  string
	PygGroup    string
	PygSubgroup string
	PygOrder    int

	IsActive       bool
	TaxRelevant    bool
	NeedsReview    bool // true when the PGC table had no entry for this account
	CurrentBalance decimal.Decimal
	DebitBalance   decimal.Decimal
	CreditBalance  decimal.Decimal

	// LastMovementDate is nil for accounts with no recorded movements.
	LastMovementDate *time.Time

	Provenance
}
