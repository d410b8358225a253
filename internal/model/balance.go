package model

import "github.com/shopspring/decimal"

// AccountBalance is the per-account, per-period balance row. Keyed by
// (AccountID, PeriodID). StartBalance chains from the previous period's
// EndBalance; EndBalance = StartBalance + PeriodDebit - PeriodCredit.
type AccountBalance struct {
	AccountID     string
	AccountNumber int64
	PeriodID      int

	StartBalance decimal.Decimal
	PeriodDebit  decimal.Decimal
	PeriodCredit decimal.Decimal
	EndBalance   decimal.Decimal

	// IsCalculated marks rows carried forward for periods with no
	// activity, so reports can assume a dense period-by-account grid.
	IsCalculated bool

	Provenance
}
