package model

import "time"

// FiscalPeriod is a calendar-month accounting window. (PeriodYear,
// PeriodMonth) is unique; PeriodID is the deterministic year*100+month.
type FiscalPeriod struct {
	PeriodID      int
	PeriodYear    int
	PeriodQuarter int
	PeriodMonth   int
	PeriodName    string // "2025-01"
	StartDate     time.Time
	EndDate       time.Time

	// IsClosed flips only through the explicit period-close operation,
	// never as a side effect of a data load.
	IsClosed    bool
	ClosingDate *time.Time

	Provenance
}

// Contains reports whether the date falls within [StartDate, EndDate].
func (p FiscalPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}
