package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawLedgerLine is one daily-ledger row from the bronze layer, keyed by
// (EntryNumber, LineNumber, Timestamp).
type RawLedgerLine struct {
	EntryNumber    int64
	LineNumber     int
	Timestamp      int64 // unix seconds, as delivered by the source
	Type           string
	Description    string
	DocDescription string
	Account        int64
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Tags           []string // ordered, as delivered
	Checked        string   // "Yes" when reconciled at the source
}

// Date returns the calendar date of the line in UTC.
func (l RawLedgerLine) Date() time.Time {
	t := time.Unix(l.Timestamp, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
