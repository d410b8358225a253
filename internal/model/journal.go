package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusPosted    EntryStatus = "posted"
	StatusAnomalous EntryStatus = "anomalous" // debits and credits differ beyond tolerance
)

// JournalEntry is the silver-layer header for one ledger entry. An entry
// owns its lines; replacing an entry replaces its lines with it.
type JournalEntry struct {
	EntryNumber       int64
	EntryDate         time.Time
	OriginalTimestamp int64
	PeriodID          int // 0 when no fiscal period covers the entry date
	EntryType         string
	Description       string
	DocDescription    string

	IsOpeningEntry bool
	IsClosingEntry bool
	IsAdjustment   bool

	EntryStatus EntryStatus
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal

	Lines []JournalLine

	Provenance
}

// JournalLine is one detail row of a JournalEntry, referencing the
// normalized account it posts to. (EntryNumber, LineNumber) is unique.
type JournalLine struct {
	EntryNumber   int64
	LineNumber    int
	AccountID     string
	AccountNumber int64
	Description   string

	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	NetAmount    decimal.Decimal // DebitAmount - CreditAmount

	// First tag slots split out for indexed querying; Tags keeps the
	// full ordered list verbatim.
	Tags []string
	Tag1 string
	Tag2 string
	Tag3 string
	Tag4 string

	CostCenter   string // from "CC:" tags
	BusinessLine string // from "BL:" tags

	IsChecked    bool
	IsReconciled bool
	TaxRelevant  bool

	Provenance
}
