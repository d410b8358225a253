package model

import "time"

// Source table names recorded in provenance. Fiscal periods are
// generated, not extracted, and carry no source table.
const (
	SourceBronzeAccounts = "bronze.accounts"
	SourceBronzeLedger   = "bronze.dailyledger"
)

// Provenance carries warehouse audit metadata on every silver record.
// It is stamped by the store at write time and is not part of any
// business invariant.
type Provenance struct {
	DwhCreatedAt   time.Time
	DwhUpdatedAt   time.Time
	DwhSourceTable string
	DwhBatchID     string
}
