package silver

import (
	"context"
	"time"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// Store is the silver-layer persistence surface. Writes upsert by the
// natural key of each table (account number, period year+month, entry
// number, entry+line number, account+period) and stamp provenance with
// the batch ID; re-applying a batch changes nothing beyond the
// timestamp and batch refresh. Routine loads never hard-delete, except
// that replacing an entry replaces its lines.
type Store interface {
	UpsertAccounts(ctx context.Context, batchID string, accounts []model.NormalizedAccount) error
	UpsertPeriods(ctx context.Context, batchID string, periods []model.FiscalPeriod) error
	UpsertEntries(ctx context.Context, batchID string, entries []model.JournalEntry) error
	UpsertBalances(ctx context.Context, batchID string, balances []model.AccountBalance) error

	Accounts(ctx context.Context) ([]model.NormalizedAccount, error)
	Periods(ctx context.Context) ([]model.FiscalPeriod, error)
	Entries(ctx context.Context) ([]model.JournalEntry, error)
	Balances(ctx context.Context) ([]model.AccountBalance, error)

	// ClosePeriod marks one fiscal period closed. This is the only path
	// that flips is_closed; loads never do it implicitly.
	ClosePeriod(ctx context.Context, periodID int, closingDate time.Time) error

	// Truncate empties all silver tables for a full refresh.
	Truncate(ctx context.Context) error
}
