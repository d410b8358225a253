package silver

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverbooks-dev/silverbooks/internal/model"
	"github.com/silverbooks-dev/silverbooks/internal/pgc"
)

var (
	testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	janTS   = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC).Unix()
	febTS   = time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC).Unix()
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestLoader(t *testing.T) (*Loader, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	store.Now = func() time.Time { return testNow }
	l := NewLoader(store, pgc.DefaultTable(), Options{Workers: 2}, zerolog.Nop())
	l.now = func() time.Time { return testNow }
	return l, store
}

func testAccounts() []model.Account {
	return []model.Account{
		{ID: "acc-bank", Num: 57200001, Name: "Banco cuenta corriente"},
		{ID: "acc-sales", Num: 70000000, Name: "Ventas de mercaderías"},
		{ID: "acc-clients", Num: 43000000, Name: "Clientes"},
	}
}

func testLedger() []model.RawLedgerLine {
	return []model.RawLedgerLine{
		{EntryNumber: 1001, LineNumber: 1, Timestamp: janTS, Type: "Factura", Description: "Venta", Account: 43000000, Debit: dec("500.00")},
		{EntryNumber: 1001, LineNumber: 2, Timestamp: janTS, Type: "Factura", Description: "Venta", Account: 70000000, Credit: dec("500.00")},
		{EntryNumber: 1002, LineNumber: 1, Timestamp: febTS, Type: "Cobro", Description: "Cobro cliente", Account: 57200001, Debit: dec("500.00")},
		{EntryNumber: 1002, LineNumber: 2, Timestamp: febTS, Type: "Cobro", Description: "Cobro cliente", Account: 43000000, Credit: dec("500.00")},
	}
}

func TestRun_CleanLoad(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	result, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: testLedger()})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Empty(t, result.Anomalies)
	assert.Equal(t, 3, result.Accounts)
	assert.Equal(t, 2, result.Entries)
	assert.Equal(t, 4, result.Lines)
	assert.NotEmpty(t, result.BatchID)

	// Jan 2025 through Dec 2026, month-aligned.
	periods, err := store.Periods(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 24)
	assert.Equal(t, 202501, periods[0].PeriodID)
	assert.Equal(t, 202612, periods[23].PeriodID)
	for _, p := range periods {
		assert.False(t, p.IsClosed, "load must never close period %d", p.PeriodID)
	}

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.StatusPosted, entries[0].EntryStatus)
	assert.Equal(t, 202501, entries[0].PeriodID)
	assert.Equal(t, "acc-clients", entries[0].Lines[0].AccountID)
	assert.Equal(t, result.BatchID, entries[0].DwhBatchID)

	// Clientes: +500 in January, -500 in February, chained.
	balances, err := store.Balances(ctx)
	require.NoError(t, err)
	jan := findBalance(t, balances, "acc-clients", 202501)
	assert.True(t, jan.EndBalance.Equal(dec("500.00")))
	feb := findBalance(t, balances, "acc-clients", 202502)
	assert.True(t, feb.StartBalance.Equal(dec("500.00")))
	assert.True(t, feb.EndBalance.IsZero())
}

func TestRun_Idempotent(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()
	in := Input{Accounts: testAccounts(), Ledger: testLedger()}

	first, err := l.Run(ctx, in)
	require.NoError(t, err)
	second, err := l.Run(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Balances, second.Balances)

	balances, err := store.Balances(ctx)
	require.NoError(t, err)
	jan := findBalance(t, balances, "acc-clients", 202501)
	assert.True(t, jan.EndBalance.Equal(dec("500.00")), "re-applying the batch must not double-count")
	assert.Equal(t, second.BatchID, jan.DwhBatchID)
}

func TestRun_UnknownAccountHeldBack(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	ledger := append(testLedger(), model.RawLedgerLine{
		EntryNumber: 1003, LineNumber: 1, Timestamp: febTS, Account: 99999999, Debit: dec("10.00"),
	})
	result, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: ledger})
	require.NoError(t, err)

	assert.Equal(t, StatusWithAnomalies, result.Status)
	assert.Equal(t, 1, result.HeldLines)
	require.NotEmpty(t, result.Anomalies)
	assert.Equal(t, StageResolve, result.Anomalies[len(result.Anomalies)-1].Stage)

	// The entry persists, the dangling line does not.
	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Empty(t, entries[2].Lines)
}

func TestRun_UnbalancedEntryPersisted(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	ledger := []model.RawLedgerLine{
		{EntryNumber: 2001, LineNumber: 1, Timestamp: janTS, Account: 43000000, Debit: dec("100.00")},
		{EntryNumber: 2001, LineNumber: 2, Timestamp: janTS, Account: 70000000, Credit: dec("90.00")},
	}
	result, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: ledger})
	require.NoError(t, err)

	assert.Equal(t, StatusWithAnomalies, result.Status)

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusAnomalous, entries[0].EntryStatus)
}

func TestRun_ClassificationGapFlagged(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	accounts := append(testAccounts(), model.Account{ID: "acc-dup", Num: 43000000, Name: "Clientes bis"})
	result, err := l.Run(ctx, Input{Accounts: accounts, Ledger: nil})
	require.NoError(t, err)

	assert.Equal(t, StatusWithAnomalies, result.Status)
	assert.Equal(t, StageClassify, result.Anomalies[0].Stage)

	// First occurrence wins.
	stored, err := store.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
}

func TestRun_FullRefreshTruncates(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	_, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: testLedger()})
	require.NoError(t, err)

	// Reload only one entry with a full refresh; the other must be gone.
	_, err = l.Run(ctx, Input{
		Accounts:    testAccounts(),
		Ledger:      testLedger()[:2],
		FullRefresh: true,
	})
	require.NoError(t, err)

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_IncrementalLoadRechains(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	_, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: testLedger()[:2]})
	require.NoError(t, err)

	// Second batch brings the February entry; January balances stand,
	// February onward rechains from them.
	_, err = l.Run(ctx, Input{Ledger: testLedger()[2:]})
	require.NoError(t, err)

	balances, err := store.Balances(ctx)
	require.NoError(t, err)
	feb := findBalance(t, balances, "acc-bank", 202502)
	assert.True(t, feb.EndBalance.Equal(dec("500.00")))
	mar := findBalance(t, balances, "acc-clients", 202503)
	assert.True(t, mar.EndBalance.IsZero())
	assert.True(t, mar.IsCalculated)
}

func TestCloseFiscalPeriod(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	_, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: testLedger()})
	require.NoError(t, err)

	require.NoError(t, l.CloseFiscalPeriod(ctx, 2025, 1))

	periods, err := store.Periods(ctx)
	require.NoError(t, err)
	assert.True(t, periods[0].IsClosed)
	require.NotNil(t, periods[0].ClosingDate)

	// A later load must not reopen it.
	_, err = l.Run(ctx, Input{Ledger: testLedger()})
	require.NoError(t, err)
	periods, err = store.Periods(ctx)
	require.NoError(t, err)
	assert.True(t, periods[0].IsClosed)
}

func TestCloseFiscalPeriod_Invalid(t *testing.T) {
	l, _ := newTestLoader(t)
	ctx := context.Background()

	assert.Error(t, l.CloseFiscalPeriod(ctx, 2025, 13))
	assert.Error(t, l.CloseFiscalPeriod(ctx, 2030, 1), "unknown period")
}

func TestRecomputeBalances(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	_, err := l.Run(ctx, Input{Accounts: testAccounts(), Ledger: testLedger()})
	require.NoError(t, err)

	result, err := l.RecomputeBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.NotZero(t, result.Balances)

	balances, err := store.Balances(ctx)
	require.NoError(t, err)
	jan := findBalance(t, balances, "acc-clients", 202501)
	assert.True(t, jan.EndBalance.Equal(dec("500.00")))
}

func TestRun_LastMovementDate(t *testing.T) {
	l, store := newTestLoader(t)
	ctx := context.Background()

	accounts := testAccounts()
	accounts[0].Debit = dec("750.00")
	accounts[0].Credit = dec("250.00")
	accounts[0].Balance = dec("500.00")

	_, err := l.Run(ctx, Input{Accounts: accounts, Ledger: testLedger()})
	require.NoError(t, err)

	stored, err := store.Accounts(ctx)
	require.NoError(t, err)
	byID := make(map[string]model.NormalizedAccount, len(stored))
	for _, a := range stored {
		byID[a.AccountID] = a
	}

	moved := byID["acc-bank"]
	require.NotNil(t, moved.LastMovementDate)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *moved.LastMovementDate)
	assert.Equal(t, model.SourceBronzeAccounts, moved.DwhSourceTable)

	// No accumulated movements, no movement date.
	assert.Nil(t, byID["acc-sales"].LastMovementDate)
}

func findBalance(t *testing.T, balances []model.AccountBalance, accountID string, periodID int) model.AccountBalance {
	t.Helper()
	for _, b := range balances {
		if b.AccountID == accountID && b.PeriodID == periodID {
			return b
		}
	}
	t.Fatalf("no balance for account %s period %d", accountID, periodID)
	return model.AccountBalance{}
}
