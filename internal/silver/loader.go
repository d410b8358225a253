package silver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/silverbooks-dev/silverbooks/internal/aggregate"
	"github.com/silverbooks-dev/silverbooks/internal/balance"
	"github.com/silverbooks-dev/silverbooks/internal/batch"
	"github.com/silverbooks-dev/silverbooks/internal/model"
	"github.com/silverbooks-dev/silverbooks/internal/period"
	"github.com/silverbooks-dev/silverbooks/internal/pgc"
)

// Options tune a Loader. Zero values select the defaults.
type Options struct {
	Tolerance decimal.Decimal
	TagSlots  int
	Workers   int
}

// Input is one bronze extract to load.
type Input struct {
	Accounts []model.Account
	Ledger   []model.RawLedgerLine

	// FullRefresh truncates the silver tables before loading.
	FullRefresh bool
}

// BatchResult summarizes one pipeline run. A batch that hit per-record
// anomalies still reports its counts; the anomaly list is itemized, never
// a bare failure.
type BatchResult struct {
	BatchID string
	Status  string

	Accounts  int
	Periods   int
	Entries   int
	Lines     int
	Balances  int
	HeldLines int

	Anomalies []Anomaly
}

const (
	StatusCompleted     = "completed"
	StatusWithAnomalies = "completed_with_anomalies"
)

// Loader runs the bronze-to-silver pipeline: classify accounts, aggregate
// ledger lines into entries, resolve lines to accounts, accumulate
// period balances, and upsert everything under one batch ID.
type Loader struct {
	store Store
	table *pgc.Table
	opts  Options
	log   zerolog.Logger

	// now is the batch clock. Tests pin it.
	now func() time.Time
}

// NewLoader creates a Loader over a store and a PGC classification table.
func NewLoader(store Store, table *pgc.Table, opts Options, log zerolog.Logger) *Loader {
	return &Loader{store: store, table: table, opts: opts, log: log, now: time.Now}
}

// Run executes one load batch. Per-record anomalies are collected into
// the result; structural errors abort before any write of the failing
// stage.
func (l *Loader) Run(ctx context.Context, in Input) (*BatchResult, error) {
	now := l.now().UTC()
	batchID := batch.NewID(now)
	log := l.log.With().Str("batch_id", batchID).Logger()
	log.Info().Int("accounts", len(in.Accounts)).Int("ledger_lines", len(in.Ledger)).Msg("starting load")

	if in.FullRefresh {
		if err := l.store.Truncate(ctx); err != nil {
			return nil, fmt.Errorf("truncating silver tables: %w", err)
		}
		log.Info().Msg("silver tables truncated for full refresh")
	}

	existingPeriods, err := l.store.Periods(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading fiscal periods: %w", err)
	}
	periods := refreshPeriods(existingPeriods, in.Ledger, now)
	calendar := period.NewCalendar(periods)

	// Classification and aggregation have no mutual dependency.
	var (
		wg         sync.WaitGroup
		normalized []model.NormalizedAccount
		gaps       []pgc.Gap
		entries    []model.JournalEntry
		issues     []aggregate.Issue
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		normalized, gaps = pgc.NewClassifier(l.table).Classify(in.Accounts)
	}()
	go func() {
		defer wg.Done()
		agg := aggregate.New(aggregate.Options{Tolerance: l.opts.Tolerance, TagSlots: l.opts.TagSlots})
		entries, issues = agg.Aggregate(in.Ledger, calendar)
	}()
	wg.Wait()

	// An account with any accumulated debit or credit moved at least
	// once; the bronze extract date is the closest known movement date.
	extractDate := now.Truncate(24 * time.Hour)
	for i := range normalized {
		if !normalized[i].DebitBalance.IsZero() || !normalized[i].CreditBalance.IsZero() {
			d := extractDate
			normalized[i].LastMovementDate = &d
		}
	}

	anomalies := append(gapAnomalies(gaps), issueAnomalies(issues)...)

	known, err := l.knownAccounts(ctx, normalized)
	if err != nil {
		return nil, err
	}
	entries, held := resolveLines(entries, known)
	anomalies = append(anomalies, held...)

	if err := l.store.UpsertPeriods(ctx, batchID, periods); err != nil {
		return nil, fmt.Errorf("upserting fiscal periods: %w", err)
	}
	if err := l.store.UpsertAccounts(ctx, batchID, normalized); err != nil {
		return nil, fmt.Errorf("upserting accounts: %w", err)
	}
	if err := l.store.UpsertEntries(ctx, batchID, entries); err != nil {
		return nil, fmt.Errorf("upserting journal entries: %w", err)
	}

	balances, err := l.accumulate(ctx, entries, calendar.Ordered())
	if err != nil {
		return nil, err
	}
	if err := l.store.UpsertBalances(ctx, batchID, balances); err != nil {
		return nil, fmt.Errorf("upserting balances: %w", err)
	}

	result := &BatchResult{
		BatchID:   batchID,
		Status:    StatusCompleted,
		Accounts:  len(normalized),
		Periods:   len(periods),
		Entries:   len(entries),
		Lines:     countLines(entries),
		Balances:  len(balances),
		HeldLines: len(held),
		Anomalies: anomalies,
	}
	if len(anomalies) > 0 {
		result.Status = StatusWithAnomalies
	}
	log.Info().
		Str("status", result.Status).
		Int("entries", result.Entries).
		Int("balances", result.Balances).
		Int("anomalies", len(anomalies)).
		Msg("load finished")
	return result, nil
}

// RecomputeBalances rebuilds the whole balance grid from the stored
// journal under a fresh batch ID.
func (l *Loader) RecomputeBalances(ctx context.Context) (*BatchResult, error) {
	now := l.now().UTC()
	batchID := batch.NewID(now)

	entries, err := l.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading journal entries: %w", err)
	}
	periods, err := l.store.Periods(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading fiscal periods: %w", err)
	}

	balances, err := balance.New(l.opts.Workers).Accumulate(entries, periods)
	if err != nil {
		return nil, fmt.Errorf("accumulating balances: %w", err)
	}
	if err := l.store.UpsertBalances(ctx, batchID, balances); err != nil {
		return nil, fmt.Errorf("upserting balances: %w", err)
	}

	l.log.Info().Str("batch_id", batchID).Int("balances", len(balances)).Msg("balances recomputed")
	return &BatchResult{BatchID: batchID, Status: StatusCompleted, Balances: len(balances)}, nil
}

// CloseFiscalPeriod marks (year, month) closed. Closing is always an
// explicit operation; no load path triggers it.
func (l *Loader) CloseFiscalPeriod(ctx context.Context, year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month %d", month)
	}
	closingDate := l.now().UTC()
	if err := l.store.ClosePeriod(ctx, period.ID(year, month), closingDate); err != nil {
		return fmt.Errorf("closing period %04d-%02d: %w", year, month, err)
	}
	l.log.Info().Int("year", year).Int("month", month).Msg("fiscal period closed")
	return nil
}

// refreshPeriods extends the known period list to cover the ledger's
// date range. Existing rows win so close state survives regeneration.
func refreshPeriods(existing []model.FiscalPeriod, ledger []model.RawLedgerLine, now time.Time) []model.FiscalPeriod {
	if len(ledger) == 0 {
		return existing
	}

	minTS := ledger[0].Timestamp
	for _, l := range ledger[1:] {
		if l.Timestamp < minTS {
			minTS = l.Timestamp
		}
	}
	from, to := period.LedgerRange(minTS, now)
	generated := period.Generate(from, to)

	byID := make(map[int]bool, len(existing))
	for _, p := range existing {
		byID[p.PeriodID] = true
	}
	merged := append([]model.FiscalPeriod(nil), existing...)
	for _, p := range generated {
		if !byID[p.PeriodID] {
			merged = append(merged, p)
		}
	}
	return merged
}

// knownAccounts maps padded account numbers to account IDs, combining
// this batch's classifications with accounts already in silver.
func (l *Loader) knownAccounts(ctx context.Context, normalized []model.NormalizedAccount) (map[int64]string, error) {
	stored, err := l.store.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	known := make(map[int64]string, len(stored)+len(normalized))
	for _, a := range stored {
		known[a.AccountNumber] = a.AccountID
	}
	for _, a := range normalized {
		known[a.AccountNumber] = a.AccountID
	}
	return known, nil
}

// resolveLines fills AccountID on every line. Lines naming accounts
// absent from the chart are held back and reported; they are never
// persisted dangling.
func resolveLines(entries []model.JournalEntry, known map[int64]string) ([]model.JournalEntry, []Anomaly) {
	var held []Anomaly

	out := make([]model.JournalEntry, 0, len(entries))
	for _, e := range entries {
		kept := make([]model.JournalLine, 0, len(e.Lines))
		for _, line := range e.Lines {
			padded, _ := pgc.PadAccountNumber(line.AccountNumber)
			id, ok := known[padded]
			if !ok {
				held = append(held, Anomaly{
					Stage:  StageResolve,
					Ref:    fmt.Sprintf("entry %d line %d", line.EntryNumber, line.LineNumber),
					Reason: fmt.Sprintf("unknown account %d", line.AccountNumber),
				})
				continue
			}
			line.AccountNumber = padded
			line.AccountID = id
			line.TaxRelevant = pgc.TaxRelevant(padded)
			kept = append(kept, line)
		}
		e.Lines = kept
		out = append(out, e)
	}
	return out, held
}

func (l *Loader) accumulate(ctx context.Context, batchEntries []model.JournalEntry, periods []model.FiscalPeriod) ([]model.AccountBalance, error) {
	from := balance.EarliestTouchedPeriod(batchEntries)
	if from == 0 {
		return nil, nil
	}

	// Balances chain across batches, so recompute over the full stored
	// journal merged with this batch (batch entries win by number).
	stored, err := l.store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading journal entries: %w", err)
	}
	inBatch := make(map[int64]bool, len(batchEntries))
	for _, e := range batchEntries {
		inBatch[e.EntryNumber] = true
	}
	all := append([]model.JournalEntry(nil), batchEntries...)
	for _, e := range stored {
		if !inBatch[e.EntryNumber] {
			all = append(all, e)
		}
	}

	existing, err := l.store.Balances(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading balances: %w", err)
	}

	acc := balance.New(l.opts.Workers)
	if len(existing) == 0 {
		balances, err := acc.Accumulate(all, periods)
		if err != nil {
			return nil, fmt.Errorf("accumulating balances: %w", err)
		}
		return balances, nil
	}
	balances, err := acc.RecomputeFrom(existing, all, periods, from)
	if err != nil {
		return nil, fmt.Errorf("recomputing balances: %w", err)
	}
	return balances, nil
}

func countLines(entries []model.JournalEntry) int {
	n := 0
	for _, e := range entries {
		n += len(e.Lines)
	}
	return n
}
