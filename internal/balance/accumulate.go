package balance

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// DefaultWorkers bounds the per-account fan-out.
const DefaultWorkers = 8

// Accumulator computes per-account, per-period balances chained
// chronologically. Accounts are independent and processed concurrently;
// within one account the fold is strictly sequential, since period N+1
// cannot start before period N's end balance exists.
type Accumulator struct {
	workers int
}

// New creates an Accumulator with a bounded worker count.
func New(workers int) *Accumulator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Accumulator{workers: workers}
}

type accountKey struct {
	id     string
	number int64
}

type movement struct {
	debit  decimal.Decimal
	credit decimal.Decimal
}

// Accumulate computes the full dense balance grid: one row per known
// account per period, carry-forward rows included. Entries without a
// resolved period are skipped (they were reported upstream). An empty
// period list is a structural error and aborts the batch.
func (a *Accumulator) Accumulate(entries []model.JournalEntry, periods []model.FiscalPeriod) ([]model.AccountBalance, error) {
	return a.accumulate(entries, periods, nil, 0)
}

// RecomputeFrom recomputes balances for every period at or after
// fromPeriodID, seeding each account's start balance from the existing
// row just before that period. Late-arriving lines invalidate the whole
// chain from the earliest period they touch, which is exactly this
// operation. Rows before fromPeriodID are returned unchanged.
func (a *Accumulator) RecomputeFrom(existing []model.AccountBalance, entries []model.JournalEntry, periods []model.FiscalPeriod, fromPeriodID int) ([]model.AccountBalance, error) {
	recomputed, err := a.accumulate(entries, periods, existing, fromPeriodID)
	if err != nil {
		return nil, err
	}

	var out []model.AccountBalance
	for _, b := range existing {
		if b.PeriodID < fromPeriodID {
			out = append(out, b)
		}
	}
	out = append(out, recomputed...)
	sortBalances(out)
	return out, nil
}

// EarliestTouchedPeriod returns the smallest resolved period among the
// given entries, or 0 when none resolve.
func EarliestTouchedPeriod(entries []model.JournalEntry) int {
	earliest := 0
	for _, e := range entries {
		if e.PeriodID == 0 {
			continue
		}
		if earliest == 0 || e.PeriodID < earliest {
			earliest = e.PeriodID
		}
	}
	return earliest
}

func (a *Accumulator) accumulate(entries []model.JournalEntry, periods []model.FiscalPeriod, existing []model.AccountBalance, fromPeriodID int) ([]model.AccountBalance, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("no fiscal periods available")
	}

	ordered := make([]model.FiscalPeriod, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].PeriodID < ordered[j].PeriodID })

	known := make(map[int]bool, len(ordered))
	for _, p := range ordered {
		known[p.PeriodID] = true
	}

	// Gather movements per account per period.
	movements := make(map[accountKey]map[int]movement)
	for _, e := range entries {
		if e.PeriodID == 0 {
			continue
		}
		if !known[e.PeriodID] {
			return nil, fmt.Errorf("entry %d references unknown period %d", e.EntryNumber, e.PeriodID)
		}
		for _, l := range e.Lines {
			key := accountKey{l.AccountID, l.AccountNumber}
			byPeriod := movements[key]
			if byPeriod == nil {
				byPeriod = make(map[int]movement)
				movements[key] = byPeriod
			}
			m := byPeriod[e.PeriodID]
			m.debit = m.debit.Add(l.DebitAmount)
			m.credit = m.credit.Add(l.CreditAmount)
			byPeriod[e.PeriodID] = m
		}
	}

	// Accounts already holding balances stay in the grid even when the
	// new batch brings them no lines.
	for _, b := range existing {
		key := accountKey{b.AccountID, b.AccountNumber}
		if movements[key] == nil {
			movements[key] = make(map[int]movement)
		}
	}

	accounts := make([]accountKey, 0, len(movements))
	for key := range movements {
		accounts = append(accounts, key)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].number < accounts[j].number })

	// Seed start balances from the chain state just before fromPeriodID.
	seeds := make(map[accountKey]decimal.Decimal)
	if fromPeriodID > 0 {
		prior := 0
		for _, p := range ordered {
			if p.PeriodID < fromPeriodID && p.PeriodID > prior {
				prior = p.PeriodID
			}
		}
		for _, b := range existing {
			if b.PeriodID == prior && prior != 0 {
				seeds[accountKey{b.AccountID, b.AccountNumber}] = b.EndBalance
			}
		}
	}

	chain := ordered
	if fromPeriodID > 0 {
		idx := sort.Search(len(ordered), func(i int) bool { return ordered[i].PeriodID >= fromPeriodID })
		chain = ordered[idx:]
	}

	// Fan out per account; each account folds its periods sequentially.
	results := make([][]model.AccountBalance, len(accounts))
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.workers)
	for i, key := range accounts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, key accountKey) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = chainAccount(key, movements[key], chain, seeds[key])
		}(i, key)
	}
	wg.Wait()

	var out []model.AccountBalance
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

// chainAccount folds one account's periods in chronological order with
// the carried end balance as accumulator state.
func chainAccount(key accountKey, byPeriod map[int]movement, periods []model.FiscalPeriod, seed decimal.Decimal) []model.AccountBalance {
	rows := make([]model.AccountBalance, 0, len(periods))
	start := seed
	for _, p := range periods {
		m, active := byPeriod[p.PeriodID]
		end := start.Add(m.debit).Sub(m.credit)
		rows = append(rows, model.AccountBalance{
			AccountID:     key.id,
			AccountNumber: key.number,
			PeriodID:      p.PeriodID,
			StartBalance:  start,
			PeriodDebit:   m.debit,
			PeriodCredit:  m.credit,
			EndBalance:    end,
			IsCalculated:  !active,
		})
		start = end
	}
	return rows
}

func sortBalances(balances []model.AccountBalance) {
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].AccountNumber != balances[j].AccountNumber {
			return balances[i].AccountNumber < balances[j].AccountNumber
		}
		return balances[i].PeriodID < balances[j].PeriodID
	})
}
