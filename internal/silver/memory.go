package silver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// MemoryStore is an in-memory Store used by tests and dry runs. It
// mirrors the Postgres store's upsert semantics, including provenance
// stamping and the period-close rule.
type MemoryStore struct {
	mu sync.Mutex

	accounts map[int64]model.NormalizedAccount
	periods  map[int]model.FiscalPeriod
	entries  map[int64]model.JournalEntry
	balances map[balanceKey]model.AccountBalance

	// Now is the clock used for provenance stamps. Tests pin it.
	Now func() time.Time
}

type balanceKey struct {
	accountID string
	periodID  int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[int64]model.NormalizedAccount),
		periods:  make(map[int]model.FiscalPeriod),
		entries:  make(map[int64]model.JournalEntry),
		balances: make(map[balanceKey]model.AccountBalance),
		Now:      time.Now,
	}
}

func (s *MemoryStore) stamp(p *model.Provenance, existing model.Provenance, source, batchID string) {
	now := s.Now().UTC()
	p.DwhCreatedAt = existing.DwhCreatedAt
	if p.DwhCreatedAt.IsZero() {
		p.DwhCreatedAt = now
	}
	p.DwhUpdatedAt = now
	p.DwhSourceTable = source
	p.DwhBatchID = batchID
}

func (s *MemoryStore) UpsertAccounts(_ context.Context, batchID string, accounts []model.NormalizedAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		s.stamp(&a.Provenance, s.accounts[a.AccountNumber].Provenance, model.SourceBronzeAccounts, batchID)
		s.accounts[a.AccountNumber] = a
	}
	return nil
}

func (s *MemoryStore) UpsertPeriods(_ context.Context, batchID string, periods []model.FiscalPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range periods {
		existing, ok := s.periods[p.PeriodID]
		if ok {
			// Close state only changes through ClosePeriod.
			p.IsClosed = existing.IsClosed
			p.ClosingDate = existing.ClosingDate
		}
		s.stamp(&p.Provenance, existing.Provenance, "", batchID)
		s.periods[p.PeriodID] = p
	}
	return nil
}

func (s *MemoryStore) UpsertEntries(_ context.Context, batchID string, entries []model.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.stamp(&e.Provenance, s.entries[e.EntryNumber].Provenance, model.SourceBronzeLedger, batchID)
		// Replacing an entry replaces its lines with it.
		lines := make([]model.JournalLine, len(e.Lines))
		copy(lines, e.Lines)
		for i := range lines {
			s.stamp(&lines[i].Provenance, model.Provenance{}, model.SourceBronzeLedger, batchID)
		}
		e.Lines = lines
		s.entries[e.EntryNumber] = e
	}
	return nil
}

func (s *MemoryStore) UpsertBalances(_ context.Context, batchID string, balances []model.AccountBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range balances {
		key := balanceKey{b.AccountID, b.PeriodID}
		s.stamp(&b.Provenance, s.balances[key].Provenance, model.SourceBronzeLedger, batchID)
		s.balances[key] = b
	}
	return nil
}

func (s *MemoryStore) Accounts(_ context.Context) ([]model.NormalizedAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.NormalizedAccount, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}

func (s *MemoryStore) Periods(_ context.Context) ([]model.FiscalPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.FiscalPeriod, 0, len(s.periods))
	for _, p := range s.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodID < out[j].PeriodID })
	return out, nil
}

func (s *MemoryStore) Entries(_ context.Context) ([]model.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.JournalEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryNumber < out[j].EntryNumber })
	return out, nil
}

func (s *MemoryStore) Balances(_ context.Context) ([]model.AccountBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.AccountBalance, 0, len(s.balances))
	for _, b := range s.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountID != out[j].AccountID {
			return out[i].AccountID < out[j].AccountID
		}
		return out[i].PeriodID < out[j].PeriodID
	})
	return out, nil
}

func (s *MemoryStore) ClosePeriod(_ context.Context, periodID int, closingDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodID]
	if !ok {
		return fmt.Errorf("fiscal period %d not found", periodID)
	}
	p.IsClosed = true
	d := closingDate
	p.ClosingDate = &d
	p.DwhUpdatedAt = s.Now().UTC()
	s.periods[periodID] = p
	return nil
}

func (s *MemoryStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[int64]model.NormalizedAccount)
	s.periods = make(map[int]model.FiscalPeriod)
	s.entries = make(map[int64]model.JournalEntry)
	s.balances = make(map[balanceKey]model.AccountBalance)
	return nil
}
