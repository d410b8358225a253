package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/silverbooks-dev/silverbooks/internal/model"
	"github.com/silverbooks-dev/silverbooks/internal/silver"
)

// Postgres is the silver.Store backed by a Postgres database. All writes
// are idempotent upserts by natural key; provenance columns are stamped
// here, at write time.
type Postgres struct {
	pool *pgxpool.Pool

	// now is the provenance clock. Tests pin it.
	now func() time.Time
}

var _ silver.Store = (*Postgres)(nil)

// Open connects to the silver database and verifies the connection.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database DSN: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{pool: pool, now: time.Now}, nil
}

// Close releases the connection pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

// InitSchema applies the silver DDL. Safe to re-apply.
func (s *Postgres) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("applying silver schema: %w", err)
	}
	return nil
}

const upsertAccountSQL = `
INSERT INTO silver_accounts (
	account_id, account_number, account_name, account_group, account_type,
	account_subtype, parent_account_number, account_level, is_analytic,
	pgc_group, pgc_subgroup, pgc_detail,
	balance_section, balance_subsection, balance_group, balance_subgroup, balance_order,
	pyg_section, pyg_group, pyg_subgroup, pyg_order,
	is_active, tax_relevant, needs_review,
	current_balance, debit_balance, credit_balance, last_movement_date,
	dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
) VALUES (
	$1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $29, $30, $31
)
ON CONFLICT (account_number) DO UPDATE SET
	account_name = EXCLUDED.account_name,
	account_group = EXCLUDED.account_group,
	account_type = EXCLUDED.account_type,
	account_subtype = EXCLUDED.account_subtype,
	parent_account_number = EXCLUDED.parent_account_number,
	account_level = EXCLUDED.account_level,
	is_analytic = EXCLUDED.is_analytic,
	pgc_group = EXCLUDED.pgc_group,
	pgc_subgroup = EXCLUDED.pgc_subgroup,
	pgc_detail = EXCLUDED.pgc_detail,
	balance_section = EXCLUDED.balance_section,
	balance_subsection = EXCLUDED.balance_subsection,
	balance_group = EXCLUDED.balance_group,
	balance_subgroup = EXCLUDED.balance_subgroup,
	balance_order = EXCLUDED.balance_order,
	pyg_section = EXCLUDED.pyg_section,
	pyg_group = EXCLUDED.pyg_group,
	pyg_subgroup = EXCLUDED.pyg_subgroup,
	pyg_order = EXCLUDED.pyg_order,
	is_active = EXCLUDED.is_active,
	tax_relevant = EXCLUDED.tax_relevant,
	needs_review = EXCLUDED.needs_review,
	current_balance = EXCLUDED.current_balance,
	debit_balance = EXCLUDED.debit_balance,
	credit_balance = EXCLUDED.credit_balance,
	last_movement_date = EXCLUDED.last_movement_date,
	dwh_updated_at = EXCLUDED.dwh_updated_at,
	dwh_source_table = EXCLUDED.dwh_source_table,
	dwh_batch_id = EXCLUDED.dwh_batch_id`

func (s *Postgres) UpsertAccounts(ctx context.Context, batchID string, accounts []model.NormalizedAccount) error {
	if len(accounts) == 0 {
		return nil
	}
	now := s.now().UTC()

	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(upsertAccountSQL,
			a.AccountID, a.AccountNumber, a.AccountName, a.AccountGroup, string(a.AccountType),
			a.AccountSubtype, a.ParentAccountNumber, a.AccountLevel, a.IsAnalytic,
			a.PGCGroup, a.PGCSubgroup, a.PGCDetail,
			a.BalanceSection, a.BalanceSubsection, a.BalanceGroup, a.BalanceSubgroup, a.BalanceOrder,
			a.PygSection, a.PygGroup, a.PygSubgroup, a.PygOrder,
			a.IsActive, a.TaxRelevant, a.NeedsReview,
			a.CurrentBalance, a.DebitBalance, a.CreditBalance, a.LastMovementDate,
			now, model.SourceBronzeAccounts, batchID)
	}
	if err := s.sendBatch(ctx, batch, len(accounts)); err != nil {
		return fmt.Errorf("upserting accounts: %w", err)
	}
	return nil
}

// Close state is deliberately absent from the update list: a load never
// reopens or closes a period.
const upsertPeriodSQL = `
INSERT INTO silver_fiscal_periods (
	period_id, period_year, period_quarter, period_month, period_name,
	start_date, end_date, is_closed, closing_date,
	dwh_created_at, dwh_updated_at, dwh_batch_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10, $11)
ON CONFLICT (period_year, period_month) DO UPDATE SET
	period_name = EXCLUDED.period_name,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	dwh_updated_at = EXCLUDED.dwh_updated_at,
	dwh_batch_id = EXCLUDED.dwh_batch_id`

func (s *Postgres) UpsertPeriods(ctx context.Context, batchID string, periods []model.FiscalPeriod) error {
	if len(periods) == 0 {
		return nil
	}
	now := s.now().UTC()

	batch := &pgx.Batch{}
	for _, p := range periods {
		batch.Queue(upsertPeriodSQL,
			p.PeriodID, p.PeriodYear, p.PeriodQuarter, p.PeriodMonth, p.PeriodName,
			p.StartDate, p.EndDate, p.IsClosed, p.ClosingDate,
			now, batchID)
	}
	if err := s.sendBatch(ctx, batch, len(periods)); err != nil {
		return fmt.Errorf("upserting fiscal periods: %w", err)
	}
	return nil
}

const upsertEntrySQL = `
INSERT INTO silver_journal_entries (
	entry_number, entry_date, original_timestamp, period_id, entry_type,
	description, doc_description, is_opening_entry, is_closing_entry,
	is_adjustment, entry_status, total_debit, total_credit,
	dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
) VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14, $15, $16)
ON CONFLICT (entry_number) DO UPDATE SET
	entry_date = EXCLUDED.entry_date,
	original_timestamp = EXCLUDED.original_timestamp,
	period_id = EXCLUDED.period_id,
	entry_type = EXCLUDED.entry_type,
	description = EXCLUDED.description,
	doc_description = EXCLUDED.doc_description,
	is_opening_entry = EXCLUDED.is_opening_entry,
	is_closing_entry = EXCLUDED.is_closing_entry,
	is_adjustment = EXCLUDED.is_adjustment,
	entry_status = EXCLUDED.entry_status,
	total_debit = EXCLUDED.total_debit,
	total_credit = EXCLUDED.total_credit,
	dwh_updated_at = EXCLUDED.dwh_updated_at,
	dwh_source_table = EXCLUDED.dwh_source_table,
	dwh_batch_id = EXCLUDED.dwh_batch_id`

const insertLineSQL = `
INSERT INTO silver_journal_lines (
	entry_number, line_number, account_id, account_number, description,
	debit_amount, credit_amount, net_amount, tags, tag1, tag2, tag3, tag4,
	cost_center, business_line, is_checked, is_reconciled, tax_relevant,
	dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19, $20, $21)`

// UpsertEntries writes entries and their lines in one transaction.
// Replacing an entry replaces its lines: the previous line set is
// deleted before inserting the new one.
func (s *Postgres) UpsertEntries(ctx context.Context, batchID string, entries []model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	now := s.now().UTC()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx, upsertEntrySQL,
			e.EntryNumber, e.EntryDate, e.OriginalTimestamp, e.PeriodID, e.EntryType,
			e.Description, e.DocDescription, e.IsOpeningEntry, e.IsClosingEntry,
			e.IsAdjustment, string(e.EntryStatus), e.TotalDebit, e.TotalCredit,
			now, model.SourceBronzeLedger, batchID); err != nil {
			return fmt.Errorf("upserting entry %d: %w", e.EntryNumber, err)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM silver_journal_lines WHERE entry_number = $1`, e.EntryNumber); err != nil {
			return fmt.Errorf("replacing lines of entry %d: %w", e.EntryNumber, err)
		}

		batch := &pgx.Batch{}
		for _, l := range e.Lines {
			tags := l.Tags
			if tags == nil {
				tags = []string{}
			}
			batch.Queue(insertLineSQL,
				l.EntryNumber, l.LineNumber, l.AccountID, l.AccountNumber, l.Description,
				l.DebitAmount, l.CreditAmount, l.NetAmount, tags, l.Tag1, l.Tag2, l.Tag3, l.Tag4,
				l.CostCenter, l.BusinessLine, l.IsChecked, l.IsReconciled, l.TaxRelevant,
				now, model.SourceBronzeLedger, batchID)
		}
		br := tx.SendBatch(ctx, batch)
		for range e.Lines {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("inserting lines of entry %d: %w", e.EntryNumber, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("inserting lines of entry %d: %w", e.EntryNumber, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	return nil
}

const upsertBalanceSQL = `
INSERT INTO silver_account_balances (
	account_id, account_number, period_id, start_balance, period_debit,
	period_credit, end_balance, is_calculated,
	dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10, $11)
ON CONFLICT (account_id, period_id) DO UPDATE SET
	account_number = EXCLUDED.account_number,
	start_balance = EXCLUDED.start_balance,
	period_debit = EXCLUDED.period_debit,
	period_credit = EXCLUDED.period_credit,
	end_balance = EXCLUDED.end_balance,
	is_calculated = EXCLUDED.is_calculated,
	dwh_updated_at = EXCLUDED.dwh_updated_at,
	dwh_source_table = EXCLUDED.dwh_source_table,
	dwh_batch_id = EXCLUDED.dwh_batch_id`

func (s *Postgres) UpsertBalances(ctx context.Context, batchID string, balances []model.AccountBalance) error {
	if len(balances) == 0 {
		return nil
	}
	now := s.now().UTC()

	batch := &pgx.Batch{}
	for _, b := range balances {
		batch.Queue(upsertBalanceSQL,
			b.AccountID, b.AccountNumber, b.PeriodID, b.StartBalance, b.PeriodDebit,
			b.PeriodCredit, b.EndBalance, b.IsCalculated,
			now, model.SourceBronzeLedger, batchID)
	}
	if err := s.sendBatch(ctx, batch, len(balances)); err != nil {
		return fmt.Errorf("upserting balances: %w", err)
	}
	return nil
}

func (s *Postgres) Accounts(ctx context.Context) ([]model.NormalizedAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT account_id, account_number, account_name, account_group, account_type,
		       account_subtype, COALESCE(parent_account_number, 0), account_level, is_analytic,
		       pgc_group, pgc_subgroup, pgc_detail,
		       balance_section, balance_subsection, balance_group, balance_subgroup, balance_order,
		       pyg_section, pyg_group, pyg_subgroup, pyg_order,
		       is_active, tax_relevant, needs_review,
		       current_balance, debit_balance, credit_balance, last_movement_date,
		       dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
		FROM silver_accounts
		ORDER BY account_number`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []model.NormalizedAccount
	for rows.Next() {
		var a model.NormalizedAccount
		var accountType string
		if err := rows.Scan(
			&a.AccountID, &a.AccountNumber, &a.AccountName, &a.AccountGroup, &accountType,
			&a.AccountSubtype, &a.ParentAccountNumber, &a.AccountLevel, &a.IsAnalytic,
			&a.PGCGroup, &a.PGCSubgroup, &a.PGCDetail,
			&a.BalanceSection, &a.BalanceSubsection, &a.BalanceGroup, &a.BalanceSubgroup, &a.BalanceOrder,
			&a.PygSection, &a.PygGroup, &a.PygSubgroup, &a.PygOrder,
			&a.IsActive, &a.TaxRelevant, &a.NeedsReview,
			&a.CurrentBalance, &a.DebitBalance, &a.CreditBalance, &a.LastMovementDate,
			&a.DwhCreatedAt, &a.DwhUpdatedAt, &a.DwhSourceTable, &a.DwhBatchID); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.AccountType = model.AccountType(accountType)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) Periods(ctx context.Context) ([]model.FiscalPeriod, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT period_id, period_year, period_quarter, period_month, period_name,
		       start_date, end_date, is_closed, closing_date,
		       dwh_created_at, dwh_updated_at, dwh_batch_id
		FROM silver_fiscal_periods
		ORDER BY period_id`)
	if err != nil {
		return nil, fmt.Errorf("querying fiscal periods: %w", err)
	}
	defer rows.Close()

	var out []model.FiscalPeriod
	for rows.Next() {
		var p model.FiscalPeriod
		if err := rows.Scan(
			&p.PeriodID, &p.PeriodYear, &p.PeriodQuarter, &p.PeriodMonth, &p.PeriodName,
			&p.StartDate, &p.EndDate, &p.IsClosed, &p.ClosingDate,
			&p.DwhCreatedAt, &p.DwhUpdatedAt, &p.DwhBatchID); err != nil {
			return nil, fmt.Errorf("scanning fiscal period: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) Entries(ctx context.Context) ([]model.JournalEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT entry_number, entry_date, original_timestamp, COALESCE(period_id, 0), entry_type,
		       description, doc_description, is_opening_entry, is_closing_entry,
		       is_adjustment, entry_status, total_debit, total_credit,
		       dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
		FROM silver_journal_entries
		ORDER BY entry_number`)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	byNumber := make(map[int64]*model.JournalEntry)
	var numbers []int64
	for rows.Next() {
		var e model.JournalEntry
		var status string
		if err := rows.Scan(
			&e.EntryNumber, &e.EntryDate, &e.OriginalTimestamp, &e.PeriodID, &e.EntryType,
			&e.Description, &e.DocDescription, &e.IsOpeningEntry, &e.IsClosingEntry,
			&e.IsAdjustment, &status, &e.TotalDebit, &e.TotalCredit,
			&e.DwhCreatedAt, &e.DwhUpdatedAt, &e.DwhSourceTable, &e.DwhBatchID); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.EntryStatus = model.EntryStatus(status)
		byNumber[e.EntryNumber] = &e
		numbers = append(numbers, e.EntryNumber)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := s.pool.Query(ctx, `
		SELECT entry_number, line_number, account_id, account_number, description,
		       debit_amount, credit_amount, net_amount, tags, tag1, tag2, tag3, tag4,
		       cost_center, business_line, is_checked, is_reconciled, tax_relevant,
		       dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
		FROM silver_journal_lines
		ORDER BY entry_number, line_number`)
	if err != nil {
		return nil, fmt.Errorf("querying journal lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l model.JournalLine
		if err := lineRows.Scan(
			&l.EntryNumber, &l.LineNumber, &l.AccountID, &l.AccountNumber, &l.Description,
			&l.DebitAmount, &l.CreditAmount, &l.NetAmount, &l.Tags, &l.Tag1, &l.Tag2, &l.Tag3, &l.Tag4,
			&l.CostCenter, &l.BusinessLine, &l.IsChecked, &l.IsReconciled, &l.TaxRelevant,
			&l.DwhCreatedAt, &l.DwhUpdatedAt, &l.DwhSourceTable, &l.DwhBatchID); err != nil {
			return nil, fmt.Errorf("scanning journal line: %w", err)
		}
		if e, ok := byNumber[l.EntryNumber]; ok {
			e.Lines = append(e.Lines, l)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	out := make([]model.JournalEntry, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, *byNumber[n])
	}
	return out, nil
}

func (s *Postgres) Balances(ctx context.Context) ([]model.AccountBalance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT account_id, account_number, period_id, start_balance, period_debit,
		       period_credit, end_balance, is_calculated,
		       dwh_created_at, dwh_updated_at, dwh_source_table, dwh_batch_id
		FROM silver_account_balances
		ORDER BY account_number, period_id`)
	if err != nil {
		return nil, fmt.Errorf("querying balances: %w", err)
	}
	defer rows.Close()

	var out []model.AccountBalance
	for rows.Next() {
		var b model.AccountBalance
		if err := rows.Scan(
			&b.AccountID, &b.AccountNumber, &b.PeriodID, &b.StartBalance, &b.PeriodDebit,
			&b.PeriodCredit, &b.EndBalance, &b.IsCalculated,
			&b.DwhCreatedAt, &b.DwhUpdatedAt, &b.DwhSourceTable, &b.DwhBatchID); err != nil {
			return nil, fmt.Errorf("scanning balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Postgres) ClosePeriod(ctx context.Context, periodID int, closingDate time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE silver_fiscal_periods
		SET is_closed = true, closing_date = $2, dwh_updated_at = $3
		WHERE period_id = $1`,
		periodID, closingDate, s.now().UTC())
	if err != nil {
		return fmt.Errorf("closing period %d: %w", periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("fiscal period %d not found", periodID)
	}
	return nil
}

func (s *Postgres) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		TRUNCATE silver_journal_lines, silver_account_balances,
		         silver_journal_entries, silver_accounts, silver_fiscal_periods`)
	if err != nil {
		return fmt.Errorf("truncating silver tables: %w", err)
	}
	return nil
}

func (s *Postgres) sendBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return br.Close()
}
