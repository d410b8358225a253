package store

// Schema is the silver-layer DDL: five tables upserted by the pipeline
// plus two read-only reporting views. Idempotent; safe to re-apply.
const Schema = `
CREATE TABLE IF NOT EXISTS silver_accounts (
	account_id            text        NOT NULL,
	account_number        bigint      NOT NULL,
	account_name          text        NOT NULL DEFAULT '',
	account_group         text        NOT NULL DEFAULT '',
	account_type          text        NOT NULL DEFAULT '',
	account_subtype       text        NOT NULL DEFAULT '',
	parent_account_number bigint,
	account_level         int         NOT NULL DEFAULT 0,
	is_analytic           boolean     NOT NULL DEFAULT false,
	pgc_group             int         NOT NULL DEFAULT 0,
	pgc_subgroup          int         NOT NULL DEFAULT 0,
	pgc_detail            int         NOT NULL DEFAULT 0,
	balance_section       text        NOT NULL DEFAULT '',
	balance_subsection    text        NOT NULL DEFAULT '',
	balance_group         text        NOT NULL DEFAULT '',
	balance_subgroup      text        NOT NULL DEFAULT '',
	balance_order         int         NOT NULL DEFAULT 0,
	pyg_section           text        NOT NULL DEFAULT '',
	pyg_group             text        NOT NULL DEFAULT '',
	pyg_subgroup          text        NOT NULL DEFAULT '',
	pyg_order             int         NOT NULL DEFAULT 0,
	is_active             boolean     NOT NULL DEFAULT true,
	tax_relevant          boolean     NOT NULL DEFAULT false,
	needs_review          boolean     NOT NULL DEFAULT false,
	current_balance       numeric(18,2) NOT NULL DEFAULT 0,
	debit_balance         numeric(18,2) NOT NULL DEFAULT 0,
	credit_balance        numeric(18,2) NOT NULL DEFAULT 0,
	last_movement_date    date,
	dwh_created_at        timestamptz NOT NULL,
	dwh_updated_at        timestamptz NOT NULL,
	dwh_source_table      text        NOT NULL DEFAULT '',
	dwh_batch_id          text        NOT NULL,
	PRIMARY KEY (account_id),
	UNIQUE (account_number)
);

CREATE TABLE IF NOT EXISTS silver_fiscal_periods (
	period_id      int         NOT NULL,
	period_year    int         NOT NULL,
	period_quarter int         NOT NULL,
	period_month   int         NOT NULL,
	period_name    text        NOT NULL,
	start_date     date        NOT NULL,
	end_date       date        NOT NULL,
	is_closed      boolean     NOT NULL DEFAULT false,
	closing_date   timestamptz,
	dwh_created_at timestamptz NOT NULL,
	dwh_updated_at timestamptz NOT NULL,
	dwh_batch_id   text        NOT NULL,
	PRIMARY KEY (period_id),
	UNIQUE (period_year, period_month)
);

CREATE TABLE IF NOT EXISTS silver_journal_entries (
	entry_number       bigint      NOT NULL,
	entry_date         date        NOT NULL,
	original_timestamp bigint      NOT NULL,
	period_id          int,
	entry_type         text        NOT NULL DEFAULT '',
	description        text        NOT NULL DEFAULT '',
	doc_description    text        NOT NULL DEFAULT '',
	is_opening_entry   boolean     NOT NULL DEFAULT false,
	is_closing_entry   boolean     NOT NULL DEFAULT false,
	is_adjustment      boolean     NOT NULL DEFAULT false,
	entry_status       text        NOT NULL DEFAULT 'posted',
	total_debit        numeric(18,2) NOT NULL DEFAULT 0,
	total_credit       numeric(18,2) NOT NULL DEFAULT 0,
	dwh_created_at     timestamptz NOT NULL,
	dwh_updated_at     timestamptz NOT NULL,
	dwh_source_table   text        NOT NULL DEFAULT '',
	dwh_batch_id       text        NOT NULL,
	PRIMARY KEY (entry_number),
	FOREIGN KEY (period_id) REFERENCES silver_fiscal_periods (period_id)
);

CREATE TABLE IF NOT EXISTS silver_journal_lines (
	entry_number   bigint      NOT NULL,
	line_number    int         NOT NULL,
	account_id     text        NOT NULL,
	account_number bigint      NOT NULL,
	description    text        NOT NULL DEFAULT '',
	debit_amount   numeric(18,2) NOT NULL DEFAULT 0,
	credit_amount  numeric(18,2) NOT NULL DEFAULT 0,
	net_amount     numeric(18,2) NOT NULL DEFAULT 0,
	tags           text[]      NOT NULL DEFAULT '{}',
	tag1           text        NOT NULL DEFAULT '',
	tag2           text        NOT NULL DEFAULT '',
	tag3           text        NOT NULL DEFAULT '',
	tag4           text        NOT NULL DEFAULT '',
	cost_center    text        NOT NULL DEFAULT '',
	business_line  text        NOT NULL DEFAULT '',
	is_checked     boolean     NOT NULL DEFAULT false,
	is_reconciled  boolean     NOT NULL DEFAULT false,
	tax_relevant   boolean     NOT NULL DEFAULT false,
	dwh_created_at   timestamptz NOT NULL,
	dwh_updated_at   timestamptz NOT NULL,
	dwh_source_table text        NOT NULL DEFAULT '',
	dwh_batch_id     text        NOT NULL,
	PRIMARY KEY (entry_number, line_number),
	FOREIGN KEY (entry_number) REFERENCES silver_journal_entries (entry_number) ON DELETE CASCADE,
	FOREIGN KEY (account_id) REFERENCES silver_accounts (account_id)
);

CREATE TABLE IF NOT EXISTS silver_account_balances (
	account_id     text        NOT NULL,
	account_number bigint      NOT NULL,
	period_id      int         NOT NULL,
	start_balance  numeric(18,2) NOT NULL DEFAULT 0,
	period_debit   numeric(18,2) NOT NULL DEFAULT 0,
	period_credit  numeric(18,2) NOT NULL DEFAULT 0,
	end_balance    numeric(18,2) NOT NULL DEFAULT 0,
	is_calculated  boolean     NOT NULL DEFAULT false,
	dwh_created_at   timestamptz NOT NULL,
	dwh_updated_at   timestamptz NOT NULL,
	dwh_source_table text        NOT NULL DEFAULT '',
	dwh_batch_id     text        NOT NULL,
	PRIMARY KEY (account_id, period_id),
	FOREIGN KEY (account_id) REFERENCES silver_accounts (account_id),
	FOREIGN KEY (period_id) REFERENCES silver_fiscal_periods (period_id)
);

CREATE INDEX IF NOT EXISTS idx_journal_lines_account ON silver_journal_lines (account_id);
CREATE INDEX IF NOT EXISTS idx_journal_entries_period ON silver_journal_entries (period_id);
CREATE INDEX IF NOT EXISTS idx_balances_period ON silver_account_balances (period_id);

CREATE OR REPLACE VIEW v_balance_sheet AS
SELECT
	p.period_year,
	p.period_month,
	b.period_id,
	a.balance_section,
	a.balance_subsection,
	a.balance_group,
	a.balance_subgroup,
	a.balance_order,
	a.account_number,
	a.account_name,
	b.end_balance
FROM silver_account_balances b
JOIN silver_accounts a ON a.account_id = b.account_id
JOIN silver_fiscal_periods p ON p.period_id = b.period_id
WHERE a.account_type IN ('Asset', 'Liability', 'Equity')
ORDER BY b.period_id, a.balance_order, a.account_number;

CREATE OR REPLACE VIEW v_income_statement AS
SELECT
	p.period_year,
	p.period_month,
	b.period_id,
	a.pyg_section,
	a.pyg_group,
	a.pyg_subgroup,
	a.pyg_order,
	a.account_number,
	a.account_name,
	b.period_debit,
	b.period_credit,
	b.period_credit - b.period_debit AS period_result
FROM silver_account_balances b
JOIN silver_accounts a ON a.account_id = b.account_id
JOIN silver_fiscal_periods p ON p.period_id = b.period_id
WHERE a.account_type IN ('Income', 'Expense')
ORDER BY b.period_id, a.pyg_order, a.account_number;
`
