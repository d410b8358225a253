package bronze

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// AccountsHeader is the CSV header for accounts.csv exports.
const AccountsHeader = "id,num,name,group,debit,credit,balance"

const (
	accountFields = 7
	colAcctID     = 0
	colAcctNum    = 1
	colAcctName   = 2
	colAcctGroup  = 3
	colAcctDebit  = 4
	colAcctCredit = 5
	colAcctBal    = 6
)

// ReadAccounts reads all chart-of-accounts rows from an accounts.csv reader.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = accountFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts to an accounts.csv writer (including header).
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(AccountsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row ([]string).
func MarshalAccount(acct model.Account) []string {
	row := make([]string, accountFields)
	row[colAcctID] = acct.ID
	row[colAcctNum] = strconv.FormatInt(acct.Num, 10)
	row[colAcctName] = acct.Name
	row[colAcctGroup] = acct.Group

	if !acct.Debit.IsZero() {
		row[colAcctDebit] = acct.Debit.StringFixed(2)
	}
	if !acct.Credit.IsZero() {
		row[colAcctCredit] = acct.Credit.StringFixed(2)
	}
	if !acct.Balance.IsZero() {
		row[colAcctBal] = acct.Balance.StringFixed(2)
	}

	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != accountFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", accountFields, len(record))
	}

	num, err := strconv.ParseInt(record[colAcctNum], 10, 64)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing num %q: %w", record[colAcctNum], err)
	}

	debit, err := parseAmount(record[colAcctDebit])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing debit %q: %w", record[colAcctDebit], err)
	}

	credit, err := parseAmount(record[colAcctCredit])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing credit %q: %w", record[colAcctCredit], err)
	}

	balance, err := parseAmount(record[colAcctBal])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[colAcctBal], err)
	}

	return model.Account{
		ID:      record[colAcctID],
		Num:     num,
		Name:    record[colAcctName],
		Group:   record[colAcctGroup],
		Debit:   debit,
		Credit:  credit,
		Balance: balance,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
