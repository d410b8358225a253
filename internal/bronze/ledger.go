package bronze

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// LedgerHeader is the CSV header for dailyledger.csv exports.
const LedgerHeader = "entrynumber,line,timestamp,type,description,docdescription,account,debit,credit,tags,checked"

// Tags travel as a single CSV field with entries separated by "|",
// since tag text routinely contains commas.
const tagSeparator = "|"

const (
	ledgerFields = 11
	colEntryNum  = 0
	colLine      = 1
	colTimestamp = 2
	colType      = 3
	colDesc      = 4
	colDocDesc   = 5
	colAccount   = 6
	colDebit     = 7
	colCredit    = 8
	colTags      = 9
	colChecked   = 10
)

// ReadLedger reads all daily-ledger rows from a dailyledger.csv reader.
func ReadLedger(r io.Reader) ([]model.RawLedgerLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = ledgerFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var lines []model.RawLedgerLine
	for i, rec := range records[1:] {
		line, err := UnmarshalLedgerLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLedger writes ledger lines to a dailyledger.csv writer (including header).
func WriteLedger(w io.Writer, lines []model.RawLedgerLine) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(LedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, line := range lines {
		if err := cw.Write(MarshalLedgerLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalLedgerLine converts a RawLedgerLine to a CSV row ([]string).
func MarshalLedgerLine(line model.RawLedgerLine) []string {
	row := make([]string, ledgerFields)
	row[colEntryNum] = strconv.FormatInt(line.EntryNumber, 10)
	row[colLine] = strconv.Itoa(line.LineNumber)
	row[colTimestamp] = strconv.FormatInt(line.Timestamp, 10)
	row[colType] = line.Type
	row[colDesc] = line.Description
	row[colDocDesc] = line.DocDescription
	row[colAccount] = strconv.FormatInt(line.Account, 10)

	if !line.Debit.IsZero() {
		row[colDebit] = line.Debit.StringFixed(2)
	}
	if !line.Credit.IsZero() {
		row[colCredit] = line.Credit.StringFixed(2)
	}

	row[colTags] = strings.Join(line.Tags, tagSeparator)
	row[colChecked] = line.Checked

	return row
}

// UnmarshalLedgerLine converts a CSV row to a RawLedgerLine.
func UnmarshalLedgerLine(record []string) (model.RawLedgerLine, error) {
	if len(record) != ledgerFields {
		return model.RawLedgerLine{}, fmt.Errorf("expected %d fields, got %d", ledgerFields, len(record))
	}

	entryNumber, err := strconv.ParseInt(record[colEntryNum], 10, 64)
	if err != nil {
		return model.RawLedgerLine{}, fmt.Errorf("parsing entrynumber %q: %w", record[colEntryNum], err)
	}

	lineNumber, err := strconv.Atoi(record[colLine])
	if err != nil {
		return model.RawLedgerLine{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}

	timestamp, err := strconv.ParseInt(record[colTimestamp], 10, 64)
	if err != nil {
		return model.RawLedgerLine{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	account, err := strconv.ParseInt(record[colAccount], 10, 64)
	if err != nil {
		return model.RawLedgerLine{}, fmt.Errorf("parsing account %q: %w", record[colAccount], err)
	}

	debit, err := parseAmount(record[colDebit])
	if err != nil {
		return model.RawLedgerLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
	}

	credit, err := parseAmount(record[colCredit])
	if err != nil {
		return model.RawLedgerLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
	}

	var tags []string
	if record[colTags] != "" {
		tags = strings.Split(record[colTags], tagSeparator)
	}

	return model.RawLedgerLine{
		EntryNumber:    entryNumber,
		LineNumber:     lineNumber,
		Timestamp:      timestamp,
		Type:           record[colType],
		Description:    record[colDesc],
		DocDescription: record[colDocDesc],
		Account:        account,
		Debit:          debit,
		Credit:         credit,
		Tags:           tags,
		Checked:        record[colChecked],
	}, nil
}
