package bronze

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

func TestLedgerRoundTrip(t *testing.T) {
	lines := []model.RawLedgerLine{
		{
			EntryNumber:    1001,
			LineNumber:     1,
			Timestamp:      1736935200,
			Type:           "Factura",
			Description:    "Venta mercaderías",
			DocDescription: "FRA 2025-001",
			Account:        43000000,
			Debit:          dec("2420.00"),
			Tags:           []string{"Proyecto Norte", "CC:VENTAS"},
			Checked:        "Yes",
		},
		{
			EntryNumber: 1001,
			LineNumber:  2,
			Timestamp:   1736935200,
			Type:        "Factura",
			Description: "Venta mercaderías",
			Account:     70000000,
			Credit:      dec("2420.00"),
			Checked:     "No",
		},
	}

	var buf bytes.Buffer
	err := WriteLedger(&buf, lines)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(buf.String(), "entrynumber,"))

	got, err := ReadLedger(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range lines {
		assert.Equal(t, lines[i].EntryNumber, got[i].EntryNumber)
		assert.Equal(t, lines[i].LineNumber, got[i].LineNumber)
		assert.Equal(t, lines[i].Timestamp, got[i].Timestamp)
		assert.Equal(t, lines[i].Type, got[i].Type)
		assert.Equal(t, lines[i].Description, got[i].Description)
		assert.Equal(t, lines[i].DocDescription, got[i].DocDescription)
		assert.Equal(t, lines[i].Account, got[i].Account)
		assert.True(t, lines[i].Debit.Equal(got[i].Debit), "debit mismatch row %d", i)
		assert.True(t, lines[i].Credit.Equal(got[i].Credit), "credit mismatch row %d", i)
		assert.Equal(t, lines[i].Tags, got[i].Tags)
		assert.Equal(t, lines[i].Checked, got[i].Checked)
	}
}

func TestLedgerTagsWithCommas(t *testing.T) {
	line := model.RawLedgerLine{
		EntryNumber: 2001,
		LineNumber:  1,
		Timestamp:   1737540000,
		Account:     60000000,
		Debit:       dec("15.00"),
		Tags:        []string{"Obra Madrid, fase 2", "BL:CONSTRUCCION"},
	}

	var buf bytes.Buffer
	err := WriteLedger(&buf, []model.RawLedgerLine{line})
	require.NoError(t, err)

	got, err := ReadLedger(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, line.Tags, got[0].Tags)
}

func TestLedgerNoTags(t *testing.T) {
	line := model.RawLedgerLine{EntryNumber: 2002, LineNumber: 1, Timestamp: 1737540000, Account: 57200001}

	row := MarshalLedgerLine(line)
	assert.Empty(t, row[colTags])

	got, err := UnmarshalLedgerLine(row)
	require.NoError(t, err)
	assert.Nil(t, got.Tags)
}

func TestUnmarshalLedgerLine_BadTimestamp(t *testing.T) {
	row := MarshalLedgerLine(model.RawLedgerLine{EntryNumber: 1, LineNumber: 1, Account: 57200001})
	row[colTimestamp] = "yesterday"

	_, err := UnmarshalLedgerLine(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing timestamp")
}

func TestReadLedger_HeaderOnly(t *testing.T) {
	lines, err := ReadLedger(strings.NewReader(LedgerHeader + "\n"))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestReadLedger_Testdata(t *testing.T) {
	f, err := os.Open("../../testdata/dailyledger.csv")
	require.NoError(t, err)
	defer f.Close()

	lines, err := ReadLedger(f)
	require.NoError(t, err)
	require.Len(t, lines, 8)

	// Each entry in the fixture balances to the cent.
	byEntry := map[int64][]model.RawLedgerLine{}
	for _, l := range lines {
		byEntry[l.EntryNumber] = append(byEntry[l.EntryNumber], l)
	}
	require.Len(t, byEntry, 3)
	for number, group := range byEntry {
		debit := dec("0")
		credit := dec("0")
		for _, l := range group {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)
		}
		assert.True(t, debit.Equal(credit), "entry %d should balance, got %s vs %s", number, debit, credit)
	}
}
