package pgc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pgc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTable(t *testing.T) {
	path := writeTable(t, `
subtypes:
  57: Tesorería
balance:
  - subgroup: 57
    type: Asset
    section: ACTIVO CORRIENTE
    subsection: Efectivo
    group: Tesorería
    subgroup_label: Tesorería
    order: 430
pyg:
  - subgroup: 62
    section: GASTOS DE EXPLOTACIÓN
    group: Otros gastos
    subgroup_label: Servicios exteriores
    order: 30
`)

	table, err := LoadTable(path)
	require.NoError(t, err)

	subtype, ok := table.Subtype(57)
	require.True(t, ok)
	assert.Equal(t, "Tesorería", subtype)

	b, ok := table.Balance(57, model.AccountTypeAsset)
	require.True(t, ok)
	assert.Equal(t, "ACTIVO CORRIENTE", b.Section)
	assert.Equal(t, 430, b.Order)

	_, ok = table.Balance(57, model.AccountTypeLiability)
	assert.False(t, ok)

	p, ok := table.Pyg(62)
	require.True(t, ok)
	assert.Equal(t, "GASTOS DE EXPLOTACIÓN", p.Section)
}

func TestLoadTable_Malformed(t *testing.T) {
	_, err := LoadTable(writeTable(t, "subtypes: [not, a, map]"))
	assert.Error(t, err)

	_, err = LoadTable(writeTable(t, `
balance:
  - subgroup: 62
    type: Expense
    section: X
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-balance type")

	_, err = LoadTable(writeTable(t, `
pyg:
  - subgroup: 62
    section: A
  - subgroup: 62
    section: B
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestDefaultTable_CoversLedgerSubgroups(t *testing.T) {
	table := DefaultTable()

	// Every subtype subgroup resolves to exactly one placement family.
	for sg := range defaultSubtypes {
		number := int64(sg) * 1000000
		accountType, ok := AccountTypeFor(number)
		require.True(t, ok, "subgroup %d", sg)

		if accountType.IsBalanceSheet() {
			_, ok := table.Balance(sg, accountType)
			assert.True(t, ok, "subgroup %d (%s) missing balance placement", sg, accountType)
		} else {
			_, ok := table.Pyg(sg)
			assert.True(t, ok, "subgroup %d missing P&L placement", sg)
		}
	}
}
