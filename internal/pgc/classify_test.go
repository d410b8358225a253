package pgc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

func bronzeAccount(id string, num int64, name string) model.Account {
	return model.Account{
		ID:      id,
		Num:     num,
		Name:    name,
		Balance: decimal.Zero,
	}
}

func classify(t *testing.T, accounts ...model.Account) ([]model.NormalizedAccount, []Gap) {
	t.Helper()
	c := NewClassifier(DefaultTable())
	return c.Classify(accounts)
}

func TestAccountTypeFor(t *testing.T) {
	cases := []struct {
		number int64
		want   model.AccountType
	}{
		{10000000, model.AccountTypeEquity},    // capital
		{13000000, model.AccountTypeEquity},    // subvenciones
		{14000000, model.AccountTypeLiability}, // provisiones
		{17000000, model.AccountTypeLiability}, // deudas l/p
		{20000000, model.AccountTypeAsset},     // inmovilizado
		{30000000, model.AccountTypeAsset},     // existencias
		{40000000, model.AccountTypeLiability}, // proveedores
		{41000000, model.AccountTypeLiability},
		{43000000, model.AccountTypeAsset}, // clientes
		{44000000, model.AccountTypeAsset},
		{46000000, model.AccountTypeLiability}, // personal
		{47000000, model.AccountTypeAsset},     // HP deudora
		{47510000, model.AccountTypeLiability}, // HP acreedora
		{47700000, model.AccountTypeLiability}, // HP IVA repercutido
		{50000000, model.AccountTypeLiability},
		{52000000, model.AccountTypeLiability},
		{55000000, model.AccountTypeLiability},
		{57000000, model.AccountTypeAsset}, // tesorería
		{58000000, model.AccountTypeAsset},
		{60000000, model.AccountTypeExpense},
		{70000000, model.AccountTypeIncome},
		{80000000, model.AccountTypeExpense},
		{90000000, model.AccountTypeIncome},
	}
	for _, tc := range cases {
		got, ok := AccountTypeFor(tc.number)
		require.True(t, ok, "number %d", tc.number)
		assert.Equal(t, tc.want, got, "number %d", tc.number)
	}

	// Unpadded 7-digit input has leading digit 0 and no PGC group.
	_, ok := AccountTypeFor(9000000)
	assert.False(t, ok)
}

func TestPadAccountNumber(t *testing.T) {
	padded, sig := PadAccountNumber(570)
	assert.Equal(t, int64(57000000), padded)
	assert.Equal(t, 3, sig)

	padded, sig = PadAccountNumber(20000000)
	assert.Equal(t, int64(20000000), padded)
	assert.Equal(t, 8, sig)
}

func TestClassify_IntangibleAssetScenario(t *testing.T) {
	accounts, gaps := classify(t, bronzeAccount("acc-1", 20000000, "Inmovilizado intangible"))
	require.Empty(t, gaps)
	require.Len(t, accounts, 1)

	a := accounts[0]
	assert.Equal(t, model.AccountTypeAsset, a.AccountType)
	assert.Equal(t, 2, a.PGCGroup)
	assert.Equal(t, 20, a.PGCSubgroup)
	assert.Equal(t, 200, a.PGCDetail)
	assert.Equal(t, "ACTIVO NO CORRIENTE", a.BalanceSection)
	assert.True(t, a.IsAnalytic)
	assert.Equal(t, 5, a.AccountLevel)
	assert.False(t, a.NeedsReview)
}

func TestClassify_PlacementFamiliesAreExclusive(t *testing.T) {
	accounts, gaps := classify(t,
		bronzeAccount("a", 57200000, "Bancos"),
		bronzeAccount("b", 62900000, "Otros servicios"),
		bronzeAccount("c", 70500000, "Prestaciones de servicios"),
	)
	require.Empty(t, gaps)
	require.Len(t, accounts, 3)

	for _, a := range accounts {
		if a.AccountType.IsBalanceSheet() {
			assert.NotEmpty(t, a.BalanceSection, "account %d", a.AccountNumber)
			assert.Empty(t, a.PygSection, "account %d", a.AccountNumber)
		} else {
			assert.NotEmpty(t, a.PygSection, "account %d", a.AccountNumber)
			assert.Empty(t, a.BalanceSection, "account %d", a.AccountNumber)
		}
	}
}

func TestClassify_ParentResolution(t *testing.T) {
	accounts, gaps := classify(t,
		bronzeAccount("root", 57, "Tesorería"),
		bronzeAccount("mid", 5720, "Bancos"),
		bronzeAccount("leaf", 57200001, "Banco principal"),
		bronzeAccount("orphan", 62900000, "Otros servicios"),
	)
	require.Empty(t, gaps)
	require.Len(t, accounts, 4)

	byNumber := make(map[int64]model.NormalizedAccount)
	for _, a := range accounts {
		byNumber[a.AccountNumber] = a
	}

	// Leaf chains to the 4-digit node, which chains to the 2-digit root.
	assert.Equal(t, int64(57200000), byNumber[57200001].ParentAccountNumber)
	assert.Equal(t, int64(57000000), byNumber[57200000].ParentAccountNumber)
	assert.Equal(t, int64(0), byNumber[57000000].ParentAccountNumber)
	assert.Equal(t, int64(0), byNumber[62900000].ParentAccountNumber)

	// Roll-up nodes are not analytic.
	assert.False(t, byNumber[57000000].IsAnalytic)
	assert.Equal(t, 2, byNumber[57000000].AccountLevel)
	assert.Equal(t, 4, byNumber[57200000].AccountLevel)
	assert.True(t, byNumber[57200001].IsAnalytic)
}

func TestClassify_DuplicateNumbersRejected(t *testing.T) {
	accounts, gaps := classify(t,
		bronzeAccount("first", 57200000, "Bancos"),
		bronzeAccount("second", 57200000, "Bancos bis"),
		bronzeAccount("padded-dup", 572, "Bancos roll-up"), // pads to 57200000 too
	)
	require.Len(t, accounts, 1)
	assert.Equal(t, "first", accounts[0].AccountID)

	require.Len(t, gaps, 2)
	for _, g := range gaps {
		assert.Equal(t, "duplicate account number", g.Reason)
	}
}

func TestClassify_OutputOrderedByPaddedNumber(t *testing.T) {
	// Raw 58 < raw 570, but padded 58000000 > padded 57000000.
	accounts, gaps := classify(t,
		bronzeAccount("other", 58, "Inversiones c/p"),
		bronzeAccount("cash", 570, "Caja"),
	)
	require.Empty(t, gaps)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(57000000), accounts[0].AccountNumber)
	assert.Equal(t, int64(58000000), accounts[1].AccountNumber)
}

func TestClassify_GapIsFlaggedNotDefaulted(t *testing.T) {
	// Subgroup 42 has no entry in the default table.
	accounts, gaps := classify(t, bronzeAccount("a", 42000000, "Desconocida"))
	require.Len(t, accounts, 1)
	require.Len(t, gaps, 1)

	a := accounts[0]
	assert.True(t, a.NeedsReview)
	assert.Equal(t, model.AccountTypeAsset, a.AccountType) // type is still derivable
	assert.Empty(t, a.BalanceSection)
	assert.Empty(t, a.PygSection)
	assert.Contains(t, gaps[0].Reason, "no balance-sheet placement")
}

func TestClassify_MissingNumberReported(t *testing.T) {
	accounts, gaps := classify(t, bronzeAccount("a", 0, "Sin número"))
	assert.Empty(t, accounts)
	require.Len(t, gaps, 1)
	assert.Equal(t, "missing account number", gaps[0].Reason)
}

func TestTaxRelevant(t *testing.T) {
	assert.True(t, TaxRelevant(47200001))  // IVA soportado
	assert.True(t, TaxRelevant(47700001))  // IVA repercutido
	assert.True(t, TaxRelevant(62900000))  // expense
	assert.True(t, TaxRelevant(70500000))  // income
	assert.False(t, TaxRelevant(57200000)) // bank
	assert.False(t, TaxRelevant(10000000)) // capital
}
