package pgc

import (
	"fmt"
	"sort"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// Gap records an account the classifier could not fully place. Gap
// accounts are still persisted, flagged for review; they are never
// silently defaulted.
type Gap struct {
	AccountID     string
	AccountNumber int64
	Reason        string
}

func (g Gap) String() string {
	return fmt.Sprintf("account %d (%s): %s", g.AccountNumber, g.AccountID, g.Reason)
}

// Classifier maps bronze accounts into normalized silver accounts using
// a PGC classification table. Classification is a pure function of the
// account number, group and the table; the classifier holds no other state.
type Classifier struct {
	table *Table
}

// NewClassifier creates a Classifier over a classification table.
func NewClassifier(table *Table) *Classifier {
	return &Classifier{table: table}
}

// Classify produces one NormalizedAccount per input account, plus the
// gaps encountered. Duplicates by (padded) account number are rejected
// in input order, first occurrence wins. Output ordering is
// deterministic (by padded account number).
func (c *Classifier) Classify(accounts []model.Account) ([]model.NormalizedAccount, []Gap) {
	// First pass: pad numbers in input order and collect the set for
	// parent resolution.
	type padded struct {
		acct   model.Account
		number int64
		sig    int
	}
	var (
		inputs []padded
		gaps   []Gap
		seen   = make(map[int64]bool)
		set    = make(map[int64]bool)
	)
	for _, a := range accounts {
		if a.Num <= 0 {
			gaps = append(gaps, Gap{a.ID, a.Num, "missing account number"})
			continue
		}
		number, sig := PadAccountNumber(a.Num)
		if seen[number] {
			gaps = append(gaps, Gap{a.ID, number, "duplicate account number"})
			continue
		}
		seen[number] = true
		set[number] = true
		inputs = append(inputs, padded{a, number, sig})
	}

	out := make([]model.NormalizedAccount, 0, len(inputs))
	for _, in := range inputs {
		na, gap := c.classifyOne(in.acct, in.number, in.sig, set)
		if gap != nil {
			gaps = append(gaps, *gap)
		}
		out = append(out, na)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, gaps
}

func (c *Classifier) classifyOne(a model.Account, number int64, sig int, set map[int64]bool) (model.NormalizedAccount, *Gap) {
	group := int(number / 10000000)
	subgroup := int(number / 1000000)
	detail := int(number / 100000)

	na := model.NormalizedAccount{
		AccountID:           a.ID,
		AccountNumber:       number,
		AccountName:         a.Name,
		AccountGroup:        a.Group,
		ParentAccountNumber: parentAccountNumber(number, sig, set),
		AccountLevel:        accountLevel(sig),
		IsAnalytic:          sig == 8,
		PGCGroup:            group,
		PGCSubgroup:         subgroup,
		PGCDetail:           detail,
		IsActive:            true,
		TaxRelevant:         TaxRelevant(number),
		CurrentBalance:      a.Balance,
		DebitBalance:        a.Debit,
		CreditBalance:       a.Credit,
	}
	if na.AccountName == "" {
		na.AccountName = fmt.Sprintf("Account %d", number)
	}
	if subtype, ok := c.table.Subtype(subgroup); ok {
		na.AccountSubtype = subtype
	} else {
		na.AccountSubtype = fmt.Sprintf("Subgrupo %d", subgroup)
	}

	accountType, ok := AccountTypeFor(number)
	if !ok {
		na.NeedsReview = true
		return na, &Gap{a.ID, number, fmt.Sprintf("no account type for group %d", group)}
	}
	na.AccountType = accountType

	if accountType.IsBalanceSheet() {
		p, ok := c.table.Balance(subgroup, accountType)
		if !ok {
			na.NeedsReview = true
			return na, &Gap{a.ID, number, fmt.Sprintf("no balance-sheet placement for subgroup %d (%s)", subgroup, accountType)}
		}
		na.BalanceSection = p.Section
		na.BalanceSubsection = p.Subsection
		na.BalanceGroup = p.Group
		na.BalanceSubgroup = p.Subgroup
		na.BalanceOrder = p.Order
		return na, nil
	}

	p, ok := c.table.Pyg(subgroup)
	if !ok {
		na.NeedsReview = true
		return na, &Gap{a.ID, number, fmt.Sprintf("no P&L placement for subgroup %d", subgroup)}
	}
	na.PygSection = p.Section
	na.PygGroup = p.Group
	na.PygSubgroup = p.Subgroup
	na.PygOrder = p.Order
	return na, nil
}

// PadAccountNumber right-pads an account number with zeros to 8 digits
// and returns the count of significant digits in the original code.
func PadAccountNumber(num int64) (padded int64, significant int) {
	significant = 1
	for n := num; n >= 10; n /= 10 {
		significant++
	}
	padded = num
	for d := significant; d < 8; d++ {
		padded *= 10
	}
	return padded, significant
}

// accountLevel maps significant digit count to hierarchy depth:
// group, subgroup, account, subaccount, analytic.
func accountLevel(significant int) int {
	switch {
	case significant <= 3:
		return significant
	case significant <= 5:
		return 4
	default:
		return 5
	}
}

// parentAccountNumber locates the nearest shorter-prefix account present
// in the input set, truncating one significant digit at a time. Returns
// 0 when no ancestor exists (root).
func parentAccountNumber(number int64, significant int, set map[int64]bool) int64 {
	for keep := significant - 1; keep >= 1; keep-- {
		div := int64(1)
		for d := keep; d < 8; d++ {
			div *= 10
		}
		candidate := (number / div) * div
		if candidate != number && set[candidate] {
			return candidate
		}
	}
	return 0
}

// AccountTypeFor derives the account type from the leading digits of a
// padded 8-digit number per the PGC convention. ok is false when the
// number falls outside the chart (leading digit 0).
func AccountTypeFor(number int64) (model.AccountType, bool) {
	first := number / 10000000
	second := (number / 1000000) % 10

	switch first {
	case 2, 3:
		return model.AccountTypeAsset, true
	case 6, 8:
		return model.AccountTypeExpense, true
	case 7, 9:
		return model.AccountTypeIncome, true
	case 1:
		// Subgroups 10-13 are equity, 14-19 liabilities.
		if second <= 3 {
			return model.AccountTypeEquity, true
		}
		return model.AccountTypeLiability, true
	case 4:
		if second == 0 || second == 1 || second == 6 {
			return model.AccountTypeLiability, true
		}
		if second == 7 {
			// Creditor positions within 47: public administrations owed money.
			switch (number / 10000) % 100 {
			case 50, 51, 52, 58, 59, 60, 61, 70, 79:
				return model.AccountTypeLiability, true
			}
		}
		return model.AccountTypeAsset, true
	case 5:
		switch second {
		case 0, 1, 2, 5, 6:
			return model.AccountTypeLiability, true
		}
		return model.AccountTypeAsset, true
	}
	return "", false
}

// TaxRelevant reports whether an account feeds tax declarations: VAT and
// corporate-tax positions plus all income and expense accounts.
func TaxRelevant(number int64) bool {
	switch number / 10000 {
	case 4720, 4770, 4740, 4745, 4752:
		return true
	}
	group := number / 10000000
	return group == 6 || group == 7
}
