package pgc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// Table is the versioned PGC classification table: subgroup names plus
// balance-sheet and P&L report placement. It is reference data, loaded
// once at startup and passed by reference into the classifier.
type Table struct {
	subtypes map[int]string
	balance  map[balanceKey]BalancePlacement
	pyg      map[int]PygPlacement
}

type balanceKey struct {
	subgroup    int
	accountType model.AccountType
}

// BalancePlacement locates a balance-sheet account on the report.
type BalancePlacement struct {
	Section    string `yaml:"section"`
	Subsection string `yaml:"subsection"`
	Group      string `yaml:"group"`
	Subgroup   string `yaml:"subgroup_label"`
	Order      int    `yaml:"order"`
}

// PygPlacement locates a P&L account on the income statement.
type PygPlacement struct {
	Section  string `yaml:"section"`
	Group    string `yaml:"group"`
	Subgroup string `yaml:"subgroup_label"`
	Order    int    `yaml:"order"`
}

// tableFile is the YAML layout of a classification table file.
type tableFile struct {
	Subtypes map[int]string `yaml:"subtypes"`
	Balance  []struct {
		Subgroup         int               `yaml:"subgroup"`
		Type             model.AccountType `yaml:"type"`
		BalancePlacement `yaml:",inline"`
	} `yaml:"balance"`
	Pyg []struct {
		Subgroup     int `yaml:"subgroup"`
		PygPlacement `yaml:",inline"`
	} `yaml:"pyg"`
}

// Subtype returns the PGC name of a two-digit subgroup.
func (t *Table) Subtype(subgroup int) (string, bool) {
	s, ok := t.subtypes[subgroup]
	return s, ok
}

// Balance returns the balance-sheet placement for a subgroup and type.
func (t *Table) Balance(subgroup int, accountType model.AccountType) (BalancePlacement, bool) {
	p, ok := t.balance[balanceKey{subgroup, accountType}]
	return p, ok
}

// Pyg returns the P&L placement for a subgroup.
func (t *Table) Pyg(subgroup int) (PygPlacement, bool) {
	p, ok := t.pyg[subgroup]
	return p, ok
}

// LoadTable reads a classification table from a YAML file. A malformed
// table is a structural error: the batch must not start with it.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classification table: %w", err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing classification table: %w", err)
	}
	return buildTable(f)
}

func buildTable(f tableFile) (*Table, error) {
	t := &Table{
		subtypes: make(map[int]string, len(f.Subtypes)),
		balance:  make(map[balanceKey]BalancePlacement, len(f.Balance)),
		pyg:      make(map[int]PygPlacement, len(f.Pyg)),
	}

	for sg, name := range f.Subtypes {
		if sg < 10 || sg > 99 {
			return nil, fmt.Errorf("classification table: subtype subgroup %d out of range", sg)
		}
		t.subtypes[sg] = name
	}

	for _, b := range f.Balance {
		if !b.Type.IsBalanceSheet() {
			return nil, fmt.Errorf("classification table: balance placement for subgroup %d has non-balance type %q", b.Subgroup, b.Type)
		}
		key := balanceKey{b.Subgroup, b.Type}
		if _, dup := t.balance[key]; dup {
			return nil, fmt.Errorf("classification table: duplicate balance placement for subgroup %d type %s", b.Subgroup, b.Type)
		}
		t.balance[key] = b.BalancePlacement
	}

	for _, p := range f.Pyg {
		if _, dup := t.pyg[p.Subgroup]; dup {
			return nil, fmt.Errorf("classification table: duplicate P&L placement for subgroup %d", p.Subgroup)
		}
		t.pyg[p.Subgroup] = p.PygPlacement
	}

	return t, nil
}
