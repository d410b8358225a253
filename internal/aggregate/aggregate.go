package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// DefaultTolerance is the debit/credit imbalance allowed per entry
// before it is flagged, covering source-side rounding.
var DefaultTolerance = decimal.RequireFromString("0.01")

// DefaultTagSlots is how many leading tags are split into indexed columns.
const DefaultTagSlots = 4

// Issue describes one reportable inconsistency found during aggregation.
// Issues never abort a batch; flagged entries are still persisted.
type Issue struct {
	EntryNumber int64
	LineNumber  int
	Reason      string
}

func (i Issue) String() string {
	if i.LineNumber > 0 {
		return fmt.Sprintf("entry %d line %d: %s", i.EntryNumber, i.LineNumber, i.Reason)
	}
	return fmt.Sprintf("entry %d: %s", i.EntryNumber, i.Reason)
}

// PeriodResolver locates the fiscal period containing a date.
type PeriodResolver interface {
	PeriodFor(date time.Time) (model.FiscalPeriod, bool)
}

// Options tune the aggregator. Zero values select the defaults.
type Options struct {
	Tolerance decimal.Decimal
	TagSlots  int
}

// Aggregator regroups flat daily-ledger rows into journal entries that
// own their lines. Re-running it over identical input yields identical
// output, so replays after partial failures are safe.
type Aggregator struct {
	tolerance decimal.Decimal
	tagSlots  int
}

// New creates an Aggregator.
func New(opts Options) *Aggregator {
	a := &Aggregator{tolerance: opts.Tolerance, tagSlots: opts.TagSlots}
	if a.tolerance.IsZero() {
		a.tolerance = DefaultTolerance
	}
	if a.tagSlots <= 0 || a.tagSlots > DefaultTagSlots {
		a.tagSlots = DefaultTagSlots
	}
	return a
}

// Entry-flag keyword table: a type or description containing one of
// these marks the entry. Matching is case-insensitive.
var (
	closingKeywords    = []string{"CIERRE", "CLOSING"}
	openingKeywords    = []string{"APERTURA", "OPENING"}
	adjustmentKeywords = []string{"AJUSTE", "ADJUSTMENT"}
)

// Aggregate groups raw ledger lines by entry number into journal
// entries. Duplicate (entry, line, timestamp) keys keep the first row;
// the rest are reported. Output is ordered by entry number then line
// number.
func (a *Aggregator) Aggregate(lines []model.RawLedgerLine, periods PeriodResolver) ([]model.JournalEntry, []Issue) {
	var issues []Issue

	type lineKey struct {
		entry int64
		line  int
		ts    int64
	}
	seen := make(map[lineKey]bool, len(lines))
	groups := make(map[int64][]model.RawLedgerLine)
	for _, l := range lines {
		key := lineKey{l.EntryNumber, l.LineNumber, l.Timestamp}
		if seen[key] {
			issues = append(issues, Issue{l.EntryNumber, l.LineNumber, "duplicate ledger row"})
			continue
		}
		seen[key] = true
		groups[l.EntryNumber] = append(groups[l.EntryNumber], l)
	}

	numbers := make([]int64, 0, len(groups))
	for n := range groups {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	entries := make([]model.JournalEntry, 0, len(numbers))
	for _, n := range numbers {
		entry, entryIssues := a.buildEntry(n, groups[n], periods)
		entries = append(entries, entry)
		issues = append(issues, entryIssues...)
	}
	return entries, issues
}

func (a *Aggregator) buildEntry(number int64, raw []model.RawLedgerLine, periods PeriodResolver) (model.JournalEntry, []Issue) {
	sort.Slice(raw, func(i, j int) bool {
		if raw[i].LineNumber != raw[j].LineNumber {
			return raw[i].LineNumber < raw[j].LineNumber
		}
		return raw[i].Timestamp < raw[j].Timestamp
	})

	var issues []Issue

	minTS := raw[0].Timestamp
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	entryType := ""
	description := ""
	docDescription := ""
	for _, l := range raw {
		if l.Timestamp < minTS {
			minTS = l.Timestamp
		}
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
		if l.Type != "" {
			entryType = l.Type
		}
		if l.Description != "" {
			description = l.Description
		}
		if l.DocDescription != "" {
			docDescription = l.DocDescription
		}
	}

	entryDate := time.Unix(minTS, 0).UTC()
	entryDate = time.Date(entryDate.Year(), entryDate.Month(), entryDate.Day(), 0, 0, 0, 0, time.UTC)

	entry := model.JournalEntry{
		EntryNumber:       number,
		EntryDate:         entryDate,
		OriginalTimestamp: minTS,
		EntryType:         entryType,
		Description:       description,
		DocDescription:    docDescription,
		IsClosingEntry:    matchesAny(entryType, description, closingKeywords),
		IsOpeningEntry:    matchesAny(entryType, description, openingKeywords),
		IsAdjustment:      matchesAny(entryType, description, adjustmentKeywords),
		EntryStatus:       model.StatusPosted,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
	}

	if p, ok := periods.PeriodFor(entryDate); ok {
		entry.PeriodID = p.PeriodID
	} else {
		issues = append(issues, Issue{number, 0, fmt.Sprintf("no fiscal period covers %s", entryDate.Format("2006-01-02"))})
	}

	if totalDebit.Sub(totalCredit).Abs().GreaterThan(a.tolerance) {
		entry.EntryStatus = model.StatusAnomalous
		issues = append(issues, Issue{number, 0, fmt.Sprintf(
			"unbalanced entry: debit %s != credit %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))})
	}

	entry.Lines = make([]model.JournalLine, 0, len(raw))
	lineSeen := make(map[int]bool, len(raw))
	for _, l := range raw {
		if lineSeen[l.LineNumber] {
			issues = append(issues, Issue{number, l.LineNumber, "duplicate line number within entry"})
			continue
		}
		lineSeen[l.LineNumber] = true
		entry.Lines = append(entry.Lines, a.buildLine(l))
	}

	return entry, issues
}

func (a *Aggregator) buildLine(l model.RawLedgerLine) model.JournalLine {
	line := model.JournalLine{
		EntryNumber:   l.EntryNumber,
		LineNumber:    l.LineNumber,
		AccountNumber: l.Account,
		Description:   l.Description,
		DebitAmount:   l.Debit,
		CreditAmount:  l.Credit,
		NetAmount:     l.Debit.Sub(l.Credit),
		IsChecked:     l.Checked == "Yes",
		IsReconciled:  l.Checked == "Yes",
	}

	if len(l.Tags) > 0 {
		line.Tags = make([]string, len(l.Tags))
		copy(line.Tags, l.Tags)
	}
	slots := splitTags(l.Tags, a.tagSlots)
	if len(slots) > 0 {
		line.Tag1 = slots[0]
	}
	if len(slots) > 1 {
		line.Tag2 = slots[1]
	}
	if len(slots) > 2 {
		line.Tag3 = slots[2]
	}
	if len(slots) > 3 {
		line.Tag4 = slots[3]
	}

	line.CostCenter, line.BusinessLine = businessMetadata(l.Tags)
	return line
}

// splitTags returns up to max leading tags, preserving order. Tags past
// the cutoff stay only in the full list.
func splitTags(tags []string, max int) []string {
	if len(tags) <= max {
		return tags
	}
	return tags[:max]
}

// businessMetadata extracts cost center and business line from "CC:" and
// "BL:" tag prefixes.
func businessMetadata(tags []string) (costCenter, businessLine string) {
	for _, tag := range tags {
		switch {
		case strings.HasPrefix(tag, "CC:"):
			costCenter = strings.TrimPrefix(tag, "CC:")
		case strings.HasPrefix(tag, "BL:"):
			businessLine = strings.TrimPrefix(tag, "BL:")
		}
	}
	return costCenter, businessLine
}

func matchesAny(entryType, description string, keywords []string) bool {
	haystack := strings.ToUpper(entryType + " " + description)
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
