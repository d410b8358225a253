package period

import (
	"fmt"
	"sort"
	"time"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// ID returns the deterministic period identifier for a year and month.
func ID(year, month int) int {
	return year*100 + month
}

// Quarter returns the calendar quarter of a month.
func Quarter(month int) int {
	return (month-1)/3 + 1
}

// Generate returns one fiscal period per calendar month from the month
// containing from through the month containing to, inclusive. Periods
// are generated open: closing them is a separate, explicit operation.
func Generate(from, to time.Time) []model.FiscalPeriod {
	from = from.UTC()
	to = to.UTC()

	var periods []model.FiscalPeriod
	year, month := from.Year(), int(from.Month())
	endYear, endMonth := to.Year(), int(to.Month())

	for year < endYear || (year == endYear && month <= endMonth) {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)

		periods = append(periods, model.FiscalPeriod{
			PeriodID:      ID(year, month),
			PeriodYear:    year,
			PeriodQuarter: Quarter(month),
			PeriodMonth:   month,
			PeriodName:    fmt.Sprintf("%04d-%02d", year, month),
			StartDate:     start,
			EndDate:       end,
		})

		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return periods
}

// LedgerRange derives the period generation window from the ledger's
// earliest transaction to the end of the year after now, so future
// entries land in an existing period.
func LedgerRange(minTimestamp int64, now time.Time) (time.Time, time.Time) {
	earliest := time.Unix(minTimestamp, 0).UTC()
	from := time.Date(earliest.Year(), earliest.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.UTC().Year()+1, time.December, 31, 0, 0, 0, 0, time.UTC)
	return from, to
}

// Calendar provides ordered lookup over a set of fiscal periods.
type Calendar struct {
	ordered []model.FiscalPeriod
	byID    map[int]model.FiscalPeriod
}

// NewCalendar creates a Calendar. Periods are sorted chronologically.
func NewCalendar(periods []model.FiscalPeriod) *Calendar {
	ordered := make([]model.FiscalPeriod, len(periods))
	copy(ordered, periods)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].PeriodID < ordered[j].PeriodID
	})

	byID := make(map[int]model.FiscalPeriod, len(ordered))
	for _, p := range ordered {
		byID[p.PeriodID] = p
	}
	return &Calendar{ordered: ordered, byID: byID}
}

// Ordered returns all periods in chronological order.
func (c *Calendar) Ordered() []model.FiscalPeriod {
	return c.ordered
}

// ByID returns the period with the given identifier.
func (c *Calendar) ByID(id int) (model.FiscalPeriod, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// PeriodFor returns the period containing the given date.
func (c *Calendar) PeriodFor(date time.Time) (model.FiscalPeriod, bool) {
	p, ok := c.byID[ID(date.Year(), int(date.Month()))]
	if !ok || !p.Contains(date) {
		return model.FiscalPeriod{}, false
	}
	return p, true
}

// Close marks a period closed as of closingDate. It is the only path
// that flips IsClosed; data loads never touch it.
func Close(p model.FiscalPeriod, closingDate time.Time) model.FiscalPeriod {
	p.IsClosed = true
	d := closingDate.UTC()
	p.ClosingDate = &d
	return p
}
