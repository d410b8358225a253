package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_MonthBounds(t *testing.T) {
	periods := Generate(date(2024, time.November, 15), date(2025, time.February, 3))
	require.Len(t, periods, 4)

	assert.Equal(t, 202411, periods[0].PeriodID)
	assert.Equal(t, date(2024, time.November, 1), periods[0].StartDate)
	assert.Equal(t, date(2024, time.November, 30), periods[0].EndDate)

	// Year rollover and leap February.
	assert.Equal(t, 202501, periods[2].PeriodID)
	assert.Equal(t, "2025-01", periods[2].PeriodName)
	assert.Equal(t, date(2025, time.February, 28), periods[3].EndDate)

	for _, p := range periods {
		assert.False(t, p.IsClosed, "periods are generated open")
		assert.Nil(t, p.ClosingDate)
	}
}

func TestGenerate_Quarters(t *testing.T) {
	periods := Generate(date(2025, time.January, 1), date(2025, time.December, 31))
	require.Len(t, periods, 12)
	assert.Equal(t, 1, periods[0].PeriodQuarter)
	assert.Equal(t, 1, periods[2].PeriodQuarter)
	assert.Equal(t, 2, periods[3].PeriodQuarter)
	assert.Equal(t, 4, periods[11].PeriodQuarter)
}

func TestLedgerRange(t *testing.T) {
	// 2024-03-17 12:00:00 UTC
	from, to := LedgerRange(time.Date(2024, time.March, 17, 12, 0, 0, 0, time.UTC).Unix(), date(2025, time.June, 1))
	assert.Equal(t, date(2024, time.March, 1), from)
	assert.Equal(t, date(2026, time.December, 31), to)
}

func TestCalendar_PeriodFor(t *testing.T) {
	cal := NewCalendar(Generate(date(2025, time.January, 1), date(2025, time.March, 31)))

	p, ok := cal.PeriodFor(date(2025, time.February, 14))
	require.True(t, ok)
	assert.Equal(t, 202502, p.PeriodID)

	_, ok = cal.PeriodFor(date(2024, time.December, 31))
	assert.False(t, ok)

	ordered := cal.Ordered()
	require.Len(t, ordered, 3)
	assert.True(t, ordered[0].PeriodID < ordered[1].PeriodID)
}

func TestClose(t *testing.T) {
	cal := NewCalendar(Generate(date(2025, time.January, 1), date(2025, time.January, 31)))
	p, ok := cal.ByID(202501)
	require.True(t, ok)

	closed := Close(p, date(2025, time.February, 5))
	assert.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosingDate)
	assert.Equal(t, date(2025, time.February, 5), *closed.ClosingDate)

	// The calendar's copy is untouched.
	orig, _ := cal.ByID(202501)
	assert.False(t, orig.IsClosed)
}
