package interval_test

import (
	"testing"
	"time"

	"github.com/railzwaylabs/contractflow/internal/interval"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func calc() *interval.Calculator {
	return interval.NewCalculator(zap.NewNop())
}

func TestParseUnit(t *testing.T) {
	cases := map[string]interval.Unit{
		"daily":     interval.UnitDaily,
		"WEEKLY":    interval.UnitWeekly,
		"weeks":     interval.UnitWeekly,
		"Monthly":   interval.UnitMonthly,
		"months":    interval.UnitMonthly,
		"quarterly": interval.UnitQuarterly,
		"biannual":  interval.UnitBiannual,
		"annually":  interval.UnitAnnually,
		"Yearly":    interval.UnitAnnually,
	}
	for input, want := range cases {
		got, err := interval.ParseUnit(input)
		assert.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := interval.ParseUnit("fortnightly")
	assert.ErrorIs(t, err, interval.ErrInvalidUnit)
}

func TestAddIntervalDailyWeekly(t *testing.T) {
	c := calc()
	assert.Equal(t, date(2025, time.March, 11), c.AddInterval(date(2025, time.March, 1), 10, interval.UnitDaily))
	assert.Equal(t, date(2025, time.March, 15), c.AddInterval(date(2025, time.March, 1), 2, interval.UnitWeekly))
}

func TestAddIntervalMonthEndFallback(t *testing.T) {
	c := calc()
	assert.Equal(t, date(2025, time.February, 28), c.AddInterval(date(2025, time.January, 31), 1, interval.UnitMonthly))
	assert.Equal(t, date(2024, time.February, 29), c.AddInterval(date(2024, time.January, 31), 1, interval.UnitMonthly))
	assert.Equal(t, date(2025, time.April, 30), c.AddInterval(date(2025, time.January, 31), 1, interval.UnitQuarterly))
	assert.Equal(t, date(2025, time.July, 31), c.AddInterval(date(2025, time.January, 31), 1, interval.UnitBiannual))
}

func TestAddIntervalAnnualLeapDay(t *testing.T) {
	c := calc()
	assert.Equal(t, date(2025, time.February, 28), c.AddInterval(date(2024, time.February, 29), 1, interval.UnitAnnually))
	assert.Equal(t, date(2028, time.February, 29), c.AddInterval(date(2024, time.February, 29), 4, interval.UnitAnnually))
	assert.Equal(t, date(2026, time.June, 15), c.AddInterval(date(2025, time.June, 15), 1, interval.UnitAnnually))
}

func TestAddIntervalUnknownUnitFallsBackToMonthly(t *testing.T) {
	c := calc()
	got := c.AddInterval(date(2025, time.January, 31), 1, interval.Unit("lunar"))
	assert.Equal(t, date(2025, time.February, 28), got)
}

func TestAddIntervalMonthlyDayInvariant(t *testing.T) {
	c := calc()
	for day := 1; day <= 31; day++ {
		origin := date(2025, time.January, day)
		got := c.AddInterval(origin, 1, interval.UnitMonthly)
		want := day
		if want > 28 {
			want = 28 // February 2025
		}
		assert.Equal(t, want, got.Day(), "origin day %d", day)
		assert.Equal(t, time.February, got.Month())
	}
}

func TestNextBillingDateAdvancesPastNow(t *testing.T) {
	c := calc()
	start := date(2025, time.January, 15)
	end := date(2026, time.January, 15)
	now := date(2025, time.May, 1)

	got := c.NextBillingDate(start, end, 1, interval.UnitMonthly, nil, now)
	assert.Equal(t, date(2025, time.May, 15), got)
	assert.False(t, got.Before(now))
	assert.False(t, got.After(end))
}

func TestNextBillingDateClampsToEnd(t *testing.T) {
	c := calc()
	start := date(2025, time.January, 1)
	end := date(2025, time.March, 1)
	now := date(2025, time.December, 1)

	got := c.NextBillingDate(start, end, 1, interval.UnitMonthly, nil, now)
	assert.Equal(t, end, got)
}

func TestNextBillingDateAfterAdvancesGridDate(t *testing.T) {
	c := calc()
	start := date(2025, time.January, 15)

	// A moment exactly on the cadence grid moves to the next grid point,
	// never back onto itself.
	got := c.NextBillingDateAfter(start, 1, interval.UnitMonthly, nil, date(2025, time.June, 15))
	assert.Equal(t, date(2025, time.July, 15), got)

	// Between grid points the next grid point wins.
	got = c.NextBillingDateAfter(start, 1, interval.UnitMonthly, nil, date(2025, time.June, 10))
	assert.Equal(t, date(2025, time.June, 15), got)
}

func TestNextBillingDateAfterKeepsOriginDayCarry(t *testing.T) {
	c := calc()
	start := date(2025, time.January, 31)

	// Stepping is grid-from-start, so the origin day 31 survives the
	// February fallback instead of sticking at 28.
	got := c.NextBillingDateAfter(start, 1, interval.UnitMonthly, nil, date(2025, time.February, 28))
	assert.Equal(t, date(2025, time.March, 31), got)
}

func TestNextBillingDateWeeklyAnchor(t *testing.T) {
	c := calc()
	start := date(2025, time.June, 2) // Monday
	end := date(2026, time.June, 2)
	now := date(2025, time.June, 1)
	anchor := 5 // Friday

	got := c.NextBillingDate(start, end, 1, interval.UnitWeekly, &anchor, now)
	assert.Equal(t, time.Friday, got.Weekday())
	// One week after start is Monday June 9; the anchor shifts forward to June 13.
	assert.Equal(t, date(2025, time.June, 13), got)
}

func TestNextBillingDateMonthlyAnchorNeverMovesEarlier(t *testing.T) {
	c := calc()
	start := date(2025, time.January, 20)
	end := date(2026, time.January, 20)
	now := date(2025, time.January, 1)

	// Anchor before the base day stays on the base result.
	anchor := 5
	got := c.NextBillingDate(start, end, 1, interval.UnitMonthly, &anchor, now)
	assert.Equal(t, date(2025, time.February, 20), got)

	// Anchor after the base day shifts forward within the month.
	anchor = 25
	got = c.NextBillingDate(start, end, 1, interval.UnitMonthly, &anchor, now)
	assert.Equal(t, date(2025, time.February, 25), got)
}

func TestNextBillingDateMonthlyAnchorClampedToMonthLength(t *testing.T) {
	c := calc()
	start := date(2025, time.January, 15)
	end := date(2026, time.January, 15)
	now := date(2025, time.January, 1)
	anchor := 31

	got := c.NextBillingDate(start, end, 1, interval.UnitMonthly, &anchor, now)
	assert.Equal(t, date(2025, time.February, 28), got)
}

func TestClampAnchor(t *testing.T) {
	assert.Equal(t, 1, interval.ClampAnchor(0, interval.UnitWeekly))
	assert.Equal(t, 7, interval.ClampAnchor(12, interval.UnitWeekly))
	assert.Equal(t, 31, interval.ClampAnchor(40, interval.UnitMonthly))
	assert.Equal(t, 15, interval.ClampAnchor(15, interval.UnitMonthly))
}
