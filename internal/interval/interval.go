package interval

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Unit is the canonical cadence granularity of a contract.
type Unit string

const (
	UnitDaily     Unit = "daily"
	UnitWeekly    Unit = "weekly"
	UnitMonthly   Unit = "monthly"
	UnitQuarterly Unit = "quarterly"
	UnitBiannual  Unit = "biannual"
	UnitAnnually  Unit = "annually"
)

var ErrInvalidUnit = errors.New("invalid interval unit")

// ParseUnit normalizes an interval unit to its canonical lowercase form.
// Input is case-insensitive and the plural/alias spellings used by older
// contracts (weeks, months, yearly) are accepted.
func ParseUnit(value string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "daily":
		return UnitDaily, nil
	case "weekly", "weeks":
		return UnitWeekly, nil
	case "monthly", "months":
		return UnitMonthly, nil
	case "quarterly":
		return UnitQuarterly, nil
	case "biannual":
		return UnitBiannual, nil
	case "annually", "yearly":
		return UnitAnnually, nil
	default:
		return "", ErrInvalidUnit
	}
}

type Calculator struct {
	log *zap.Logger
}

func NewCalculator(log *zap.Logger) *Calculator {
	return &Calculator{log: log.Named("interval.calculator")}
}

// AddInterval advances date by n calendar units. Month-based units carry the
// origin day over with a month-end fallback (Jan 31 + 1 month = Feb 28) and
// the annual rule maps Feb 29 to the last day of February in non-leap years.
func (c *Calculator) AddInterval(date time.Time, n int, unit Unit) time.Time {
	date = DateOnly(date)

	switch unit {
	case UnitDaily:
		return date.AddDate(0, 0, n)
	case UnitWeekly:
		return date.AddDate(0, 0, 7*n)
	case UnitMonthly:
		return addMonths(date, n)
	case UnitQuarterly:
		return addMonths(date, 3*n)
	case UnitBiannual:
		return addMonths(date, 6*n)
	case UnitAnnually:
		return addYears(date, n)
	default:
		c.log.Warn("unknown interval unit, falling back to monthly",
			zap.String("unit", string(unit)),
		)
		return addMonths(date, n)
	}
}

// NextBillingDate computes the first order date at or after now, stepping from
// start one interval at a time. The result never exceeds end: once a step
// would pass the contract end the date is clamped there.
func (c *Calculator) NextBillingDate(start, end time.Time, n int, unit Unit, anchor *int, now time.Time) time.Time {
	start = DateOnly(start)
	end = DateOnly(end)
	now = DateOnly(now)

	next := c.AddIntervalAnchored(start, n, unit, anchor)
	for next.Before(now) {
		next = c.AddIntervalAnchored(next, n, unit, anchor)
		if next.After(end) {
			c.log.Warn("next billing date clamped to contract end",
				zap.Time("end_date", end),
				zap.String("unit", string(unit)),
				zap.Int("interval_value", n),
			)
			return end
		}
	}
	if next.After(end) {
		return end
	}
	return next
}

// NextBillingDateAfter computes the first cadence date strictly after the
// given moment, stepping from start. Billing uses it to advance a contract
// whose due date sits exactly on the cadence grid; NextBillingDate would
// return that same date and the contract would stay due. Unlike
// NextBillingDate it does not clamp to an end date: a result past the
// contract end leaves the contract to be completed by the next discovery
// pass.
func (c *Calculator) NextBillingDateAfter(start time.Time, n int, unit Unit, anchor *int, after time.Time) time.Time {
	start = DateOnly(start)
	after = DateOnly(after)

	next := c.AddIntervalAnchored(start, n, unit, anchor)
	for !next.After(after) {
		next = c.AddIntervalAnchored(next, n, unit, anchor)
	}
	return next
}

// AddIntervalAnchored is AddInterval followed by delivery-anchor correction,
// which never moves the date earlier than the un-anchored result.
func (c *Calculator) AddIntervalAnchored(date time.Time, n int, unit Unit, anchor *int) time.Time {
	next := c.AddInterval(date, n, unit)
	if anchor != nil {
		next = applyAnchor(next, ClampAnchor(*anchor, unit), unit)
	}
	return next
}

// ClampAnchor forces an out-of-range delivery anchor into the valid day range
// for the unit: 1-7 for weekly cadences, 1-31 for month-based ones.
func ClampAnchor(anchor int, unit Unit) int {
	max := 31
	if unit == UnitWeekly {
		max = 7
	}
	if anchor < 1 {
		return 1
	}
	if anchor > max {
		return max
	}
	return anchor
}

// applyAnchor nudges date onto the preferred delivery day. The adjustment only
// ever moves the date forward; an anchor that would land earlier in the
// period leaves the base date untouched.
func applyAnchor(date time.Time, anchor int, unit Unit) time.Time {
	switch unit {
	case UnitWeekly:
		// 1 = Monday ... 7 = Sunday.
		target := time.Weekday(anchor % 7)
		shift := (int(target) - int(date.Weekday()) + 7) % 7
		return date.AddDate(0, 0, shift)
	case UnitMonthly, UnitQuarterly, UnitBiannual, UnitAnnually:
		day := anchor
		if last := daysInMonth(date.Year(), date.Month()); day > last {
			day = last
		}
		anchored := time.Date(date.Year(), date.Month(), day, 0, 0, 0, 0, time.UTC)
		if anchored.After(date) {
			return anchored
		}
		return date
	default:
		return date
	}
}

func addMonths(date time.Time, months int) time.Time {
	day := date.Day()
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := first.AddDate(0, months, 0)
	if last := daysInMonth(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

func addYears(date time.Time, years int) time.Time {
	if date.Month() == time.February && date.Day() == 29 {
		// March 1 of the target year, stepped back one day: Feb 29 in leap
		// years, Feb 28 otherwise.
		return time.Date(date.Year()+years, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	}
	day := date.Day()
	if last := daysInMonth(date.Year()+years, date.Month()); day > last {
		day = last
	}
	return time.Date(date.Year()+years, date.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
