package civil_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// =============================================================================
// TIME ARITHMETIC
// =============================================================================

func TestLocalMinutesOfDay_ConvertsUTCToUTCPlus8(t *testing.T) {
	// 00:30 UTC is 08:30 in the civil zone
	ts := time.Date(2025, time.March, 10, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, 8*60+30, civil.LocalMinutesOfDay(ts))
	assert.Equal(t, civil.NewDate(2025, time.March, 10), civil.LocalDateKey(ts))
}

func TestLocalDateKey_UTCEveningIsNextLocalDay(t *testing.T) {
	// 16:00 UTC on Dec 31 is 00:00 Jan 1 locally
	ts := time.Date(2024, time.December, 31, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, civil.NewDate(2025, time.January, 1), civil.LocalDateKey(ts))
	assert.Equal(t, 0, civil.LocalMinutesOfDay(ts))

	// One minute earlier is still Dec 31, last minute of the day
	before := ts.Add(-time.Minute)
	assert.Equal(t, civil.NewDate(2024, time.December, 31), civil.LocalDateKey(before))
	assert.Equal(t, 1439, civil.LocalMinutesOfDay(before))
}

func TestLocalMinutesOfDay_MonotonicWithinDayAndWrapsAtBoundary(t *testing.T) {
	day := civil.NewDate(2025, time.February, 28)
	start := day.Midnight()

	prev := -1
	for m := 0; m < civil.MinutesPerDay; m += 7 {
		ts := start.Add(time.Duration(m) * time.Minute)
		got := civil.LocalMinutesOfDay(ts)
		require.GreaterOrEqual(t, got, prev, "minutes must not decrease within a day")
		require.True(t, got >= 0 && got <= 1439)
		assert.Equal(t, day, civil.LocalDateKey(ts))
		prev = got
	}

	next := start.Add(24 * time.Hour)
	assert.Equal(t, 0, civil.LocalMinutesOfDay(next))
	assert.Equal(t, civil.NewDate(2025, time.March, 1), civil.LocalDateKey(next))
}

func TestLocalMinutesOfDay_IndependentOfInputLocation(t *testing.T) {
	utc := time.Date(2025, time.June, 1, 3, 15, 0, 0, time.UTC)
	ny := utc.In(time.FixedZone("EST", -5*60*60))
	assert.Equal(t, civil.LocalMinutesOfDay(utc), civil.LocalMinutesOfDay(ny))
	assert.Equal(t, civil.LocalDateKey(utc), civil.LocalDateKey(ny))
}

func TestDate_ParseAndArithmetic(t *testing.T) {
	d, err := civil.ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String(), "leap year")
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, 2, civil.DaysBetween(d, d.AddDays(2)))
	assert.True(t, d.Before(d.AddDays(1)))

	_, err = civil.ParseDate("28/02/2024")
	assert.Error(t, err)
}

func TestDate_AtBuildsLocalInstant(t *testing.T) {
	d := civil.NewDate(2025, time.March, 10)
	ts := d.At(8 * 60)
	assert.Equal(t, 8*60, civil.LocalMinutesOfDay(ts))
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), ts.UTC())
}

// =============================================================================
// PERIODS
// =============================================================================

func TestPeriodFor_SemiMonthly(t *testing.T) {
	pc := civil.PeriodConfig{Type: civil.PeriodSemiMonthly}

	first := pc.PeriodFor(civil.NewDate(2025, time.February, 3))
	assert.Equal(t, "[2025-02-01, 2025-02-15]", first.String())

	second := pc.PeriodFor(civil.NewDate(2025, time.February, 16))
	assert.Equal(t, "[2025-02-16, 2025-02-28]", second.String())

	prev := pc.Previous(civil.NewDate(2025, time.March, 5))
	assert.Equal(t, "[2025-02-16, 2025-02-28]", prev.String())
}

func TestPeriodFor_MonthlyAcrossYearEnd(t *testing.T) {
	pc := civil.PeriodConfig{Type: civil.PeriodMonthly}
	p := pc.PeriodFor(civil.NewDate(2024, time.December, 31))
	assert.Equal(t, "[2024-12-01, 2024-12-31]", p.String())
	assert.Len(t, p.Days(), 31)

	prev := pc.Previous(civil.NewDate(2025, time.January, 10))
	assert.Equal(t, p, prev)
}

func TestNewPeriod_RejectsInvertedRange(t *testing.T) {
	_, err := civil.NewPeriod(civil.NewDate(2025, 3, 2), civil.NewDate(2025, 3, 1))
	assert.Error(t, err)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidayMultiplier(t *testing.T) {
	assert.True(t, civil.HolidayRegular.Multiplier().Equal(decimal.NewFromInt(2)))
	assert.True(t, civil.HolidaySpecial.Multiplier().Equal(decimal.RequireFromString("1.3")))
	assert.True(t, civil.HolidayOther.Multiplier().Equal(decimal.NewFromInt(1)))
}

func TestHolidayList_LookupByCivilDate(t *testing.T) {
	cal := civil.NewHolidayList([]civil.Holiday{
		{ID: "h1", Date: civil.NewDate(2025, time.April, 9), Name: "Araw ng Kagitingan", Type: civil.HolidayRegular},
		{ID: "h2", Date: civil.NewDate(2025, time.August, 21), Name: "Ninoy Aquino Day", Type: civil.HolidaySpecial},
	})

	// 16:30 UTC Apr 8 is already Apr 9 locally
	ts := time.Date(2025, time.April, 8, 16, 30, 0, 0, time.UTC)
	assert.True(t, civil.MultiplierOn(cal, civil.LocalDateKey(ts)).Equal(decimal.NewFromInt(2)))
	assert.True(t, civil.MultiplierOn(cal, civil.NewDate(2025, time.April, 10)).Equal(decimal.NewFromInt(1)))
	assert.True(t, civil.MultiplierOn(nil, civil.NewDate(2025, time.April, 9)).Equal(decimal.NewFromInt(1)))

	march := civil.Period{Start: civil.NewDate(2025, 4, 1), End: civil.NewDate(2025, 8, 31)}
	assert.Len(t, cal.In(march), 2)
}

func TestHolidayList_HigherMultiplierWinsOnSameDate(t *testing.T) {
	d := civil.NewDate(2025, time.December, 25)
	cal := civil.NewHolidayList([]civil.Holiday{
		{ID: "a", Date: d, Type: civil.HolidaySpecial},
		{ID: "b", Date: d, Type: civil.HolidayRegular},
		{ID: "c", Date: d, Type: civil.HolidayOther},
	})
	h, ok := cal.HolidayOn(d)
	require.True(t, ok)
	assert.Equal(t, "b", h.ID)
}

func TestWeekdaySet(t *testing.T) {
	assert.True(t, civil.MondayToFriday.Contains(time.Monday))
	assert.False(t, civil.MondayToFriday.Contains(time.Saturday))
	s := civil.NewWeekdaySet(time.Saturday, time.Monday)
	assert.Equal(t, []time.Weekday{time.Monday, time.Saturday}, s.Weekdays())
}
