package civil

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// HolidayType drives the pay multiplier for work performed on the date.
type HolidayType string

const (
	HolidayRegular HolidayType = "regular"
	HolidaySpecial HolidayType = "special"
	HolidayOther   HolidayType = "other"
)

var (
	multiplierRegular = decimal.NewFromInt(2)
	multiplierSpecial = decimal.RequireFromString("1.3")
)

// Multiplier returns the base-pay factor for the holiday type.
func (t HolidayType) Multiplier() decimal.Decimal {
	switch t {
	case HolidayRegular:
		return multiplierRegular
	case HolidaySpecial:
		return multiplierSpecial
	default:
		return decimal.NewFromInt(1)
	}
}

// ParseHolidayType accepts the stored names case-sensitively ("regular", "special", "other").
func ParseHolidayType(s string) (HolidayType, error) {
	switch HolidayType(s) {
	case HolidayRegular, HolidaySpecial, HolidayOther:
		return HolidayType(s), nil
	default:
		return "", fmt.Errorf("unknown holiday type %q", s)
	}
}

// Holiday is a designated non-working or premium-pay date.
type Holiday struct {
	ID   string
	Date Date
	Name string
	Type HolidayType
}

// Calendar provides holiday lookup by civil date.
type Calendar interface {
	// HolidayOn returns the holiday observed on date, if any.
	HolidayOn(date Date) (Holiday, bool)
}

// MultiplierOn returns the holiday multiplier for date, or 1 when the date is
// not a holiday (or cal is nil).
func MultiplierOn(cal Calendar, date Date) decimal.Decimal {
	if cal == nil {
		return decimal.NewFromInt(1)
	}
	if h, ok := cal.HolidayOn(date); ok {
		return h.Type.Multiplier()
	}
	return decimal.NewFromInt(1)
}

// HolidayList is an in-memory Calendar built from a snapshot of holiday records.
// When two records share a date the one with the larger multiplier wins.
type HolidayList struct {
	byDate map[Date]Holiday
}

// NewHolidayList indexes holidays by date.
func NewHolidayList(holidays []Holiday) *HolidayList {
	hl := &HolidayList{byDate: make(map[Date]Holiday, len(holidays))}
	for _, h := range holidays {
		existing, ok := hl.byDate[h.Date]
		if ok && !h.Type.Multiplier().GreaterThan(existing.Type.Multiplier()) {
			continue
		}
		hl.byDate[h.Date] = h
	}
	return hl
}

func (hl *HolidayList) HolidayOn(date Date) (Holiday, bool) {
	if hl == nil {
		return Holiday{}, false
	}
	h, ok := hl.byDate[date]
	return h, ok
}

// In returns the holidays inside period, ordered by date.
func (hl *HolidayList) In(period Period) []Holiday {
	var out []Holiday
	for d, h := range hl.byDate {
		if period.Contains(d) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
