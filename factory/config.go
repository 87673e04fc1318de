/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON shift, payroll-rule and deduction-catalog definitions into
  validated attendance.Shift, payroll.Rule and payroll.Catalog values. This
  is the data boundary: nothing downstream re-validates what the factory
  accepted.

JSON SCHEMA:
  Shift:
  {
    "id": "split-8-5",
    "name": "Split 8-12 / 1-5",
    "start": "08:00",
    "end": "17:00",
    "grace_minutes": 15,
    "break_minutes": 0,
    "split": {"start": "12:00", "end": "13:00"},
    "workdays": ["mon", "tue", "wed", "thu", "fri"]
  }

  Rule:
  {
    "id": "rate-global",
    "type": "daily_rate",
    "amount": "800.00",
    "is_active": true,
    "applies_to_all": true
  }

  Catalog:
  [{"code": "GSIS", "category": "government", "description": "..."}]

USAGE:
  f := NewConfigFactory()
  shift, err := f.ParseShift(jsonString)
  rule, err := f.ParseRule(jsonString)

SEE ALSO:
  - attendance/types.go: Shift
  - payroll/rates.go: Rule
  - payroll/deductions.go: Catalog
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ShiftJSON is the JSON representation of a shift.
type ShiftJSON struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Start        string   `json:"start"` // HH:MM, civil time
	End          string   `json:"end"`
	GraceMinutes int      `json:"grace_minutes"`
	BreakMinutes int      `json:"break_minutes,omitempty"`
	Split        *GapJSON `json:"split,omitempty"`
	Workdays     []string `json:"workdays,omitempty"` // default mon-fri
}

// GapJSON is the lunch gap of a split shift.
type GapJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RuleJSON is the JSON representation of a payroll rule. Amount accepts a JSON
// number or string.
type RuleJSON struct {
	ID           string          `json:"id,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	IsActive     bool            `json:"is_active"`
	AppliesToAll bool            `json:"applies_to_all"`
	EmployeeID   string          `json:"employee_id,omitempty"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON configuration to domain values.
type ConfigFactory struct{}

// NewConfigFactory creates a new config factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseShift parses a JSON string into a validated Shift.
func (f *ConfigFactory) ParseShift(jsonStr string) (attendance.Shift, error) {
	var sj ShiftJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return attendance.Shift{}, fmt.Errorf("failed to parse shift JSON: %w", err)
	}
	return f.ShiftFromJSON(sj)
}

// ShiftFromJSON converts ShiftJSON to a validated Shift.
func (f *ConfigFactory) ShiftFromJSON(sj ShiftJSON) (attendance.Shift, error) {
	start, err := ParseClock(sj.Start)
	if err != nil {
		return attendance.Shift{}, fmt.Errorf("shift start: %w", err)
	}
	end, err := ParseClock(sj.End)
	if err != nil {
		return attendance.Shift{}, fmt.Errorf("shift end: %w", err)
	}
	workdays, err := parseWorkdays(sj.Workdays)
	if err != nil {
		return attendance.Shift{}, err
	}

	shift := attendance.Shift{
		Name:         sj.Name,
		StartMinutes: start,
		EndMinutes:   end,
		GraceMinutes: sj.GraceMinutes,
		BreakMinutes: sj.BreakMinutes,
		Workdays:     workdays,
	}
	if sj.Split != nil {
		gs, err := ParseClock(sj.Split.Start)
		if err != nil {
			return attendance.Shift{}, fmt.Errorf("split start: %w", err)
		}
		ge, err := ParseClock(sj.Split.End)
		if err != nil {
			return attendance.Shift{}, fmt.Errorf("split end: %w", err)
		}
		shift.Split = &attendance.Gap{StartMinutes: gs, EndMinutes: ge}
	}

	if err := shift.Validate(); err != nil {
		return attendance.Shift{}, err
	}
	return shift, nil
}

// ShiftToJSON converts a Shift to ShiftJSON.
func (f *ConfigFactory) ShiftToJSON(id string, s attendance.Shift) ShiftJSON {
	sj := ShiftJSON{
		ID:           id,
		Name:         s.Name,
		Start:        FormatClock(s.StartMinutes),
		End:          FormatClock(s.EndMinutes),
		GraceMinutes: s.GraceMinutes,
		BreakMinutes: s.BreakMinutes,
	}
	if s.Split != nil {
		sj.Split = &GapJSON{Start: FormatClock(s.Split.StartMinutes), End: FormatClock(s.Split.EndMinutes)}
	}
	if s.Workdays != 0 {
		for _, d := range s.Workdays.Weekdays() {
			sj.Workdays = append(sj.Workdays, weekdayNames[d])
		}
	}
	return sj
}

// ParseRule parses a JSON string into a validated Rule.
func (f *ConfigFactory) ParseRule(jsonStr string) (payroll.Rule, error) {
	var rj RuleJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return payroll.Rule{}, fmt.Errorf("failed to parse rule JSON: %w", err)
	}
	return f.RuleFromJSON(rj)
}

// RuleFromJSON converts RuleJSON to a validated Rule.
func (f *ConfigFactory) RuleFromJSON(rj RuleJSON) (payroll.Rule, error) {
	typ, err := payroll.ParseRuleType(rj.Type)
	if err != nil {
		return payroll.Rule{}, err
	}
	rule := payroll.Rule{
		ID:           rj.ID,
		Type:         typ,
		Amount:       rj.Amount,
		IsActive:     rj.IsActive,
		AppliesToAll: rj.AppliesToAll,
		EmployeeID:   rj.EmployeeID,
	}
	if err := rule.Validate(); err != nil {
		return payroll.Rule{}, err
	}
	return rule, nil
}

// RuleToJSON converts a Rule to RuleJSON.
func (f *ConfigFactory) RuleToJSON(r payroll.Rule) RuleJSON {
	return RuleJSON{
		ID:           r.ID,
		Type:         string(r.Type),
		Amount:       r.Amount,
		IsActive:     r.IsActive,
		AppliesToAll: r.AppliesToAll,
		EmployeeID:   r.EmployeeID,
	}
}

// ParseCatalog parses a JSON array of catalog entries.
func (f *ConfigFactory) ParseCatalog(jsonStr string) (*payroll.Catalog, error) {
	var entries []payroll.CatalogEntry
	if err := json.Unmarshal([]byte(jsonStr), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return payroll.NewCatalog(entries)
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseClock reads "HH:MM" as minutes since midnight. "24:00" is allowed as
// the end of day.
func ParseClock(s string) (int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(ms) != 2 {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	h, herr := strconv.Atoi(hs)
	m, merr := strconv.Atoi(ms)
	if herr != nil || merr != nil {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", s)
	}
	if h < 0 || m < 0 || m > 59 || h*60+m > civil.MinutesPerDay {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock writes minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday: "sun", time.Monday: "mon", time.Tuesday: "tue", time.Wednesday: "wed",
	time.Thursday: "thu", time.Friday: "fri", time.Saturday: "sat",
}

func parseWorkdays(names []string) (civil.WeekdaySet, error) {
	if len(names) == 0 {
		return 0, nil
	}
	var days []time.Weekday
	for _, n := range names {
		found := false
		for d, name := range weekdayNames {
			if strings.EqualFold(n, name) || strings.EqualFold(n, d.String()) {
				days = append(days, d)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown workday %q", n)
		}
	}
	return civil.NewWeekdaySet(days...), nil
}
