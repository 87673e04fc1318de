package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYROLL RULES - Read-only configuration
// =============================================================================

// RuleType identifies what a rule configures.
type RuleType string

const (
	RuleDailyRate    RuleType = "daily_rate"
	RuleOverloadRate RuleType = "overload_rate"
)

// ParseRuleType validates a stored or submitted rule type.
func ParseRuleType(s string) (RuleType, error) {
	switch RuleType(s) {
	case RuleDailyRate, RuleOverloadRate:
		return RuleType(s), nil
	default:
		return "", fmt.Errorf("unknown rule type %q", s)
	}
}

// Rule is a payroll configuration record. A rule either targets one employee
// (EmployeeID set) or all employees (AppliesToAll).
type Rule struct {
	ID           string
	Type         RuleType
	Amount       decimal.Decimal
	IsActive     bool
	AppliesToAll bool
	EmployeeID   string
	UpdatedAt    time.Time
}

// Validate checks the rule targets someone and carries a positive amount.
func (r Rule) Validate() error {
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: rule amount must be positive", ErrInvalidAmount)
	}
	if !r.AppliesToAll && r.EmployeeID == "" {
		return fmt.Errorf("rule must name an employee or apply to all")
	}
	if r.AppliesToAll && r.EmployeeID != "" {
		return fmt.Errorf("a rule applying to all employees cannot name one")
	}
	return nil
}

// =============================================================================
// RATE CONFIGURATION
// =============================================================================

// RateConfig holds the constants the resolver derives rates with. Callers pass
// it in so tests and deployments can override every value.
type RateConfig struct {
	HoursPerDay         decimal.Decimal
	Tier1Multiplier     decimal.Decimal
	Tier2Multiplier     decimal.Decimal
	DefaultOverloadRate decimal.Decimal // daily rate used when no overload rule exists
}

// DefaultRateConfig is an 8-hour day with 1.25x and 1.5x overtime premiums.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		HoursPerDay:         decimal.NewFromInt(8),
		Tier1Multiplier:     decimal.RequireFromString("1.25"),
		Tier2Multiplier:     decimal.RequireFromString("1.5"),
		DefaultOverloadRate: decimal.NewFromInt(800),
	}
}

func (c RateConfig) withDefaults() RateConfig {
	d := DefaultRateConfig()
	if !c.HoursPerDay.IsPositive() {
		c.HoursPerDay = d.HoursPerDay
	}
	if !c.Tier1Multiplier.IsPositive() {
		c.Tier1Multiplier = d.Tier1Multiplier
	}
	if !c.Tier2Multiplier.IsPositive() {
		c.Tier2Multiplier = d.Tier2Multiplier
	}
	if !c.DefaultOverloadRate.IsPositive() {
		c.DefaultOverloadRate = d.DefaultOverloadRate
	}
	return c
}

// =============================================================================
// RATES
// =============================================================================

// RateSource says which rule produced a rate.
type RateSource string

const (
	SourceEmployee RateSource = "employee"
	SourceGlobal   RateSource = "global"
	SourceDefault  RateSource = "default"
)

// Rates are the resolved pay rates for one employee. Money fields are rounded
// to centavos; HoursPerDay is kept so callers can prorate the exact daily rate.
type Rates struct {
	EmployeeID    string
	Type          RuleType
	DailyRate     decimal.Decimal
	HourlyRate    decimal.Decimal
	OvertimeRate1 decimal.Decimal
	OvertimeRate2 decimal.Decimal
	HoursPerDay   decimal.Decimal
	Source        RateSource
	RuleID        string
}

// PerMinute is the exact (unrounded) daily rate divided over the paid minutes of a day.
func (r Rates) PerMinute() decimal.Decimal {
	return r.DailyRate.Div(r.HoursPerDay.Mul(decimal.NewFromInt(60)))
}

// =============================================================================
// RESOLVER
// =============================================================================

// RateResolver resolves hourly and overtime rates from a snapshot of rules.
// It never mutates the rules and is safe for concurrent use.
type RateResolver struct {
	Rules  []Rule
	Config RateConfig
}

// NewRateResolver builds a resolver, filling zero config values with defaults.
func NewRateResolver(rules []Rule, cfg RateConfig) *RateResolver {
	return &RateResolver{Rules: rules, Config: cfg.withDefaults()}
}

// Resolve returns the employee's daily-rate derived rates. Resolution order:
// employee-specific active rule, then global active rule, else
// *RateNotConfiguredError.
func (rr *RateResolver) Resolve(employeeID string) (Rates, error) {
	rule, source, ok := rr.lookup(employeeID, RuleDailyRate)
	if !ok {
		return Rates{}, &RateNotConfiguredError{EmployeeID: employeeID, RuleType: RuleDailyRate}
	}
	return rr.derive(employeeID, RuleDailyRate, rule.Amount, source, rule.ID), nil
}

// ResolveOverload returns the overload rates, falling back to
// Config.DefaultOverloadRate rather than failing.
func (rr *RateResolver) ResolveOverload(employeeID string) Rates {
	rule, source, ok := rr.lookup(employeeID, RuleOverloadRate)
	if !ok {
		return rr.derive(employeeID, RuleOverloadRate, rr.Config.withDefaults().DefaultOverloadRate, SourceDefault, "")
	}
	return rr.derive(employeeID, RuleOverloadRate, rule.Amount, source, rule.ID)
}

// lookup finds the most recently updated active rule, preferring
// employee-specific rules over global ones.
func (rr *RateResolver) lookup(employeeID string, typ RuleType) (Rule, RateSource, bool) {
	var specific, global *Rule
	for i := range rr.Rules {
		r := &rr.Rules[i]
		if r.Type != typ || !r.IsActive {
			continue
		}
		switch {
		case r.EmployeeID != "" && r.EmployeeID == employeeID && !r.AppliesToAll:
			if specific == nil || r.UpdatedAt.After(specific.UpdatedAt) {
				specific = r
			}
		case r.AppliesToAll:
			if global == nil || r.UpdatedAt.After(global.UpdatedAt) {
				global = r
			}
		}
	}
	if specific != nil {
		return *specific, SourceEmployee, true
	}
	if global != nil {
		return *global, SourceGlobal, true
	}
	return Rule{}, "", false
}

func (rr *RateResolver) derive(employeeID string, typ RuleType, daily decimal.Decimal, source RateSource, ruleID string) Rates {
	cfg := rr.Config.withDefaults()
	hourly := daily.Div(cfg.HoursPerDay)
	return Rates{
		EmployeeID:    employeeID,
		Type:          typ,
		DailyRate:     Round(daily),
		HourlyRate:    Round(hourly),
		OvertimeRate1: Round(hourly.Mul(cfg.Tier1Multiplier)),
		OvertimeRate2: Round(hourly.Mul(cfg.Tier2Multiplier)),
		HoursPerDay:   cfg.HoursPerDay,
		Source:        source,
		RuleID:        ruleID,
	}
}
