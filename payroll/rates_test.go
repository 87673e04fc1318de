package payroll_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestResolve_DerivesHourlyAndOvertimeTiers(t *testing.T) {
	// GIVEN: a global daily rate of 800
	rr := payroll.NewRateResolver([]payroll.Rule{
		{ID: "r1", Type: payroll.RuleDailyRate, Amount: dec("800"), IsActive: true, AppliesToAll: true},
	}, payroll.DefaultRateConfig())

	// WHEN
	rates, err := rr.Resolve("emp-1")

	// THEN: hourly 100, tier 1 125, tier 2 150
	require.NoError(t, err)
	assertDec(t, "100", rates.HourlyRate)
	assertDec(t, "125", rates.OvertimeRate1)
	assertDec(t, "150", rates.OvertimeRate2)
	assert.Equal(t, payroll.SourceGlobal, rates.Source)
	assert.Equal(t, "r1", rates.RuleID)
}

func TestResolve_EmployeeRuleBeatsGlobal(t *testing.T) {
	rr := payroll.NewRateResolver([]payroll.Rule{
		{ID: "global", Type: payroll.RuleDailyRate, Amount: dec("800"), IsActive: true, AppliesToAll: true},
		{ID: "mine", Type: payroll.RuleDailyRate, Amount: dec("1000"), IsActive: true, EmployeeID: "emp-1"},
		{ID: "theirs", Type: payroll.RuleDailyRate, Amount: dec("1200"), IsActive: true, EmployeeID: "emp-2"},
	}, payroll.RateConfig{})

	rates, err := rr.Resolve("emp-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.SourceEmployee, rates.Source)
	assertDec(t, "125", rates.HourlyRate)
}

func TestResolve_InactiveRulesIgnored(t *testing.T) {
	rr := payroll.NewRateResolver([]payroll.Rule{
		{ID: "old", Type: payroll.RuleDailyRate, Amount: dec("1000"), IsActive: false, EmployeeID: "emp-1"},
		{ID: "global", Type: payroll.RuleDailyRate, Amount: dec("800"), IsActive: true, AppliesToAll: true},
	}, payroll.RateConfig{})

	rates, err := rr.Resolve("emp-1")
	require.NoError(t, err)
	assert.Equal(t, "global", rates.RuleID)
}

func TestResolve_LatestUpdatedRuleWins(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rr := payroll.NewRateResolver([]payroll.Rule{
		{ID: "new", Type: payroll.RuleDailyRate, Amount: dec("900"), IsActive: true, AppliesToAll: true, UpdatedAt: t0.AddDate(0, 1, 0)},
		{ID: "old", Type: payroll.RuleDailyRate, Amount: dec("800"), IsActive: true, AppliesToAll: true, UpdatedAt: t0},
	}, payroll.RateConfig{})

	rates, err := rr.Resolve("emp-1")
	require.NoError(t, err)
	assert.Equal(t, "new", rates.RuleID)
}

func TestResolve_NoRuleIsRateNotConfigured(t *testing.T) {
	rr := payroll.NewRateResolver([]payroll.Rule{
		{ID: "overload", Type: payroll.RuleOverloadRate, Amount: dec("600"), IsActive: true, AppliesToAll: true},
	}, payroll.RateConfig{})

	_, err := rr.Resolve("emp-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, payroll.ErrRateNotConfigured))

	var rErr *payroll.RateNotConfiguredError
	require.True(t, errors.As(err, &rErr))
	assert.Equal(t, "emp-1", rErr.EmployeeID)

	cond, ok := payroll.ConditionOf(err)
	assert.True(t, ok)
	assert.Equal(t, payroll.ConditionRateNotConfigured, cond)
}

func TestResolveOverload_FallsBackToConfiguredDefault(t *testing.T) {
	cfg := payroll.DefaultRateConfig()
	cfg.DefaultOverloadRate = dec("640")
	rr := payroll.NewRateResolver(nil, cfg)

	rates := rr.ResolveOverload("emp-1")
	assert.Equal(t, payroll.SourceDefault, rates.Source)
	assertDec(t, "80", rates.HourlyRate)
}

func TestResolveOverload_ZeroConfigUsesDefaultRate(t *testing.T) {
	// GIVEN: resolvers with an empty config, built both ways
	built := payroll.NewRateResolver(nil, payroll.RateConfig{})
	literal := &payroll.RateResolver{}

	// WHEN / THEN: neither pays overload at zero
	for _, rr := range []*payroll.RateResolver{built, literal} {
		rates := rr.ResolveOverload("emp-1")
		assertDec(t, "800", rates.DailyRate)
		assertDec(t, "100", rates.HourlyRate)
	}
}

func TestResolve_RoundsToCentavos(t *testing.T) {
	rr := payroll.NewRateResolver([]payroll.Rule{
		{ID: "r", Type: payroll.RuleDailyRate, Amount: dec("777"), IsActive: true, AppliesToAll: true},
	}, payroll.RateConfig{})

	rates, err := rr.Resolve("emp-1")
	require.NoError(t, err)
	assertDec(t, "97.13", rates.HourlyRate)    // 97.125
	assertDec(t, "121.41", rates.OvertimeRate1) // 121.40625
	assertDec(t, "145.69", rates.OvertimeRate2) // 145.6875
}

func TestRuleValidate(t *testing.T) {
	assert.NoError(t, payroll.Rule{Type: payroll.RuleDailyRate, Amount: dec("1"), AppliesToAll: true}.Validate())
	assert.Error(t, payroll.Rule{Type: payroll.RuleDailyRate, Amount: dec("1")}.Validate())
	assert.ErrorIs(t, payroll.Rule{Type: payroll.RuleDailyRate, Amount: dec("0"), AppliesToAll: true}.Validate(), payroll.ErrInvalidAmount)
}

func TestCatalog_ExactMatchElseCustom(t *testing.T) {
	c := payroll.DefaultCatalog()

	assert.Equal(t, payroll.CategoryGovernment, c.Categorize("GSIS"))
	assert.Equal(t, payroll.CategoryLoans, c.Categorize("PAGIBIG_MPL"))
	assert.Equal(t, payroll.CategoryCustom, c.Categorize("gsis"), "lookup is case sensitive")
	assert.Equal(t, payroll.CategoryCustom, c.Categorize("CANTEEN"))

	item := c.Item("PHILHEALTH", dec("450"), "")
	assert.Equal(t, "PhilHealth contribution", item.Description)
}

func TestOvertimeRequest_OnlyPendingCanBeReviewed(t *testing.T) {
	req := payroll.OvertimeRequest{ID: "ot-1", Status: payroll.OvertimePending}
	now := time.Now()

	require.NoError(t, req.Approve("admin", now))
	assert.Equal(t, payroll.OvertimeApproved, req.Status)
	assert.False(t, req.Editable())

	err := req.Reject("admin", now)
	assert.ErrorIs(t, err, payroll.ErrRequestNotPending)
	assert.Equal(t, payroll.OvertimeApproved, req.Status)
}

func TestIsClientError(t *testing.T) {
	rateErr := &payroll.RateNotConfiguredError{EmployeeID: "emp-1", RuleType: payroll.RuleDailyRate}

	assert.True(t, payroll.IsClientError(rateErr))
	assert.True(t, payroll.IsClientError(payroll.ErrRequestNotPending))
	assert.True(t, payroll.IsClientError(errors.Join(errors.New("add deduction"), payroll.ErrInvalidAmount)))
	assert.False(t, payroll.IsClientError(errors.New("database is locked")))
	assert.False(t, payroll.IsClientError(nil))
}
