package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "payroll.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, civil.PeriodSemiMonthly, cfg.PayPeriod.Type)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.True(t, cfg.Rates.HoursPerDay.Equal(decimal.NewFromInt(8)))
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":                       "3000",
		"JWT_SECRET":                 "s3cret",
		"CORS_ORIGINS":               "https://payroll.bisu.edu.ph, ",
		"HOURS_PER_DAY":              "7.5",
		"DEFAULT_OVERLOAD_RATE":      "640",
		"PAY_PERIOD":                 "monthly",
		"PAYROLL_SCHEDULER_INTERVAL": "15m",
		"PAYROLL_SCHEDULER_ENABLED":  "false",
	}))

	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://payroll.bisu.edu.ph"}, cfg.CORSOrigins)
	assert.True(t, cfg.Rates.HoursPerDay.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, cfg.Rates.DefaultOverloadRate.Equal(decimal.NewFromInt(640)))
	assert.Equal(t, civil.PeriodMonthly, cfg.PayPeriod.Type)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.False(t, cfg.SchedulerEnabled)
}

func TestFromEnv_CollectsErrors(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"APP_ENV":       "production",
		"PORT":          "abc",
		"HOURS_PER_DAY": "0",
		"PAY_PERIOD":    "weekly",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "HOURS_PER_DAY")
	assert.Contains(t, err.Error(), "PAY_PERIOD")
}

func TestFromEnv_AdminSeedNeedsBothValues(t *testing.T) {
	// GIVEN only an admin email
	_, err := FromEnv(envMap(map[string]string{"ADMIN_EMAIL": "hr@bisu.edu.ph"}))

	// THEN the configuration is rejected
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

	// GIVEN both
	cfg, err := FromEnv(envMap(map[string]string{"ADMIN_EMAIL": "hr@bisu.edu.ph", "ADMIN_PASSWORD": "changeme"}))
	require.NoError(t, err)
	assert.Equal(t, "hr@bisu.edu.ph", cfg.AdminEmail)
}

func TestFromEnv_DeductionCatalogFile(t *testing.T) {
	// GIVEN: a catalog file with a campus-specific code
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"code": "GSIS", "category": "government", "description": "GSIS premium"},
		{"code": "CLUB_DUES", "category": "other", "description": "Faculty club dues"}
	]`), 0o600))

	// WHEN
	cfg, err := FromEnv(envMap(map[string]string{"DEDUCTION_CATALOG": path}))

	// THEN: the file replaces the built-in catalog
	require.NoError(t, err)
	require.NotNil(t, cfg.Catalog)
	assert.Equal(t, payroll.CategoryOther, cfg.Catalog.Categorize("CLUB_DUES"))
	assert.Equal(t, payroll.CategoryCustom, cfg.Catalog.Categorize("LBP_LOAN"))
}

func TestFromEnv_DeductionCatalogErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"code": "X", "category": "custom"}]`), 0o600))

	for _, path := range []string{bad, filepath.Join(t.TempDir(), "missing.json")} {
		_, err := FromEnv(envMap(map[string]string{"DEDUCTION_CATALOG": path}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DEDUCTION_CATALOG")
	}
}

func TestFromEnv_DefaultsKeepBuiltInCatalog(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	assert.Nil(t, cfg.Catalog)
}
