/*
Package config loads server configuration from the environment.

PURPOSE:
  Reads a .env file when present (godotenv), then environment variables,
  and validates them into a typed Config. Command-line flags in cmd/server
  override PORT and DB_PATH.

VARIABLES:
  PORT                        HTTP port (default 8080)
  DB_PATH                     SQLite path (default payroll.db, ":memory:" allowed)
  JWT_SECRET                  Token signing key (required when APP_ENV=production)
  TOKEN_TTL                   Token lifetime (default 24h)
  APP_ENV                     development | production (default development)
  LOG_LEVEL                   debug | info | warn | error (default info)
  CORS_ORIGINS                Comma-separated allowed origins
  HOURS_PER_DAY               Hours in a paid day (default 8)
  DEFAULT_OVERLOAD_RATE       Fallback overload daily rate (default 800)
  DEDUCTION_CATALOG           JSON file of deduction codes replacing the built-in catalog
  PAY_PERIOD                  semi_monthly | monthly (default semi_monthly)
  PAYROLL_SCHEDULER_INTERVAL  How often the scheduler checks (default 1h)
  PAYROLL_SCHEDULER_ENABLED   true | false (default true)
  ADMIN_EMAIL, ADMIN_PASSWORD First admin, created only when no employees exist

SEE ALSO:
  - cmd/server/main.go: flag overrides
  - logging/logging.go: logger built from APP_ENV and LOG_LEVEL
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/factory"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

const devJWTSecret = "bisu-payroll-dev-secret"

// Config is the validated server configuration.
type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	Env         string
	LogLevel    string
	CORSOrigins []string

	Rates     payroll.RateConfig
	PayPeriod civil.PeriodConfig
	Catalog   *payroll.Catalog // nil means payroll.DefaultCatalog

	SchedulerInterval time.Duration
	SchedulerEnabled  bool

	AdminEmail    string
	AdminPassword string
}

// IsProduction reports whether APP_ENV is production.
func (c Config) IsProduction() bool { return c.Env == "production" }

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, so tests can supply a map.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	cfg := Config{
		DBPath:   get("DB_PATH", "payroll.db"),
		Env:      get("APP_ENV", "development"),
		LogLevel: get("LOG_LEVEL", "info"),
		Rates:    payroll.DefaultRateConfig(),

		AdminEmail:    get("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD"),
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	port, err := strconv.Atoi(get("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: invalid port %q", get("PORT", "")))
	}
	cfg.Port = port

	cfg.JWTSecret = get("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		cfg.JWTSecret = devJWTSecret
	}

	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "http://localhost:5173,http://localhost:8080"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if v := get("HOURS_PER_DAY", ""); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			errs = append(errs, fmt.Errorf("HOURS_PER_DAY: must be a positive number, got %q", v))
		} else {
			cfg.Rates.HoursPerDay = d
		}
	}
	if v := get("DEFAULT_OVERLOAD_RATE", ""); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			errs = append(errs, fmt.Errorf("DEFAULT_OVERLOAD_RATE: must be a positive number, got %q", v))
		} else {
			cfg.Rates.DefaultOverloadRate = d
		}
	}

	if path := get("DEDUCTION_CATALOG", ""); path != "" {
		if cfg.Catalog, err = loadCatalog(path); err != nil {
			errs = append(errs, fmt.Errorf("DEDUCTION_CATALOG: %w", err))
		}
	}

	pt, err := civil.ParsePeriodType(get("PAY_PERIOD", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("PAY_PERIOD: %w", err))
	}
	cfg.PayPeriod = civil.PeriodConfig{Type: pt}

	if cfg.SchedulerInterval, err = time.ParseDuration(get("PAYROLL_SCHEDULER_INTERVAL", "1h")); err != nil || cfg.SchedulerInterval <= 0 {
		errs = append(errs, fmt.Errorf("PAYROLL_SCHEDULER_INTERVAL: invalid duration %q", get("PAYROLL_SCHEDULER_INTERVAL", "")))
	}
	if cfg.SchedulerEnabled, err = strconv.ParseBool(get("PAYROLL_SCHEDULER_ENABLED", "true")); err != nil {
		errs = append(errs, fmt.Errorf("PAYROLL_SCHEDULER_ENABLED: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadCatalog(path string) (*payroll.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return factory.NewConfigFactory().ParseCatalog(string(data))
}
