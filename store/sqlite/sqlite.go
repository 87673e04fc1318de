/*
Package sqlite provides a SQLite-backed implementation of the payroll storage.

PURPOSE:
  Persists employees, punches, holidays, payroll rules, shifts, overtime
  requests, deductions and payroll runs through GORM, and serves them back
  to the payroll runner as a payroll.Source.

KEY TABLES:
  employees:       Employee records and login credentials
  punches:         Immutable time-in/time-out events (UTC)
  holidays:        Holiday calendar keyed by civil date
  payroll_rules:   daily_rate / overload_rate configuration
  shifts:          Shift definitions (JSON config, see factory)
  overtime:        Overtime and overload requests with review state
  deductions:      Per-period deduction line items
  payroll_runs:    Batch run history

INDEXES:
  - idx_punch_unique: the same punch can't be recorded twice
  - idx_punches_employee_time: punches by employee and instant (hot path)
  - idx_overtime_employee_date: overtime by employee and date

PUNCHES ARE APPEND-ONLY:
  There is no update or delete for punches. A wrong punch is corrected by
  adding the missing one; the evaluator flags the day incomplete meanwhile.

OVERTIME REVIEW:
  Updates, deletes and reviews only touch rows still in 'pending'. The
  condition is part of the UPDATE/DELETE itself, so two reviewers racing on
  the same request can't both win.

DATES AND TIMES:
  Instants are stored in UTC. Civil dates (holidays, overtime dates, periods)
  are stored as "2006-01-02" strings, which compare correctly as text.

CONCURRENCY:
  The database serializes writers. ":memory:" databases are limited to a
  single connection so every query sees the same database.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  runner := payroll.NewRunner(store, payroll.DefaultRateConfig())

SEE ALSO:
  - payroll/runner.go: Source interface
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")

	// ErrRequestNotPending is returned when changing a reviewed overtime request.
	ErrRequestNotPending = payroll.ErrRequestNotPending
)

// Store implements payroll.Source and the API's persistence on SQLite.
type Store struct {
	db *gorm.DB
}

var _ payroll.Source = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	memory := dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")

	dsn := dbPath
	if !memory {
		dsn = dbPath + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&employeeModel{},
		&punchModel{},
		&holidayModel{},
		&ruleModel{},
		&shiftModel{},
		&overtimeModel{},
		&deductionModel{},
		&payrollRunModel{},
	)
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{"payroll_runs", "deductions", "overtime", "shifts", "payroll_rules", "holidays", "punches", "employees"}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// classify maps driver errors onto the store's sentinels.
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
