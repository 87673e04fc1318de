/*
scheduler.go - Automated payroll run scheduler

PURPOSE:
  Periodically checks whether the previous pay period has been paid and,
  if not, runs payroll for it.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The target period is the pay period before the one containing today
  - Skips periods that already have a completed run
  - Stop cancels the context of an in-flight check; the run is recorded
    as failed and retried on the next start
  - Records runs (trigger "scheduler") for audit and UI display

CONFIGURATION:
  - CheckInterval: PAYROLL_SCHEDULER_INTERVAL (default: 1 hour)
  - Enabled: PAYROLL_SCHEDULER_ENABLED (default: true)

USAGE:
  scheduler := NewPayrollScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - payroll.go: RunPayroll (shared with POST /api/payroll/runs)
  - store/sqlite/payroll.go: IsPeriodCompleted
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// PayrollScheduler runs payroll for each closed pay period once.
type PayrollScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	runMu  sync.Mutex
}

// NewPayrollScheduler creates a new scheduler.
func NewPayrollScheduler(handler *Handler) *PayrollScheduler {
	return &PayrollScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (ps *PayrollScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	log := ps.Handler.Logger.Named("scheduler")
	if !ps.Enabled {
		log.Info("disabled, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.cancel = cancel
	ps.wg.Add(1)
	go ps.run(ctx, ps.ticker.C)

	log.Info("started", zap.Duration("interval", ps.CheckInterval))
}

// Stop stops the scheduler, cancelling an in-flight check, and waits for it
// to return.
func (ps *PayrollScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		ps.cancel()
		ps.wg.Wait()
		ps.ticker = nil
		ps.cancel = nil
		ps.Handler.Logger.Named("scheduler").Info("stopped")
	}
}

func (ps *PayrollScheduler) run(ctx context.Context, tick <-chan time.Time) {
	defer ps.wg.Done()

	// Run immediately on start
	ps.checkAndProcess(ctx)

	for {
		select {
		case <-tick:
			ps.checkAndProcess(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow triggers an immediate check. It reports whether a run was made.
func (ps *PayrollScheduler) RunNow() bool {
	return ps.checkAndProcess(context.Background())
}

// NextPeriod returns the period the next check would pay.
func (ps *PayrollScheduler) NextPeriod() civil.Period {
	h := ps.Handler
	return h.PayPeriod.Previous(civil.LocalDateKey(h.now()))
}

func (ps *PayrollScheduler) checkAndProcess(ctx context.Context) bool {
	ps.runMu.Lock()
	defer ps.runMu.Unlock()

	h := ps.Handler
	log := h.Logger.Named("scheduler")
	period := ps.NextPeriod()

	done, err := h.Store.IsPeriodCompleted(ctx, period)
	if err != nil {
		log.Error("checking run status", zap.String("period", period.String()), zap.Error(err))
		return false
	}
	if done {
		log.Debug("period already paid", zap.String("period", period.String()))
		return false
	}

	rec, _, err := h.RunPayroll(ctx, period, "scheduler")
	if err != nil {
		log.Error("payroll run failed", zap.String("period", period.String()), zap.String("run_id", rec.ID), zap.Error(err))
		return false
	}
	return true
}
