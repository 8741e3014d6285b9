package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
)

const (
	JobAccrueMonthly = "accrue_monthly_leave"
	JobCarryOver     = "carry_over_yearly_leave"
)

// ErrUnknownJob is returned by Run for a name that is not a leave job.
var ErrUnknownJob = apperror.NotFound("unknown leave job")

// LeaveJobs drives the periodic ledger operations. The ledger calls
// themselves are not idempotent, so each job remembers the last period it
// ran for and skips a repeat within the same process.
type LeaveJobs struct {
	ledger leave.LedgerService
	tx     database.Transactor
	clock  clock.Clock

	mu            sync.Mutex
	lastAccrual   string
	lastCarryOver int
}

func NewLeaveJobs(ledger leave.LedgerService, tx database.Transactor, clk clock.Clock) *LeaveJobs {
	return &LeaveJobs{ledger: ledger, tx: tx, clock: clk}
}

func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	// Carry-over must land before the January accrual, so the accrual job
	// triggers it itself when needed.
	scheduler.AddJob(JobCarryOver, interval, j.CarryOverYearlyLeave)
	scheduler.AddJob(JobAccrueMonthly, interval, j.AccrueMonthlyLeave)
}

// AccrueMonthlyLeave accrues once on the first day of each month.
func (j *LeaveJobs) AccrueMonthlyLeave(ctx context.Context) error {
	now := j.clock.Now()
	if now.Day() != 1 {
		return nil
	}
	if now.Month() == time.January {
		if err := j.CarryOverYearlyLeave(ctx); err != nil {
			return err
		}
	}

	period := now.Format("2006-01")
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastAccrual == period {
		return nil
	}

	slog.Info("Cron: Starting monthly leave accrual", "period", period)
	n, err := j.runInTx(ctx, j.ledger.AccrueMonthly)
	if err != nil {
		return fmt.Errorf("failed to accrue monthly leave: %w", err)
	}
	j.lastAccrual = period
	slog.Info("Cron: Monthly leave accrual completed", "period", period, "rows", n)
	return nil
}

// CarryOverYearlyLeave carries balances over once on 1 January.
func (j *LeaveJobs) CarryOverYearlyLeave(ctx context.Context) error {
	now := j.clock.Now()
	if now.Month() != time.January || now.Day() != 1 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastCarryOver == now.Year() {
		return nil
	}

	slog.Info("Cron: Starting yearly leave carry-over", "year", now.Year())
	n, err := j.runInTx(ctx, j.ledger.CarryOverYearly)
	if err != nil {
		return fmt.Errorf("failed to carry over leave: %w", err)
	}
	j.lastCarryOver = now.Year()
	slog.Info("Cron: Yearly leave carry-over completed", "year", now.Year(), "rows", n)
	return nil
}

// Run executes a job immediately, ignoring the calendar gate and the
// last-period guard. It backs the admin trigger endpoints.
func (j *LeaveJobs) Run(ctx context.Context, name string) (leave.JobResult, error) {
	var op func(context.Context) (int64, error)
	switch name {
	case JobAccrueMonthly:
		op = j.ledger.AccrueMonthly
	case JobCarryOver:
		op = j.ledger.CarryOverYearly
	default:
		return leave.JobResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	n, err := j.runInTx(ctx, op)
	if err != nil {
		return leave.JobResult{}, err
	}
	slog.Info("Leave job triggered manually", "job", name, "rows", n)
	return leave.JobResult{Job: name, RowsAffected: n}, nil
}

func (j *LeaveJobs) runInTx(ctx context.Context, op func(context.Context) (int64, error)) (int64, error) {
	var n int64
	err := j.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		n, err = op(ctx)
		return err
	})
	return n, err
}
