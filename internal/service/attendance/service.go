package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/leave-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceLogRepository
	attendance.AttendanceExceptionRepository
	leave.LeaveTypeRepository
	ledger      leave.LedgerService
	journal     leave.JournalService
	tx          database.Transactor
	clock       clock.Clock
	policy      attendance.Policy
	leavePolicy leave.Policy
}

// RecordTimeIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordTimeIn(ctx context.Context, req attendance.TimeInRequest) (attendance.AttendanceLogResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	timeIn := a.clock.Now()

	var created attendance.AttendanceLog
	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := a.AttendanceLogRepository.GetOpenByEmployee(ctx, req.EmployeeID); err == nil {
			return attendance.ErrAlreadyTimedIn
		} else if !errors.Is(err, attendance.ErrNoOpenLog) {
			return fmt.Errorf("failed to get open attendance log: %w", err)
		}

		var err error
		created, err = a.AttendanceLogRepository.Create(ctx, attendance.AttendanceLog{
			EmployeeID: req.EmployeeID,
			Date:       clock.Date(timeIn),
			TimeIn:     timeIn,
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance log: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceLogResponse{}, err
	}

	slog.Info("Recorded time-in", "employee_id", created.EmployeeID, "log_id", created.ID, "time_in", created.TimeIn)
	return attendance.NewLogResponse(created), nil
}

// RecordTimeOut implements attendance.AttendanceService. Closing the log,
// the exception, the compensatory ledger entry and its journal line commit
// together or not at all.
func (a *AttendanceServiceImpl) RecordTimeOut(ctx context.Context, req attendance.TimeOutRequest) (attendance.TimeOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.TimeOutResponse{}, err
	}

	timeOut := a.clock.Now()

	resp := attendance.TimeOutResponse{CreditDelta: decimal.Zero, Message: "Time-out recorded"}
	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		log, err := a.AttendanceLogRepository.GetOpenByEmployee(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		// the system clock stepped back since time-in
		if timeOut.Before(log.TimeIn) {
			return attendance.ErrTimeOutBeforeTimeIn
		}

		if err := a.AttendanceLogRepository.SetTimeOut(ctx, log.ID, timeOut); err != nil {
			return fmt.Errorf("failed to set time-out: %w", err)
		}
		log.TimeOut = &timeOut
		resp.Log = attendance.NewLogResponse(log)

		resp.WorkedHours = attendance.WorkedHours(log.TimeIn, timeOut)
		deviation := a.policy.Assess(resp.WorkedHours)

		switch {
		case deviation.IsOvertime():
			return a.bookOvertime(ctx, log, deviation.Overtime, &resp)
		case deviation.IsUndertime():
			return a.bookUndertime(ctx, log, deviation.Undertime, &resp)
		}
		return nil
	})
	if err != nil {
		return attendance.TimeOutResponse{}, err
	}

	slog.Info("Recorded time-out",
		"employee_id", req.EmployeeID,
		"log_id", resp.Log.ID,
		"worked_hours", resp.WorkedHours.String(),
		"credit_delta", resp.CreditDelta.String(),
	)
	return resp, nil
}

func (a *AttendanceServiceImpl) bookOvertime(ctx context.Context, log attendance.AttendanceLog, hours decimal.Decimal, resp *attendance.TimeOutResponse) error {
	compType, err := a.compensatoryType(ctx)
	if err != nil {
		return err
	}

	validUntil := attendance.OvertimeValidUntil(log.Date)
	exception, err := a.AttendanceExceptionRepository.Create(ctx, attendance.AttendanceException{
		AttendanceLogID: log.ID,
		Hours:           hours,
		IsOvertime:      true,
		ValidUntil:      &validUntil,
	})
	if err != nil {
		return fmt.Errorf("failed to create overtime exception: %w", err)
	}

	credit, err := a.ledger.CreditOvertime(ctx, log.EmployeeID, compType.ID, hours)
	if err != nil {
		return err
	}

	if _, err := a.journal.Record(ctx, []leave.JournalEntry{{
		EmployeeID:            log.EmployeeID,
		LeaveTypeID:           compType.ID,
		AttendanceExceptionID: &exception.ID,
		TransactionType:       leave.TransactionEarn,
		TimeUnit:              leave.TimeUnitHour,
		// raw overtime hours; only the balance carries the multiplier
		Quantity:              hours,
	}}); err != nil {
		return err
	}

	exc := attendance.NewExceptionResponse(exception)
	resp.Exception = &exc
	resp.CreditDelta = credit
	resp.Message = "Overtime recorded"
	return nil
}

func (a *AttendanceServiceImpl) bookUndertime(ctx context.Context, log attendance.AttendanceLog, hours decimal.Decimal, resp *attendance.TimeOutResponse) error {
	compType, err := a.compensatoryType(ctx)
	if err != nil {
		return err
	}

	exception, err := a.AttendanceExceptionRepository.Create(ctx, attendance.AttendanceException{
		AttendanceLogID: log.ID,
		Hours:           hours,
		IsOvertime:      false,
	})
	if err != nil {
		return fmt.Errorf("failed to create undertime exception: %w", err)
	}

	deducted, err := a.ledger.DebitUndertime(ctx, log.EmployeeID, compType.ID, hours)
	if err != nil {
		return err
	}

	if _, err := a.journal.Record(ctx, []leave.JournalEntry{{
		EmployeeID:            log.EmployeeID,
		LeaveTypeID:           compType.ID,
		AttendanceExceptionID: &exception.ID,
		TransactionType:       leave.TransactionDeduct,
		TimeUnit:              leave.TimeUnitHour,
		Quantity:              deducted,
	}}); err != nil {
		return err
	}

	exc := attendance.NewExceptionResponse(exception)
	resp.Exception = &exc
	resp.CreditDelta = deducted.Neg()
	resp.Message = "Undertime recorded"
	return nil
}

func (a *AttendanceServiceImpl) compensatoryType(ctx context.Context) (leave.LeaveType, error) {
	lt, err := a.LeaveTypeRepository.GetByCode(ctx, a.leavePolicy.CompensatoryLeaveCode)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveTypeNotFound) {
			return leave.LeaveType{}, leave.ErrCompensatoryTypeMissing
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get compensatory leave type: %w", err)
	}
	return lt, nil
}

func (a *AttendanceServiceImpl) ListMyLogs(ctx context.Context, filter attendance.MyLogsFilter) ([]attendance.AttendanceLogResponse, error) {
	from, to, err := filter.Validate()
	if err != nil {
		return nil, err
	}

	logs, err := a.AttendanceLogRepository.ListByEmployee(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance logs: %w", err)
	}

	responses := make([]attendance.AttendanceLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, attendance.NewLogResponse(l))
	}
	return responses, nil
}

func (a *AttendanceServiceImpl) ListExceptions(ctx context.Context, employeeID string) ([]attendance.AttendanceExceptionResponse, error) {
	exceptions, err := a.AttendanceExceptionRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance exceptions: %w", err)
	}

	responses := make([]attendance.AttendanceExceptionResponse, 0, len(exceptions))
	for _, e := range exceptions {
		responses = append(responses, attendance.NewExceptionResponse(e))
	}
	return responses, nil
}

func NewAttendanceService(
	logRepo attendance.AttendanceLogRepository,
	exceptionRepo attendance.AttendanceExceptionRepository,
	leaveTypeRepo leave.LeaveTypeRepository,
	ledger leave.LedgerService,
	journal leave.JournalService,
	tx database.Transactor,
	clk clock.Clock,
	policy attendance.Policy,
	leavePolicy leave.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceLogRepository:       logRepo,
		AttendanceExceptionRepository: exceptionRepo,
		LeaveTypeRepository:           leaveTypeRepo,
		ledger:                        ledger,
		journal:                       journal,
		tx:                            tx,
		clock:                         clk,
		policy:                        policy,
		leavePolicy:                   leavePolicy,
	}
}
