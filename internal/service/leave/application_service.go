package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type ApplicationService struct {
	leave.LeaveTypeRepository
	leave.LeaveApplicationRepository
	leave.LeaveApplicationDayRepository
	leave.LeaveBalanceRepository
	holidays leave.HolidayCalendar
	calendar *CalendarService
	ledger   leave.LedgerService
	journal  leave.JournalService
	tx       database.Transactor
	clock    clock.Clock
	policy   leave.Policy
}

func NewApplicationService(
	leaveTypeRepository leave.LeaveTypeRepository,
	applicationRepository leave.LeaveApplicationRepository,
	dayRepository leave.LeaveApplicationDayRepository,
	balanceRepository leave.LeaveBalanceRepository,
	holidays leave.HolidayCalendar,
	calendar *CalendarService,
	ledger leave.LedgerService,
	journal leave.JournalService,
	tx database.Transactor,
	clk clock.Clock,
	policy leave.Policy,
) *ApplicationService {
	return &ApplicationService{
		LeaveTypeRepository:           leaveTypeRepository,
		LeaveApplicationRepository:    applicationRepository,
		LeaveApplicationDayRepository: dayRepository,
		LeaveBalanceRepository:        balanceRepository,
		holidays:                      holidays,
		calendar:                      calendar,
		ledger:                        ledger,
		journal:                       journal,
		tx:                            tx,
		clock:                         clk,
		policy:                        policy,
	}
}

func (s *ApplicationService) Submit(ctx context.Context, req leave.SubmitApplicationRequest) (leave.ApplicationResponse, error) {
	start, end, err := req.Validate()
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	fraction, err := req.Fraction()
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	leaveType, err := s.LeaveTypeRepository.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	if !leaveType.IsActive {
		return leave.ApplicationResponse{}, leave.ErrLeaveTypeInactive
	}

	if err := s.validateDates(leaveType, start, end); err != nil {
		return leave.ApplicationResponse{}, err
	}

	hasOverlap, err := s.LeaveApplicationRepository.HasOverlappingLeave(ctx, req.EmployeeID, leaveType.ID, start, end)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to check overlapping leave applications: %w", err)
	}
	if hasOverlap {
		return leave.ApplicationResponse{}, leave.ErrOverlappingLeave
	}

	// matches the quantity approval deducts
	required := s.requiredCredit(leaveType.TimeUnit, totalDays(start, end), fraction)
	balance, err := s.ledger.TotalBalance(ctx, req.EmployeeID, leaveType.ID)
	if err != nil {
		return leave.ApplicationResponse{}, err
	}
	if required.GreaterThan(balance) {
		return leave.ApplicationResponse{}, leave.ErrInsufficientBalance
	}

	holidays, err := s.holidays.HolidaysBetween(ctx, start, end)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	var created leave.LeaveApplication
	var days []leave.LeaveApplicationDay
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.LeaveApplicationRepository.Create(ctx, leave.LeaveApplication{
			EmployeeID:  req.EmployeeID,
			LeaveTypeID: leaveType.ID,
			StartDate:   start,
			EndDate:     end,
			Reason:      req.Reason,
			IsPending:   true,
			FiledAt:     s.clock.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create leave application: %w", err)
		}

		days, err = s.LeaveApplicationDayRepository.CreateBatch(ctx, ExpandDays(created.ID, start, end, holidays, fraction))
		if err != nil {
			return fmt.Errorf("failed to create leave application days: %w", err)
		}

		if leaveType.IsApprovalNeeded {
			return nil
		}

		ids := make([]string, 0, len(days))
		for _, d := range days {
			ids = append(ids, d.ID)
		}
		if _, err := s.applyStatus(ctx, ids, leave.DayStatusApproved, req.EmployeeID); err != nil {
			return err
		}
		if created, err = s.LeaveApplicationRepository.GetByID(ctx, created.ID); err != nil {
			return fmt.Errorf("failed to reload leave application: %w", err)
		}
		days, err = s.LeaveApplicationDayRepository.ListByApplication(ctx, created.ID)
		return err
	})
	if err != nil {
		return leave.ApplicationResponse{}, err
	}

	slog.Info("Submitted leave application",
		"application_id", created.ID,
		"employee_id", created.EmployeeID,
		"leave_type", leaveType.Code,
		"days", len(days),
	)
	return leave.NewApplicationResponse(created, days), nil
}

func (s *ApplicationService) validateDates(leaveType leave.LeaveType, start, end time.Time) error {
	today := clock.Today(s.clock)

	if s.policy.IsSickLeave(leaveType.Code) {
		if start.After(today) || end.After(today) {
			return leave.ErrSickLeaveFutureDate
		}
	} else {
		if end.Before(today) {
			return leave.ErrPastDate
		}
		if !leaveType.IsFutureFilingAllowed && start.After(today) {
			return leave.ErrFutureFilingForbidden
		}
	}

	if end.Before(start) {
		return leave.ErrEndBeforeStart
	}

	if leaveType.NoticeDays > 0 && daysBetween(today, start) < leaveType.NoticeDays {
		return leave.ErrInsufficientNotice
	}
	return nil
}

// requiredCredit weights HOUR-unit days by the hours in a day. Filing is
// checked with the same quantity approval deducts, which is stricter than
// comparing the balance against a bare day count.
func (s *ApplicationService) requiredCredit(unit leave.TimeUnit, days int, fraction decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(days)).Mul(fraction).Mul(s.policy.UnitQuantity(unit))
}

func (s *ApplicationService) ApproveDays(ctx context.Context, req leave.ApproveDaysRequest) (leave.StatusUpdateResult, error) {
	if err := req.Validate(); err != nil {
		return leave.StatusUpdateResult{}, err
	}

	status, err := leave.ParseDayStatus(req.Status)
	if err != nil {
		return leave.StatusUpdateResult{}, err
	}
	if status != leave.DayStatusApproved && status != leave.DayStatusRejected {
		return leave.StatusUpdateResult{}, leave.ErrApproverStatusOnly
	}

	var result leave.StatusUpdateResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		result, err = s.applyStatus(ctx, req.DayIDs, status, req.ApproverID)
		return err
	})
	if err != nil {
		return leave.StatusUpdateResult{}, err
	}

	slog.Info("Reviewed leave application days",
		"approver_id", req.ApproverID,
		"status", status,
		"matched", result.Matched,
		"changed", result.Changed,
	)
	return result, nil
}

type balanceKey struct {
	employeeID  string
	leaveTypeID string
}

// applyStatus must run inside a transaction. For approvals it locks each
// affected balance, checks it covers the approved days, journals one USE entry
// per day and deducts the total.
func (s *ApplicationService) applyStatus(ctx context.Context, dayIDs []string, status leave.DayStatus, approverID string) (leave.StatusUpdateResult, error) {
	result, changed, err := s.calendar.UpdateDayStatus(ctx, dayIDs, status, &approverID)
	if err != nil {
		return leave.StatusUpdateResult{}, err
	}
	if status != leave.DayStatusApproved || len(changed) == 0 {
		return result, nil
	}

	var order []balanceKey
	required := make(map[balanceKey]decimal.Decimal)
	entries := make([]leave.JournalEntry, 0, len(changed))
	for _, dc := range changed {
		key := balanceKey{dc.EmployeeID, dc.LeaveTypeID}
		if _, ok := required[key]; !ok {
			order = append(order, key)
		}
		qty := s.policy.UnitQuantity(dc.TimeUnit).Mul(dc.Day.DayFraction)
		required[key] = required[key].Add(qty)

		appID := dc.Day.LeaveApplicationID
		entries = append(entries, leave.JournalEntry{
			EmployeeID:         dc.EmployeeID,
			LeaveTypeID:        dc.LeaveTypeID,
			LeaveApplicationID: &appID,
			TransactionType:    leave.TransactionUse,
			TimeUnit:           dc.TimeUnit,
			Quantity:           qty,
		})
	}

	for _, key := range order {
		balance, err := s.LeaveBalanceRepository.GetLatestForUpdate(ctx, key.employeeID, key.leaveTypeID)
		if err != nil {
			return leave.StatusUpdateResult{}, fmt.Errorf("failed to lock leave balance: %w", err)
		}
		if balance.RemainingCredit.LessThan(required[key]) {
			return leave.StatusUpdateResult{}, leave.ErrInsufficientBalance
		}
	}

	if _, err := s.journal.Record(ctx, entries); err != nil {
		return leave.StatusUpdateResult{}, err
	}
	for _, key := range order {
		if err := s.ledger.DeductOnApproval(ctx, key.employeeID, key.leaveTypeID, required[key]); err != nil {
			return leave.StatusUpdateResult{}, err
		}
	}
	return result, nil
}

// CancelDays withdraws the employee's own submitted days. Balances are untouched.
func (s *ApplicationService) CancelDays(ctx context.Context, req leave.CancelDaysRequest) (leave.StatusUpdateResult, error) {
	if err := req.Validate(); err != nil {
		return leave.StatusUpdateResult{}, err
	}

	var result leave.StatusUpdateResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		contexts, err := s.LeaveApplicationDayRepository.ListContexts(ctx, req.DayIDs)
		if err != nil {
			return fmt.Errorf("failed to load leave application days: %w", err)
		}
		for _, dc := range contexts {
			if dc.EmployeeID != req.EmployeeID {
				return leave.ErrNotDayOwner
			}
		}

		result, _, err = s.calendar.UpdateDayStatus(ctx, req.DayIDs, leave.DayStatusCancelled, nil)
		return err
	})
	if err != nil {
		return leave.StatusUpdateResult{}, err
	}

	slog.Info("Cancelled leave application days", "employee_id", req.EmployeeID, "changed", result.Changed)
	return result, nil
}

func (s *ApplicationService) GetApplication(ctx context.Context, id string) (leave.ApplicationResponse, error) {
	application, err := s.LeaveApplicationRepository.GetByID(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to get leave application: %w", err)
	}
	days, err := s.LeaveApplicationDayRepository.ListByApplication(ctx, id)
	if err != nil {
		return leave.ApplicationResponse{}, fmt.Errorf("failed to list leave application days: %w", err)
	}
	return leave.NewApplicationResponse(application, days), nil
}

func (s *ApplicationService) ListMyApplications(ctx context.Context, employeeID string) ([]leave.ApplicationResponse, error) {
	applications, err := s.LeaveApplicationRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}

	responses := make([]leave.ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		responses = append(responses, leave.NewApplicationResponse(a, nil))
	}
	return responses, nil
}

func (s *ApplicationService) ListDays(ctx context.Context, applicationID string) ([]leave.ApplicationDayResponse, error) {
	if _, err := s.LeaveApplicationRepository.GetByID(ctx, applicationID); err != nil {
		return nil, fmt.Errorf("failed to get leave application: %w", err)
	}
	days, err := s.LeaveApplicationDayRepository.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave application days: %w", err)
	}

	responses := make([]leave.ApplicationDayResponse, 0, len(days))
	for _, d := range days {
		responses = append(responses, leave.NewApplicationDayResponse(d))
	}
	return responses, nil
}

// totalDays counts calendar days in [start, end], weekends and holidays included.
func totalDays(start, end time.Time) int {
	return daysBetween(start, end) + 1
}

// daysBetween is the whole number of days from a to b, rounded up.
func daysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}
