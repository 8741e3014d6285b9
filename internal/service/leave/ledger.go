package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"
	"github.com/shopspring/decimal"
)

// LedgerService is the only writer of employee leave balances.
type LedgerService struct {
	leave.LeaveBalanceRepository
	policy leave.Policy
}

func NewLedgerService(balanceRepository leave.LeaveBalanceRepository, policy leave.Policy) *LedgerService {
	return &LedgerService{
		LeaveBalanceRepository: balanceRepository,
		policy:                 policy,
	}
}

func (l *LedgerService) Grant(ctx context.Context, employeeID, leaveTypeID string, credit decimal.Decimal, year int) (leave.EmployeeLeaveBalance, error) {
	if credit.IsNegative() {
		return leave.EmployeeLeaveBalance{}, apperror.Validation("grant credit must not be negative")
	}

	balance, err := l.LeaveBalanceRepository.Create(ctx, leave.EmployeeLeaveBalance{
		EmployeeID:      employeeID,
		LeaveTypeID:     leaveTypeID,
		Year:            year,
		StartingCredit:  credit,
		Earned:          decimal.Zero,
		Used:            decimal.Zero,
		Deducted:        decimal.Zero,
		CarryIn:         decimal.Zero,
		RemainingCredit: credit,
	})
	if err != nil {
		return leave.EmployeeLeaveBalance{}, fmt.Errorf("failed to grant leave balance: %w", err)
	}

	slog.Info("Granted leave balance",
		"employee_id", employeeID,
		"leave_type_id", leaveTypeID,
		"year", year,
		"credit", credit.String(),
	)
	return balance, nil
}

func (l *LedgerService) CreditOvertime(ctx context.Context, employeeID, leaveTypeID string, hours decimal.Decimal) (decimal.Decimal, error) {
	if !hours.IsPositive() {
		return decimal.Zero, apperror.Validation("overtime hours must be positive")
	}
	credit := hours.Mul(l.policy.OvertimeMultiplier)

	balance, err := l.LeaveBalanceRepository.GetLatest(ctx, employeeID, leaveTypeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get leave balance: %w", err)
	}
	if _, err := l.LeaveBalanceRepository.AddEarned(ctx, balance.ID, credit); err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit overtime: %w", err)
	}

	slog.Info("Credited overtime", "employee_id", employeeID, "hours", hours.String(), "credit", credit.String())
	return credit, nil
}

func (l *LedgerService) DebitUndertime(ctx context.Context, employeeID, leaveTypeID string, hours decimal.Decimal) (decimal.Decimal, error) {
	if !hours.IsPositive() {
		return decimal.Zero, apperror.Validation("undertime hours must be positive")
	}

	balance, err := l.LeaveBalanceRepository.GetLatest(ctx, employeeID, leaveTypeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get leave balance: %w", err)
	}
	updated, err := l.LeaveBalanceRepository.AddDeducted(ctx, balance.ID, hours)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to debit undertime: %w", err)
	}

	if updated.RemainingCredit.IsNegative() {
		slog.Warn("Compensatory balance is negative", "employee_id", employeeID, "remaining", updated.RemainingCredit.String())
	}
	slog.Info("Debited undertime", "employee_id", employeeID, "hours", hours.String())
	return hours, nil
}

func (l *LedgerService) DeductOnApproval(ctx context.Context, employeeID, leaveTypeID string, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return apperror.Validation("deduction quantity must be positive")
	}

	balance, err := l.LeaveBalanceRepository.GetLatest(ctx, employeeID, leaveTypeID)
	if err != nil {
		return fmt.Errorf("failed to get leave balance: %w", err)
	}
	if _, err := l.LeaveBalanceRepository.AddUsed(ctx, balance.ID, quantity); err != nil {
		return fmt.Errorf("failed to deduct leave balance: %w", err)
	}

	slog.Info("Deducted approved leave", "employee_id", employeeID, "leave_type_id", leaveTypeID, "quantity", quantity.String())
	return nil
}

// AccrueMonthly adds the monthly rate to every accruing balance. Running it
// twice in a month accrues twice.
func (l *LedgerService) AccrueMonthly(ctx context.Context) (int64, error) {
	n, err := l.LeaveBalanceRepository.AccrueByTypeCodes(ctx, l.policy.AccrualCodes, l.policy.MonthlyAccrualRate)
	if err != nil {
		return 0, fmt.Errorf("failed to accrue monthly leave: %w", err)
	}
	slog.Info("Accrued monthly leave", "codes", l.policy.AccrualCodes, "rate", l.policy.MonthlyAccrualRate.String(), "rows", n)
	return n, nil
}

// CarryOverYearly rolls remaining credit into carry_in and resets the
// accumulators. It is not idempotent.
func (l *LedgerService) CarryOverYearly(ctx context.Context) (int64, error) {
	n, err := l.LeaveBalanceRepository.CarryOverByTypeCodes(ctx, l.policy.CarryOverCodes)
	if err != nil {
		return 0, fmt.Errorf("failed to carry over leave: %w", err)
	}
	slog.Info("Carried over yearly leave", "codes", l.policy.CarryOverCodes, "rows", n)
	return n, nil
}

func (l *LedgerService) TotalBalance(ctx context.Context, employeeID, leaveTypeID string) (decimal.Decimal, error) {
	balance, err := l.LeaveBalanceRepository.GetLatest(ctx, employeeID, leaveTypeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return balance.RemainingCredit, nil
}

func (l *LedgerService) Balances(ctx context.Context, employeeID string) ([]leave.BalanceResponse, error) {
	balances, err := l.LeaveBalanceRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		responses = append(responses, leave.NewBalanceResponse(b))
	}
	return responses, nil
}
