package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	GetByCode(ctx context.Context, code string) (LeaveType, error)
	List(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	// ListGrantable returns the active leave types whose basis is not SPECIAL.
	ListGrantable(ctx context.Context) ([]LeaveType, error)
	Update(ctx context.Context, id string, patch LeaveTypePatch) (LeaveType, error)
}

type LeaveBalanceRepository interface {
	Create(ctx context.Context, balance EmployeeLeaveBalance) (EmployeeLeaveBalance, error)
	// GetLatest returns the most recent year row for (employee, leave type).
	GetLatest(ctx context.Context, employeeID, leaveTypeID string) (EmployeeLeaveBalance, error)
	// GetLatestForUpdate is GetLatest holding a row lock until the surrounding
	// transaction ends.
	GetLatestForUpdate(ctx context.Context, employeeID, leaveTypeID string) (EmployeeLeaveBalance, error)
	Exists(ctx context.Context, employeeID, leaveTypeID string, year int) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]EmployeeLeaveBalance, error)

	// Atomic accumulator updates keyed by balance id.
	AddEarned(ctx context.Context, id string, amount decimal.Decimal) (EmployeeLeaveBalance, error)
	AddDeducted(ctx context.Context, id string, amount decimal.Decimal) (EmployeeLeaveBalance, error)
	AddUsed(ctx context.Context, id string, amount decimal.Decimal) (EmployeeLeaveBalance, error)

	// Batch updates over every row whose leave type code is listed.
	AccrueByTypeCodes(ctx context.Context, codes []string, amount decimal.Decimal) (int64, error)
	CarryOverByTypeCodes(ctx context.Context, codes []string) (int64, error)
}

type LeaveApplicationRepository interface {
	Create(ctx context.Context, application LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string) (LeaveApplication, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveApplication, error)
	// HasOverlappingLeave reports a submitted or approved day of the same
	// employee and type dated within [start, end]. Rejected and cancelled
	// days free their date.
	HasOverlappingLeave(ctx context.Context, employeeID, leaveTypeID string, start, end time.Time) (bool, error)
	SetPending(ctx context.Context, id string, pending bool) error
}

type LeaveApplicationDayRepository interface {
	CreateBatch(ctx context.Context, days []LeaveApplicationDay) ([]LeaveApplicationDay, error)
	ListByApplication(ctx context.Context, applicationID string) ([]LeaveApplicationDay, error)
	ListContexts(ctx context.Context, dayIDs []string) ([]DayContext, error)
	// UpdateStatus only moves days that are still submitted and reports how many moved.
	UpdateStatus(ctx context.Context, dayIDs []string, status DayStatus, approverID *string, approvedAt *time.Time) (int64, error)
	CountPending(ctx context.Context, applicationID string) (int, error)
}

type LeaveTransactionRepository interface {
	CreateBatch(ctx context.Context, entries []LeaveTransaction) error
	List(ctx context.Context, filter TransactionFilter) ([]LeaveTransaction, error)
}

// TransactionFilter bounds a journal listing. Zero fields are unbounded.
type TransactionFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// HolidayCalendar answers which dates are holidays.
type HolidayCalendar interface {
	HolidaysBetween(ctx context.Context, from, to time.Time) ([]time.Time, error)
}

type HolidayRepository interface {
	HolidayCalendar
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	List(ctx context.Context, year int) ([]Holiday, error)
}

type LeaveGrantRequestRepository interface {
	Create(ctx context.Context, request LeaveGrantRequest) (LeaveGrantRequest, error)
	GetByID(ctx context.Context, id string) (LeaveGrantRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (LeaveGrantRequest, error)
	List(ctx context.Context, status *DayStatus) ([]LeaveGrantRequest, error)
	UpdateStatus(ctx context.Context, id string, status DayStatus, reviewerID string, reviewedAt time.Time) error
}
