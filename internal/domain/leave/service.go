package leave

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
)

// LedgerService owns every mutation of EmployeeLeaveBalance.
type LedgerService interface {
	Grant(ctx context.Context, employeeID, leaveTypeID string, credit decimal.Decimal, year int) (EmployeeLeaveBalance, error)
	// CreditOvertime books hours times the overtime multiplier and returns the credited amount.
	CreditOvertime(ctx context.Context, employeeID, leaveTypeID string, hours decimal.Decimal) (decimal.Decimal, error)
	// DebitUndertime books raw hours. The balance may go negative.
	DebitUndertime(ctx context.Context, employeeID, leaveTypeID string, hours decimal.Decimal) (decimal.Decimal, error)
	DeductOnApproval(ctx context.Context, employeeID, leaveTypeID string, quantity decimal.Decimal) error
	AccrueMonthly(ctx context.Context) (int64, error)
	CarryOverYearly(ctx context.Context) (int64, error)
	TotalBalance(ctx context.Context, employeeID, leaveTypeID string) (decimal.Decimal, error)
	Balances(ctx context.Context, employeeID string) ([]BalanceResponse, error)
}

// JournalService appends to and reads the leave transaction journal.
type JournalService interface {
	Record(ctx context.Context, entries []JournalEntry) ([]LeaveTransaction, error)
	List(ctx context.Context, filter JournalFilter) ([]TransactionResponse, error)
	Export(ctx context.Context, filter JournalFilter, w io.Writer) error
}

type ApplicationService interface {
	Submit(ctx context.Context, req SubmitApplicationRequest) (ApplicationResponse, error)
	ApproveDays(ctx context.Context, req ApproveDaysRequest) (StatusUpdateResult, error)
	CancelDays(ctx context.Context, req CancelDaysRequest) (StatusUpdateResult, error)
	GetApplication(ctx context.Context, id string) (ApplicationResponse, error)
	ListMyApplications(ctx context.Context, employeeID string) ([]ApplicationResponse, error)
	ListDays(ctx context.Context, applicationID string) ([]ApplicationDayResponse, error)
}

type GrantService interface {
	GrantRegularLeaveTypes(ctx context.Context, employeeID string) ([]BalanceResponse, error)
	GrantSpecialLeaveType(ctx context.Context, employeeID, leaveTypeID string) ([]BalanceResponse, error)
	FileGrantRequest(ctx context.Context, req FileGrantRequestRequest) (GrantRequestResponse, error)
	ReviewGrantRequest(ctx context.Context, req ReviewGrantRequestRequest) (GrantRequestResponse, error)
	ListGrantRequests(ctx context.Context, status string) ([]GrantRequestResponse, error)
}

type LeaveTypeService interface {
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	UpdateLeaveType(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	DeactivateLeaveType(ctx context.Context, id string) error
	GetLeaveType(ctx context.Context, id string) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context, activeOnly bool) ([]LeaveTypeResponse, error)
}

type HolidayService interface {
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
}
