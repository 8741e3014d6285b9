package leave

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GrantBasis classifies how a leave type's credit is awarded.
type GrantBasis string

const (
	GrantBasisSpecial        GrantBasis = "SPECIAL"
	GrantBasisMonthly        GrantBasis = "MONTHLY"
	GrantBasisAnnual         GrantBasis = "ANNUAL"
	GrantBasisOvertimeCredit GrantBasis = "OVERTIME_CREDIT"
)

func (b GrantBasis) IsValid() bool {
	switch b {
	case GrantBasisSpecial, GrantBasisMonthly, GrantBasisAnnual, GrantBasisOvertimeCredit:
		return true
	}
	return false
}

// TimeUnit is the unit a leave type's credit is counted in.
type TimeUnit string

const (
	TimeUnitDay  TimeUnit = "DAY"
	TimeUnitHour TimeUnit = "HOUR"
)

func (u TimeUnit) IsValid() bool {
	return u == TimeUnitDay || u == TimeUnitHour
}

// DayStatus is the per-day state of a leave application. Grant requests reuse it.
type DayStatus string

const (
	DayStatusSubmitted DayStatus = "submitted"
	DayStatusApproved  DayStatus = "approved"
	DayStatusRejected  DayStatus = "rejected"
	DayStatusCancelled DayStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s DayStatus) IsTerminal() bool {
	return s == DayStatusApproved || s == DayStatusRejected || s == DayStatusCancelled
}

// ParseDayStatus looks a status up by name, case-insensitively.
func ParseDayStatus(name string) (DayStatus, error) {
	switch s := DayStatus(strings.ToLower(strings.TrimSpace(name))); s {
	case DayStatusSubmitted, DayStatusApproved, DayStatusRejected, DayStatusCancelled:
		return s, nil
	}
	return "", ErrUnknownStatus
}

// TransactionType is the kind of balance-affecting event in the journal.
type TransactionType string

const (
	TransactionEarn   TransactionType = "EARN"
	TransactionUse    TransactionType = "USE"
	TransactionDeduct TransactionType = "DEDUCT"
)

var (
	// DayFractionWhole is a full day of leave.
	DayFractionWhole = decimal.NewFromInt(1)
	// DayFractionHalf is a half day of leave.
	DayFractionHalf = decimal.NewFromFloat(0.5)
)

// LeaveType entity
type LeaveType struct {
	ID         string
	Code       string
	Name       string
	GrantBasis GrantBasis
	TimeUnit   TimeUnit
	Credit     decimal.Decimal

	// Filing Rules
	NoticeDays            int
	IsFutureFilingAllowed bool
	IsApprovalNeeded      bool
	IsCarriedOver         bool
	IsActive              bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmployeeLeaveBalance is the per employee, per leave type, per year ledger row.
type EmployeeLeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	StartingCredit  decimal.Decimal
	Earned          decimal.Decimal
	Used            decimal.Decimal
	Deducted        decimal.Decimal
	CarryIn         decimal.Decimal
	RemainingCredit decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	LeaveTypeCode *string
	LeaveTypeName *string
}

// LeaveApplication entity
type LeaveApplication struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	Reason      string
	IsPending   bool
	FiledAt     time.Time

	// Relationships (for responses)
	LeaveTypeName *string
}

// LeaveApplicationDay is one calendar date of a leave application.
type LeaveApplicationDay struct {
	ID                 string
	LeaveApplicationID string
	Status             DayStatus
	ApproverEmployeeID *string
	DayFraction        decimal.Decimal
	IsWorkday          bool
	IsHoliday          bool
	Date               time.Time
	ApprovedAt         *time.Time
}

// DayContext joins a day with the application and leave type it belongs to.
type DayContext struct {
	Day         LeaveApplicationDay
	EmployeeID  string
	LeaveTypeID string
	TimeUnit    TimeUnit
}

// LeaveTransaction is an immutable journal entry. Exactly one of
// LeaveApplicationID and AttendanceExceptionID is set.
type LeaveTransaction struct {
	ID                    string
	BatchID               string
	EmployeeID            string
	LeaveTypeID           string
	LeaveApplicationID    *string
	AttendanceExceptionID *string
	TransactionType       TransactionType
	TimeUnit              TimeUnit
	Quantity              decimal.Decimal
	Date                  time.Time
	CreatedAt             time.Time
}

// Holiday is external reference data used to flag application days.
type Holiday struct {
	ID   string
	Date time.Time
	Name string
}

// LeaveGrantRequest asks an administrator for a SPECIAL leave type.
type LeaveGrantRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Status      DayStatus
	ReviewerID  *string
	ReviewedAt  *time.Time
	CreatedAt   time.Time
}
