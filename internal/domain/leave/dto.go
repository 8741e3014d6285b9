package leave

import (
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Leave types

type CreateLeaveTypeRequest struct {
	Code                  string          `json:"code"`
	Name                  string          `json:"name"`
	GrantBasis            GrantBasis      `json:"grant_basis"`
	TimeUnit              TimeUnit        `json:"time_unit"`
	Credit                decimal.Decimal `json:"credit"`
	NoticeDays            int             `json:"notice_days"`
	IsFutureFilingAllowed bool            `json:"is_future_filing_allowed"`
	IsApprovalNeeded      bool            `json:"is_approval_needed"`
	IsCarriedOver         bool            `json:"is_carried_over"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLeaveTypeCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be 1-10 uppercase letters, digits or underscores",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	if !r.GrantBasis.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "grant_basis",
			Message: "grant_basis must be one of SPECIAL, MONTHLY, ANNUAL, OVERTIME_CREDIT",
		})
	}
	if !r.TimeUnit.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "time_unit",
			Message: "time_unit must be DAY or HOUR",
		})
	}
	if !validator.IsNonNegative(r.Credit) {
		errs = append(errs, validator.ValidationError{
			Field:   "credit",
			Message: "credit must not be negative",
		})
	}
	if r.NoticeDays < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notice_days",
			Message: "notice_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateLeaveTypeRequest carries only the mutable fields. Code, grant basis
// and time unit cannot be changed.
type UpdateLeaveTypeRequest struct {
	ID                    string           `json:"-"`
	Name                  *string          `json:"name,omitempty"`
	Credit                *decimal.Decimal `json:"credit,omitempty"`
	NoticeDays            *int             `json:"notice_days,omitempty"`
	IsFutureFilingAllowed *bool            `json:"is_future_filing_allowed,omitempty"`
	IsApprovalNeeded      *bool            `json:"is_approval_needed,omitempty"`
	IsCarriedOver         *bool            `json:"is_carried_over,omitempty"`
	IsActive              *bool            `json:"is_active,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 255 characters",
			})
		}
	}
	if r.Credit != nil && !validator.IsNonNegative(*r.Credit) {
		errs = append(errs, validator.ValidationError{
			Field:   "credit",
			Message: "credit must not be negative",
		})
	}
	if r.NoticeDays != nil && *r.NoticeDays < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notice_days",
			Message: "notice_days must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *UpdateLeaveTypeRequest) ToPatch() LeaveTypePatch {
	return LeaveTypePatch{
		Name:                  r.Name,
		Credit:                r.Credit,
		NoticeDays:            r.NoticeDays,
		IsFutureFilingAllowed: r.IsFutureFilingAllowed,
		IsApprovalNeeded:      r.IsApprovalNeeded,
		IsCarriedOver:         r.IsCarriedOver,
		IsActive:              r.IsActive,
	}
}

type LeaveTypeResponse struct {
	ID                    string          `json:"id"`
	Code                  string          `json:"code"`
	Name                  string          `json:"name"`
	GrantBasis            GrantBasis      `json:"grant_basis"`
	TimeUnit              TimeUnit        `json:"time_unit"`
	Credit                decimal.Decimal `json:"credit"`
	NoticeDays            int             `json:"notice_days"`
	IsFutureFilingAllowed bool            `json:"is_future_filing_allowed"`
	IsApprovalNeeded      bool            `json:"is_approval_needed"`
	IsCarriedOver         bool            `json:"is_carried_over"`
	IsActive              bool            `json:"is_active"`
}

func NewLeaveTypeResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                    lt.ID,
		Code:                  lt.Code,
		Name:                  lt.Name,
		GrantBasis:            lt.GrantBasis,
		TimeUnit:              lt.TimeUnit,
		Credit:                lt.Credit,
		NoticeDays:            lt.NoticeDays,
		IsFutureFilingAllowed: lt.IsFutureFilingAllowed,
		IsApprovalNeeded:      lt.IsApprovalNeeded,
		IsCarriedOver:         lt.IsCarriedOver,
		IsActive:              lt.IsActive,
	}
}

// Balances

type BalanceResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	LeaveTypeID     string          `json:"leave_type_id"`
	LeaveTypeCode   *string         `json:"leave_type_code,omitempty"`
	LeaveTypeName   *string         `json:"leave_type_name,omitempty"`
	Year            int             `json:"year"`
	StartingCredit  decimal.Decimal `json:"starting_credit"`
	Earned          decimal.Decimal `json:"earned"`
	Used            decimal.Decimal `json:"used"`
	Deducted        decimal.Decimal `json:"deducted"`
	CarryIn         decimal.Decimal `json:"carry_in"`
	RemainingCredit decimal.Decimal `json:"remaining_credit"`
}

func NewBalanceResponse(b EmployeeLeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:              b.ID,
		EmployeeID:      b.EmployeeID,
		LeaveTypeID:     b.LeaveTypeID,
		LeaveTypeCode:   b.LeaveTypeCode,
		LeaveTypeName:   b.LeaveTypeName,
		Year:            b.Year,
		StartingCredit:  b.StartingCredit,
		Earned:          b.Earned,
		Used:            b.Used,
		Deducted:        b.Deducted,
		CarryIn:         b.CarryIn,
		RemainingCredit: b.RemainingCredit,
	}
}

// Applications

type SubmitApplicationRequest struct {
	EmployeeID  string           `json:"-"`
	LeaveTypeID string           `json:"leave_type_id"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Reason      string           `json:"reason"`
	DayFraction *decimal.Decimal `json:"day_fraction,omitempty"`
}

// Validate checks the request shape and returns the parsed start and end dates.
func (r *SubmitApplicationRequest) Validate() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors
	var start, end time.Time

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	if d, ok := validator.IsValidDate(r.StartDate); ok {
		start = d
	} else {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	if d, ok := validator.IsValidDate(r.EndDate); ok {
		end = d
	} else {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

// Fraction returns the requested day fraction, defaulting to a whole day.
func (r *SubmitApplicationRequest) Fraction() (decimal.Decimal, error) {
	if r.DayFraction == nil {
		return DayFractionWhole, nil
	}
	if r.DayFraction.Equal(DayFractionWhole) || r.DayFraction.Equal(DayFractionHalf) {
		return *r.DayFraction, nil
	}
	return decimal.Zero, ErrInvalidDayFraction
}

type ApproveDaysRequest struct {
	DayIDs     []string `json:"day_ids"`
	Status     string   `json:"status"`
	ApproverID string   `json:"-"`
}

func (r *ApproveDaysRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.DayIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "day_ids",
			Message: "day_ids must contain at least one id",
		})
	}
	for _, id := range r.DayIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "day_ids",
				Message: "day_ids must not contain empty ids",
			})
			break
		}
	}
	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "approver_id",
			Message: "approver_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CancelDaysRequest struct {
	EmployeeID string   `json:"-"`
	DayIDs     []string `json:"day_ids"`
}

func (r *CancelDaysRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if len(r.DayIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "day_ids",
			Message: "day_ids must contain at least one id",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StatusUpdateResult counts the days addressed and the days whose status actually moved.
type StatusUpdateResult struct {
	Matched int `json:"matched"`
	Changed int `json:"changed"`
}

type ApplicationDayResponse struct {
	ID                 string          `json:"id"`
	LeaveApplicationID string          `json:"leave_application_id"`
	Date               string          `json:"date"`
	Status             DayStatus       `json:"status"`
	DayFraction        decimal.Decimal `json:"day_fraction"`
	IsWorkday          bool            `json:"is_workday"`
	IsHoliday          bool            `json:"is_holiday"`
	ApproverEmployeeID *string         `json:"approver_employee_id"`
	ApprovedAt         *time.Time      `json:"approved_at"`
}

func NewApplicationDayResponse(d LeaveApplicationDay) ApplicationDayResponse {
	return ApplicationDayResponse{
		ID:                 d.ID,
		LeaveApplicationID: d.LeaveApplicationID,
		Date:               d.Date.Format(validator.DateLayout),
		Status:             d.Status,
		DayFraction:        d.DayFraction,
		IsWorkday:          d.IsWorkday,
		IsHoliday:          d.IsHoliday,
		ApproverEmployeeID: d.ApproverEmployeeID,
		ApprovedAt:         d.ApprovedAt,
	}
}

type ApplicationResponse struct {
	ID            string                   `json:"id"`
	EmployeeID    string                   `json:"employee_id"`
	LeaveTypeID   string                   `json:"leave_type_id"`
	LeaveTypeName *string                  `json:"leave_type_name,omitempty"`
	StartDate     string                   `json:"start_date"`
	EndDate       string                   `json:"end_date"`
	Reason        string                   `json:"reason"`
	IsPending     bool                     `json:"is_pending"`
	FiledAt       time.Time                `json:"filed_at"`
	Days          []ApplicationDayResponse `json:"days,omitempty"`
}

func NewApplicationResponse(a LeaveApplication, days []LeaveApplicationDay) ApplicationResponse {
	resp := ApplicationResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		LeaveTypeID:   a.LeaveTypeID,
		LeaveTypeName: a.LeaveTypeName,
		StartDate:     a.StartDate.Format(validator.DateLayout),
		EndDate:       a.EndDate.Format(validator.DateLayout),
		Reason:        a.Reason,
		IsPending:     a.IsPending,
		FiledAt:       a.FiledAt,
	}
	for _, d := range days {
		resp.Days = append(resp.Days, NewApplicationDayResponse(d))
	}
	return resp
}

// Grant requests

type FileGrantRequestRequest struct {
	EmployeeID  string `json:"-"`
	LeaveTypeID string `json:"leave_type_id"`
}

func (r *FileGrantRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReviewGrantRequestRequest struct {
	ID         string `json:"-"`
	Status     string `json:"status"`
	ReviewerID string `json:"-"`
}

func (r *ReviewGrantRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is required",
		})
	}
	if validator.IsEmpty(r.ReviewerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "reviewer_id",
			Message: "reviewer_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GrantRequestResponse struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	LeaveTypeID string     `json:"leave_type_id"`
	Status      DayStatus  `json:"status"`
	ReviewerID  *string    `json:"reviewer_id"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewGrantRequestResponse(g LeaveGrantRequest) GrantRequestResponse {
	return GrantRequestResponse{
		ID:          g.ID,
		EmployeeID:  g.EmployeeID,
		LeaveTypeID: g.LeaveTypeID,
		Status:      g.Status,
		ReviewerID:  g.ReviewerID,
		ReviewedAt:  g.ReviewedAt,
		CreatedAt:   g.CreatedAt,
	}
}

// Journal

// JournalEntry is a journal line before it is stamped with batch id and date.
type JournalEntry struct {
	EmployeeID            string
	LeaveTypeID           string
	LeaveApplicationID    *string
	AttendanceExceptionID *string
	TransactionType       TransactionType
	TimeUnit              TimeUnit
	Quantity              decimal.Decimal
}

type JournalFilter struct {
	EmployeeID string
	From       string
	To         string
}

// Validate parses the optional window into a repository filter.
func (f *JournalFilter) Validate() (TransactionFilter, error) {
	var errs validator.ValidationErrors
	out := TransactionFilter{EmployeeID: f.EmployeeID}

	if f.From != "" {
		d, ok := validator.IsValidDate(f.From)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
		out.From = d
	}
	if f.To != "" {
		d, ok := validator.IsValidDate(f.To)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
		out.To = d
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.To.Before(out.From) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be earlier than from"})
	}

	if len(errs) > 0 {
		return TransactionFilter{}, errs
	}
	return out, nil
}

type TransactionResponse struct {
	ID                    string          `json:"id"`
	BatchID               string          `json:"batch_id"`
	EmployeeID            string          `json:"employee_id"`
	LeaveTypeID           string          `json:"leave_type_id"`
	LeaveApplicationID    *string         `json:"leave_application_id"`
	AttendanceExceptionID *string         `json:"attendance_exception_id"`
	TransactionType       TransactionType `json:"transaction_type"`
	TimeUnit              TimeUnit        `json:"time_unit"`
	Quantity              decimal.Decimal `json:"quantity"`
	Date                  time.Time       `json:"date"`
}

func NewTransactionResponse(t LeaveTransaction) TransactionResponse {
	return TransactionResponse{
		ID:                    t.ID,
		BatchID:               t.BatchID,
		EmployeeID:            t.EmployeeID,
		LeaveTypeID:           t.LeaveTypeID,
		LeaveApplicationID:    t.LeaveApplicationID,
		AttendanceExceptionID: t.AttendanceExceptionID,
		TransactionType:       t.TransactionType,
		TimeUnit:              t.TimeUnit,
		Quantity:              t.Quantity,
		Date:                  t.Date,
	}
}

// Jobs

type JobResult struct {
	Job          string `json:"job"`
	RowsAffected int64  `json:"rows_affected"`
}

// Holidays

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

func (r *CreateHolidayRequest) Validate() (time.Time, error) {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if len(errs) > 0 {
		return time.Time{}, errs
	}
	return date, nil
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{ID: h.ID, Date: h.Date.Format(validator.DateLayout), Name: h.Name}
}
