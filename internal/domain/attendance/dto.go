package attendance

import (
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// TimeInRequest stamps the log with the server clock. Clients cannot supply a time.
type TimeInRequest struct {
	EmployeeID string
}

func (r *TimeInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TimeOutRequest struct {
	EmployeeID string
}

func (r *TimeOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MyLogsFilter struct {
	EmployeeID string
	From       string
	To         string
}

// Validate checks the window and returns the parsed bounds.
func (f *MyLogsFilter) Validate() (time.Time, time.Time, error) {
	var errs validator.ValidationErrors
	var from, to time.Time

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	if f.From != "" {
		d, ok := validator.IsValidDate(f.From)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
		from = d
	}
	if f.To != "" {
		d, ok := validator.IsValidDate(f.To)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
		to = d
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be earlier than from"})
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

type AttendanceLogResponse struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Date       string     `json:"date"`
	TimeIn     time.Time  `json:"time_in"`
	TimeOut    *time.Time `json:"time_out"`
}

type AttendanceExceptionResponse struct {
	ID              string          `json:"id"`
	AttendanceLogID string          `json:"attendance_log_id"`
	Hours           decimal.Decimal `json:"hours"`
	IsOvertime      bool            `json:"is_overtime"`
	ValidUntil      *string         `json:"valid_until"`
	LogDate         *string         `json:"log_date,omitempty"`
}

type TimeOutResponse struct {
	Log         AttendanceLogResponse        `json:"log"`
	WorkedHours decimal.Decimal              `json:"worked_hours"`
	Exception   *AttendanceExceptionResponse `json:"exception"`
	// CreditDelta is the signed change applied to compensatory leave.
	CreditDelta decimal.Decimal `json:"credit_delta"`
	Message     string          `json:"message"`
}

func NewLogResponse(l AttendanceLog) AttendanceLogResponse {
	return AttendanceLogResponse{
		ID:         l.ID,
		EmployeeID: l.EmployeeID,
		Date:       l.Date.Format(validator.DateLayout),
		TimeIn:     l.TimeIn,
		TimeOut:    l.TimeOut,
	}
}

func NewExceptionResponse(e AttendanceException) AttendanceExceptionResponse {
	resp := AttendanceExceptionResponse{
		ID:              e.ID,
		AttendanceLogID: e.AttendanceLogID,
		Hours:           e.Hours,
		IsOvertime:      e.IsOvertime,
	}
	if e.ValidUntil != nil {
		s := e.ValidUntil.Format(validator.DateLayout)
		resp.ValidUntil = &s
	}
	if e.LogDate != nil {
		s := e.LogDate.Format(validator.DateLayout)
		resp.LogDate = &s
	}
	return resp
}
