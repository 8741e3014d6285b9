package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttendanceLog is one time-in/time-out pair. TimeOut is nil while the log is open.
type AttendanceLog struct {
	ID         string
	EmployeeID string
	Date       time.Time
	TimeIn     time.Time
	TimeOut    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (l AttendanceLog) IsOpen() bool {
	return l.TimeOut == nil
}

// AttendanceException records the overtime or undertime of a closed log.
type AttendanceException struct {
	ID              string
	AttendanceLogID string
	Hours           decimal.Decimal
	IsOvertime      bool
	ValidUntil      *time.Time
	CreatedAt       time.Time

	// Relationships (for responses)
	EmployeeID *string
	LogDate    *time.Time
}
