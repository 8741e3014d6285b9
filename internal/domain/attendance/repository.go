package attendance

import (
	"context"
	"time"
)

// AttendanceLogRepository persists attendance logs.
type AttendanceLogRepository interface {
	Create(ctx context.Context, log AttendanceLog) (AttendanceLog, error)

	// GetOpenByEmployee returns the log with no time-out, or ErrNoOpenLog.
	GetOpenByEmployee(ctx context.Context, employeeID string) (AttendanceLog, error)

	// SetTimeOut closes an open log. Returns ErrNoOpenLog if the log is already closed.
	SetTimeOut(ctx context.Context, id string, timeOut time.Time) error

	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]AttendanceLog, error)
}

// AttendanceExceptionRepository persists overtime/undertime records.
type AttendanceExceptionRepository interface {
	Create(ctx context.Context, exception AttendanceException) (AttendanceException, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]AttendanceException, error)
}
