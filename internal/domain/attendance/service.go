package attendance

import (
	"context"
)

// AttendanceService converts time-in/time-out pairs into worked hours and
// overtime/undertime accounting.
type AttendanceService interface {
	// RecordTimeIn opens a new log for the employee
	RecordTimeIn(ctx context.Context, req TimeInRequest) (AttendanceLogResponse, error)

	// RecordTimeOut closes the open log and books any overtime or undertime
	RecordTimeOut(ctx context.Context, req TimeOutRequest) (TimeOutResponse, error)

	ListMyLogs(ctx context.Context, filter MyLogsFilter) ([]AttendanceLogResponse, error)
	ListExceptions(ctx context.Context, employeeID string) ([]AttendanceExceptionResponse, error)
}
