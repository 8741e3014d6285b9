package attendance

import "github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAlreadyTimedIn      = apperror.Conflict("an open attendance log already exists for this employee")
	ErrNoOpenLog           = apperror.NotFound("no active time-in record found")
	ErrTimeOutBeforeTimeIn = apperror.Validation("time-out cannot be earlier than time-in")
	ErrLogNotFound         = apperror.NotFound("attendance log not found")
)
