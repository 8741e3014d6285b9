package leave

import "github.com/cmlabs-hris/leave-engine/internal/pkg/apperror"

var (
	// Lookup errors
	ErrLeaveTypeNotFound    = apperror.NotFound("leave type not found")
	ErrBalanceNotFound      = apperror.NotFound("leave balance not found")
	ErrApplicationNotFound  = apperror.NotFound("leave application not found")
	ErrDayNotFound          = apperror.NotFound("leave application day not found")
	ErrGrantRequestNotFound = apperror.NotFound("leave grant request not found")
	ErrUnknownStatus        = apperror.NotFound("unknown leave application status")

	// Filing rules
	ErrLeaveTypeInactive     = apperror.Validation("leave type is not active")
	ErrSickLeaveFutureDate   = apperror.Validation("sick leave cannot be filed for future dates")
	ErrPastDate              = apperror.Validation("leave cannot be filed for past dates")
	ErrFutureFilingForbidden = apperror.Validation("leave type cannot be filed in advance")
	ErrEndBeforeStart        = apperror.Validation("end date cannot be earlier than start date")
	ErrInsufficientNotice    = apperror.Validation("leave must be filed with the required notice period")
	ErrInsufficientBalance   = apperror.Validation("insufficient leave balance")
	ErrInvalidDayFraction    = apperror.Validation("day fraction must be 1 or 0.5")
	ErrOverlappingLeave      = apperror.Conflict("an overlapping leave application already exists")

	// State machine
	ErrDayAlreadyProcessed     = apperror.Conflict("leave application day already processed")
	ErrApproverStatusOnly      = apperror.Validation("status must be approved or rejected")
	ErrNotDayOwner             = apperror.Forbidden("leave application day belongs to another employee")
	ErrGrantRequestProcessed   = apperror.Conflict("leave grant request already processed")
	ErrBalanceAlreadyGranted   = apperror.Conflict("leave type already granted for this year")
	ErrNotSpecialLeaveType     = apperror.Validation("leave type is not a special leave type")
	ErrLeaveTypeCodeExists     = apperror.Conflict("leave type code already exists")
	ErrCompensatoryTypeMissing = apperror.NotFound("compensatory leave type is not configured")

	// Journal
	ErrAmbiguousProvenance = apperror.Validation("leave transaction must reference exactly one of leave application or attendance exception")
	ErrNonPositiveQuantity = apperror.Validation("leave transaction quantity must be positive")
)
