package booking

import "hotelcore/internal/pkg/apperror"

var (
	ErrValidation        = apperror.ErrValidation
	ErrRoomUnavailable   = apperror.ErrRoomUnavailable
	ErrInvalidTransition = apperror.ErrInvalidTransition
	ErrNotFound          = apperror.ErrNotFound
	ErrUnavailable       = apperror.ErrUnavailable

	// ErrCapacityExceeded matches validation errors caused by too many guests.
	ErrCapacityExceeded = &apperror.Error{Kind: apperror.KindValidation, Code: CodeCapacityExceeded, Reason: "capacity exceeded"}
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidDateRange   = "INVALID_DATE_RANGE"
	CodeCapacityExceeded   = "CAPACITY_EXCEEDED"
	CodeGuestInactive      = "GUEST_INACTIVE"
	CodeReasonRequired     = "REASON_REQUIRED"
	CodeRoomUnavailable    = "ROOM_UNAVAILABLE"
	CodeRoomNotReady       = "ROOM_NOT_AVAILABLE"
	CodeRoomOccupied       = "ROOM_OCCUPIED"
	CodeRoomOutOfService   = "ROOM_OUT_OF_SERVICE"
	CodeTooEarly           = "TOO_EARLY"
	CodeCheckInPassed      = "CHECK_IN_DATE_PASSED"
	CodeFeedbackNotAllowed = "FEEDBACK_NOT_ALLOWED"
	CodeDeleteNotAllowed   = "DELETE_NOT_ALLOWED"
)
