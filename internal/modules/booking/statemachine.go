package booking

import (
	"math"
	"strings"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/apperror"
	"hotelcore/internal/pkg/dates"
)

// TransitionContext carries everything a transition depends on besides the
// booking itself. The service gathers it inside the room's consistency
// boundary so Apply can stay free of I/O.
type TransitionContext struct {
	Today time.Time
	Now   time.Time

	// Reason is the cancellation reason.
	Reason string

	RoomStatus domain.RoomStatus
	// GuestInHouse is true when another booking is checked in on the room.
	GuestInHouse bool
	// Overlaps is true when confirming would collide with a blocking booking.
	Overlaps bool
}

// Apply moves b to the requested status or returns why it cannot. On error b
// is left untouched.
func Apply(b *domain.Booking, to domain.BookingStatus, tc TransitionContext) error {
	if !b.Status.CanTransitionTo(to) {
		return apperror.InvalidTransition(b.Status, to)
	}

	switch to {
	case domain.BookingConfirmed:
		if tc.Today.After(b.CheckInDate) {
			return apperror.New(apperror.KindInvalidTransition, CodeCheckInPassed,
				"booking %s can no longer be confirmed, check-in was %s", b.BookingNumber, dates.Format(b.CheckInDate))
		}
		if tc.Overlaps {
			return apperror.RoomUnavailable(CodeRoomUnavailable,
				"room is already booked between %s and %s", dates.Format(b.CheckInDate), dates.Format(b.CheckOutDate))
		}

	case domain.BookingCheckedIn:
		if tc.Today.Before(b.CheckInDate) {
			return apperror.New(apperror.KindInvalidTransition, CodeTooEarly,
				"check-in for %s opens on %s", b.BookingNumber, dates.Format(b.CheckInDate))
		}
		if tc.RoomStatus == domain.RoomMaintenance || tc.RoomStatus == domain.RoomOutOfOrder {
			return apperror.RoomUnavailable(CodeRoomOutOfService, "room is %s", tc.RoomStatus)
		}
		if tc.GuestInHouse {
			return apperror.RoomUnavailable(CodeRoomOccupied, "room is occupied by another booking")
		}
		now := tc.Now
		b.ActualCheckInTime = &now

	case domain.BookingCheckedOut:
		now := tc.Now
		b.ActualCheckOutTime = &now

	case domain.BookingCancelled:
		reason := strings.TrimSpace(tc.Reason)
		if reason == "" {
			return apperror.Validation(CodeReasonRequired, "cancellation reason is required")
		}
		now := tc.Now
		b.CancellationReason = reason
		b.CancelledAt = &now

	case domain.BookingNoShow:
		if !tc.Today.After(b.CheckInDate) {
			return apperror.New(apperror.KindInvalidTransition, CodeTooEarly,
				"booking %s can be marked no-show after %s", b.BookingNumber, dates.Format(b.CheckInDate))
		}
	}

	b.Status = to
	return nil
}

// PriceStay derives nights and the total for a stay. The total is rounded to
// cents and never recomputed after creation.
func PriceStay(checkIn, checkOut time.Time, pricePerNight float64) (int, float64) {
	nights := dates.Nights(checkIn, checkOut)
	total := math.Round(float64(nights)*pricePerNight*100) / 100
	return nights, total
}
