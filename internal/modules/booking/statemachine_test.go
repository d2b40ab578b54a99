package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/apperror"
)

func date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:            1,
		BookingNumber: "BK-20250301-0000ABCD",
		RoomID:        1,
		CheckInDate:   date("2025-03-10"),
		CheckOutDate:  date("2025-03-12"),
		Status:        domain.BookingConfirmed,
	}
}

func TestApply_TransitionTable(t *testing.T) {
	all := []domain.BookingStatus{
		domain.BookingPending, domain.BookingConfirmed, domain.BookingCheckedIn,
		domain.BookingCheckedOut, domain.BookingCancelled, domain.BookingNoShow,
	}
	legal := map[domain.BookingStatus][]domain.BookingStatus{
		domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
		domain.BookingConfirmed: {domain.BookingCheckedIn, domain.BookingCancelled, domain.BookingNoShow},
		domain.BookingCheckedIn: {domain.BookingCheckedOut},
	}
	// A context in which every precondition holds.
	tc := TransitionContext{
		Today:  date("2025-03-10"),
		Now:    date("2025-03-10").Add(15 * time.Hour),
		Reason: "guest request",
	}

	for _, from := range all {
		for _, to := range all {
			b := confirmedBooking()
			b.Status = from
			if to == domain.BookingConfirmed {
				tc.Today = date("2025-03-09")
			} else if to == domain.BookingNoShow {
				tc.Today = date("2025-03-11")
			} else {
				tc.Today = date("2025-03-10")
			}

			err := Apply(b, to, tc)
			if contains(legal[from], to) {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, b.Status)
				continue
			}
			assert.ErrorIs(t, err, apperror.ErrInvalidTransition, "%s -> %s", from, to)
			assert.Contains(t, err.Error(), string(from))
			assert.Contains(t, err.Error(), string(to))
			assert.Equal(t, from, b.Status)
		}
	}
}

func contains(list []domain.BookingStatus, s domain.BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestApply_CheckIn(t *testing.T) {
	now := date("2025-03-10").Add(14 * time.Hour)

	t.Run("too early", func(t *testing.T) {
		b := confirmedBooking()
		err := Apply(b, domain.BookingCheckedIn, TransitionContext{Today: date("2025-03-09"), Now: now})
		assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
		assert.Nil(t, b.ActualCheckInTime)
	})

	t.Run("room under maintenance", func(t *testing.T) {
		b := confirmedBooking()
		err := Apply(b, domain.BookingCheckedIn, TransitionContext{Today: date("2025-03-10"), Now: now, RoomStatus: domain.RoomMaintenance})
		assert.ErrorIs(t, err, apperror.ErrRoomUnavailable)
	})

	t.Run("room occupied by another booking", func(t *testing.T) {
		b := confirmedBooking()
		err := Apply(b, domain.BookingCheckedIn, TransitionContext{Today: date("2025-03-10"), Now: now, GuestInHouse: true})
		assert.ErrorIs(t, err, apperror.ErrRoomUnavailable)
		assert.Equal(t, domain.BookingConfirmed, b.Status)
	})

	t.Run("late arrival", func(t *testing.T) {
		b := confirmedBooking()
		require.NoError(t, Apply(b, domain.BookingCheckedIn, TransitionContext{Today: date("2025-03-11"), Now: now, RoomStatus: domain.RoomDirty}))
		require.NotNil(t, b.ActualCheckInTime)
		assert.True(t, b.ActualCheckInTime.Equal(now))
	})
}

func TestApply_Cancel(t *testing.T) {
	b := confirmedBooking()
	err := Apply(b, domain.BookingCancelled, TransitionContext{Reason: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Nil(t, b.CancelledAt)

	now := date("2025-03-05")
	require.NoError(t, Apply(b, domain.BookingCancelled, TransitionContext{Now: now, Reason: " plans changed "}))
	assert.Equal(t, "plans changed", b.CancellationReason)
	assert.Equal(t, &now, b.CancelledAt)
}

func TestApply_NoShowNeedsDayAfterArrival(t *testing.T) {
	b := confirmedBooking()
	assert.ErrorIs(t, Apply(b, domain.BookingNoShow, TransitionContext{Today: date("2025-03-10")}), apperror.ErrInvalidTransition)
	assert.NoError(t, Apply(b, domain.BookingNoShow, TransitionContext{Today: date("2025-03-11")}))
}

func TestApply_ConfirmRevalidates(t *testing.T) {
	b := confirmedBooking()
	b.Status = domain.BookingPending

	err := Apply(b, domain.BookingConfirmed, TransitionContext{Today: date("2025-03-01"), Overlaps: true})
	assert.ErrorIs(t, err, apperror.ErrRoomUnavailable)

	err = Apply(b, domain.BookingConfirmed, TransitionContext{Today: date("2025-03-11")})
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	assert.NoError(t, Apply(b, domain.BookingConfirmed, TransitionContext{Today: date("2025-03-10")}))
}

func TestPriceStay(t *testing.T) {
	tests := []struct {
		nights int
		price  float64
		want   float64
	}{
		{1, 100, 100},
		{2, 100, 200},
		{30, 100, 3000},
		{2, 123.45, 246.9},
		{30, 123.45, 3703.5},
		{3, 0, 0},
	}
	for _, tt := range tests {
		in := date("2025-03-01")
		nights, total := PriceStay(in, in.AddDate(0, 0, tt.nights), tt.price)
		assert.Equal(t, tt.nights, nights)
		assert.Equal(t, tt.want, total)
	}
}
