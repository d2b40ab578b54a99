package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hotelcore/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (r *BookingRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("booking_number = ?", number).
		Count(&cnt).Error
	return cnt > 0, err
}

// CountOverlapping counts blocking bookings on roomID whose stay shares a
// night with [checkIn, checkOut). Check-out is exclusive.
func (r *BookingRepository) CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID *int64) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", domain.BlockingStatuses).
		Where("check_in_date < ? AND ? < check_out_date", checkOut, checkIn)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

// BusyRanges lists the blocking bookings on roomID that intersect [from, to).
func (r *BookingRepository) BusyRanges(ctx context.Context, roomID int64, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Where("status IN ?", domain.BlockingStatuses).
		Where("check_in_date < ? AND ? < check_out_date", to, from).
		Order("check_in_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HasGuestInHouse reports whether a booking other than excludeID is checked
// in on the room.
func (r *BookingRepository) HasGuestInHouse(ctx context.Context, roomID, excludeID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("room_id = ? AND status = ? AND id <> ?", roomID, domain.BookingCheckedIn, excludeID).
		Count(&cnt).Error
	return cnt > 0, err
}

// SaveTransition persists the lifecycle fields of b, provided the stored
// status is still from. ErrStaleWrite means someone else moved the booking.
func (r *BookingRepository) SaveTransition(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", b.ID, from).
		Updates(map[string]any{
			"status":                b.Status,
			"cancellation_reason":   b.CancellationReason,
			"cancelled_at":          b.CancelledAt,
			"actual_check_in_time":  b.ActualCheckInTime,
			"actual_check_out_time": b.ActualCheckOutTime,
			"updated_at":            now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	b.UpdatedAt = now
	return nil
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{"payment_status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "booking", id)
	}
	return nil
}

// SetFeedback stores guest feedback on a checked-out booking.
func (r *BookingRepository) SetFeedback(ctx context.Context, id int64, rating int, comment string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingCheckedOut).
		Updates(map[string]any{
			"feedback_rating":  rating,
			"feedback_comment": comment,
			"feedback_at":      at,
			"updated_at":       at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

// Delete removes a booking that is in a terminal state.
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status IN ?", id, []domain.BookingStatus{
			domain.BookingCheckedOut, domain.BookingCancelled, domain.BookingNoShow,
		}).
		Delete(&domain.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}
