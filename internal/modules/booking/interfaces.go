package booking

import (
	"context"
	"time"

	"hotelcore/internal/domain"
)

// UserDirectory resolves guests for validation and display.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// OverlapStore is the storage the availability checker reads from.
type OverlapStore interface {
	CountOverlapping(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID *int64) (int64, error)
	BusyRanges(ctx context.Context, roomID int64, from, to time.Time) ([]domain.Booking, error)
}
