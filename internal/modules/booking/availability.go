package booking

import (
	"context"
	"time"
)

// Checker answers whether a stay collides with a blocking booking. Build it
// over the transaction's repository when the answer guards a write.
type Checker struct {
	store OverlapStore
}

func NewChecker(store OverlapStore) *Checker {
	return &Checker{store: store}
}

// HasOverlap reports whether a confirmed or checked-in booking on roomID
// other than excludeID shares a night with [checkIn, checkOut).
func (c *Checker) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID *int64) (bool, error) {
	n, err := c.store.CountOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Checker) BusyRanges(ctx context.Context, roomID int64, from, to time.Time) ([]BusyRange, error) {
	rows, err := c.store.BusyRanges(ctx, roomID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]BusyRange, 0, len(rows))
	for _, b := range rows {
		out = append(out, BusyRange{
			BookingID:     b.ID,
			BookingNumber: b.BookingNumber,
			CheckInDate:   b.CheckInDate,
			CheckOutDate:  b.CheckOutDate,
			Status:        string(b.Status),
		})
	}
	return out, nil
}
