// Package dates holds the date-only arithmetic used for stays. A stay date is a
// calendar day stored as midnight UTC, whatever the hotel's time zone is.
package dates

import (
	"fmt"
	"math"
	"time"

	"hotelcore/internal/domain"
)

const day = 24 * time.Hour

// Clock is the source of "now" for everything that depends on today.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Tests use it to pin "today".
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// Parse reads a YYYY-MM-DD date into a stay date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Normalize(t), nil
}

// Normalize drops the clock part of t, keeping its calendar day.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the current calendar day at the hotel.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Normalize(now.In(loc))
}

// Nights is ceil((checkOut - checkIn) / 1 day).
func Nights(checkIn, checkOut time.Time) int {
	return int(math.Ceil(float64(checkOut.Sub(checkIn)) / float64(day)))
}

func Format(t time.Time) string {
	return t.Format(domain.DateLayout)
}
