package domain

import "time"

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

type Booking struct {
	ID                 int64         `json:"id" gorm:"primaryKey"`
	BookingNumber      string        `json:"booking_number" gorm:"size:32;uniqueIndex:idx_bookings_number;not null"`
	GuestID            int64         `json:"guest_id" gorm:"index;not null"`
	RoomID             int64         `json:"room_id" gorm:"index:idx_bookings_room_dates,priority:1;not null"`
	CheckInDate        time.Time     `json:"check_in_date" gorm:"type:date;index:idx_bookings_room_dates,priority:2;not null"`
	CheckOutDate       time.Time     `json:"check_out_date" gorm:"type:date;index:idx_bookings_room_dates,priority:3;not null"`
	Nights             int           `json:"nights" gorm:"not null"`
	NumberOfGuests     int           `json:"number_of_guests" gorm:"not null"`
	Status             BookingStatus `json:"status" gorm:"size:32;index;not null"`
	PaymentStatus      PaymentStatus `json:"payment_status" gorm:"size:32;not null"`
	TotalAmount        float64       `json:"total_amount" gorm:"not null"`
	SpecialRequests    string        `json:"special_requests,omitempty" gorm:"type:text"`
	CancellationReason string        `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	ActualCheckInTime  *time.Time    `json:"actual_check_in_time,omitempty"`
	ActualCheckOutTime *time.Time    `json:"actual_check_out_time,omitempty"`
	FeedbackRating     *int          `json:"feedback_rating,omitempty"`
	FeedbackComment    string        `json:"feedback_comment,omitempty" gorm:"type:text"`
	FeedbackAt         *time.Time    `json:"feedback_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	// Display fields, filled by the booking service.
	GuestName  string `json:"guest_name,omitempty" gorm:"-"`
	GuestEmail string `json:"guest_email,omitempty" gorm:"-"`
	RoomNumber string `json:"room_number,omitempty" gorm:"-"`
}

func (Booking) TableName() string { return "bookings" }

// Covers reports whether day falls inside [CheckInDate, CheckOutDate).
func (b *Booking) Covers(day time.Time) bool {
	return !day.Before(b.CheckInDate) && day.Before(b.CheckOutDate)
}
