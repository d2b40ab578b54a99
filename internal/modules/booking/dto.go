package booking

import "time"

type CreateBookingRequest struct {
	GuestID         int64  `json:"guest_id" validate:"required,gt=0"`
	RoomID          int64  `json:"room_id" validate:"required,gt=0"`
	CheckInDate     string `json:"check_in_date" validate:"required"`
	CheckOutDate    string `json:"check_out_date" validate:"required"`
	NumberOfGuests  int    `json:"number_of_guests" validate:"required,gte=1"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type OverlapResponse struct {
	RoomID       int64  `json:"room_id"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Overlap      bool   `json:"overlap"`
}

type BusyRange struct {
	BookingID     int64     `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CheckInDate   time.Time `json:"check_in_date"`
	CheckOutDate  time.Time `json:"check_out_date"`
	Status        string    `json:"status"`
}
