package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated    EventType = "booking.created"
	EventBookingConfirmed  EventType = "booking.confirmed"
	EventBookingCheckedIn  EventType = "booking.checked_in"
	EventBookingCheckedOut EventType = "booking.checked_out"
	EventBookingCancelled  EventType = "booking.cancelled"
	EventBookingNoShow     EventType = "booking.no_show"

	EventRoomCleaned              EventType = "room.cleaned"
	EventRoomNeedsMaintenance     EventType = "room.needs_maintenance"
	EventRoomMaintenanceCompleted EventType = "room.maintenance_completed"
)

// BookingEventFor maps a booking status to the event emitted on entering it.
func BookingEventFor(to BookingStatus) EventType {
	switch to {
	case BookingConfirmed:
		return EventBookingConfirmed
	case BookingCheckedIn:
		return EventBookingCheckedIn
	case BookingCheckedOut:
		return EventBookingCheckedOut
	case BookingCancelled:
		return EventBookingCancelled
	case BookingNoShow:
		return EventBookingNoShow
	}
	return EventBookingCreated
}

type EventPayload struct {
	BookingID      int64         `json:"booking_id,omitempty"`
	BookingNumber  string        `json:"booking_number,omitempty"`
	GuestID        int64         `json:"guest_id,omitempty"`
	GuestName      string        `json:"guest_name,omitempty"`
	RoomID         int64         `json:"room_id"`
	RoomNumber     string        `json:"room_number,omitempty"`
	CheckInDate    string        `json:"check_in_date,omitempty"`
	CheckOutDate   string        `json:"check_out_date,omitempty"`
	NumberOfGuests int           `json:"number_of_guests,omitempty"`
	TotalAmount    float64       `json:"total_amount,omitempty"`
	FromStatus     BookingStatus `json:"from_status,omitempty"`
	ToStatus       BookingStatus `json:"to_status,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	RoomStatus     RoomStatus    `json:"room_status,omitempty"`
	TaskID         string        `json:"task_id,omitempty"`
	Issue          string        `json:"issue,omitempty"`
	OutOfOrder     bool          `json:"out_of_order,omitempty"`
	ActorID        int64         `json:"actor_id,omitempty"`
}

// Event is a committed domain fact, stored in the outbox in the same
// transaction as the state change it describes.
type Event struct {
	ID            string       `json:"id" gorm:"primaryKey;size:36"`
	Type          EventType    `json:"type" gorm:"size:64;index;not null"`
	AggregateType string       `json:"aggregate_type" gorm:"size:32;not null"`
	AggregateID   int64        `json:"aggregate_id" gorm:"not null"`
	RoomID        int64        `json:"room_id" gorm:"index"`
	Payload       EventPayload `json:"payload" gorm:"serializer:json;type:text"`
	Attempts      int          `json:"attempts" gorm:"not null;default:0"`
	LastError     string       `json:"last_error,omitempty" gorm:"type:text"`
	CreatedAt     time.Time    `json:"created_at" gorm:"index"`
	ProcessedAt   *time.Time   `json:"processed_at,omitempty" gorm:"index"`
}

func (Event) TableName() string { return "outbox_events" }

const (
	AggregateBooking = "booking"
	AggregateRoom    = "room"
)

func NewEvent(typ EventType, aggregateType string, aggregateID, roomID int64, payload EventPayload, at time.Time) Event {
	payload.RoomID = roomID
	return Event{
		ID:            uuid.NewString(),
		Type:          typ,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RoomID:        roomID,
		Payload:       payload,
		CreatedAt:     at,
	}
}

// Sequence is a storage-backed monotonic counter.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}

func (Sequence) TableName() string { return "sequences" }
