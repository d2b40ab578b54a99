package domain

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomDirty       RoomStatus = "dirty"
	RoomClean       RoomStatus = "clean"
	RoomMaintenance RoomStatus = "maintenance"
	RoomOutOfOrder  RoomStatus = "out_of_order"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomDirty, RoomClean, RoomMaintenance, RoomOutOfOrder:
		return true
	}
	return false
}

// IsHousekeepingHold reports whether the status comes from housekeeping or
// maintenance work and must survive booking-side recomputation.
func (s RoomStatus) IsHousekeepingHold() bool {
	switch s {
	case RoomDirty, RoomClean, RoomMaintenance, RoomOutOfOrder:
		return true
	}
	return false
}

type Room struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	RoomNumber          string     `json:"room_number" gorm:"size:32;uniqueIndex;not null" validate:"required"`
	RoomType            string     `json:"room_type,omitempty" gorm:"size:64"`
	Floor               int        `json:"floor"`
	Capacity            int        `json:"capacity" gorm:"not null" validate:"required,gt=0"`
	PricePerNight       float64    `json:"price_per_night" gorm:"not null" validate:"gte=0"`
	Status              RoomStatus `json:"status" gorm:"size:32;not null;default:available"`
	StatusSeq           int64      `json:"-" gorm:"not null;default:0"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty"`
	IsActive            bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Room) TableName() string { return "rooms" }
