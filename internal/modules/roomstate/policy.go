// Package roomstate derives a room's status from booking transitions and
// housekeeping outcomes. It is the only writer of rooms.status.
package roomstate

import (
	"fmt"

	"hotelcore/internal/domain"
)

type Trigger string

const (
	TriggerBookingCreated    = Trigger(domain.EventBookingCreated)
	TriggerBookingConfirmed  = Trigger(domain.EventBookingConfirmed)
	TriggerBookingCheckedIn  = Trigger(domain.EventBookingCheckedIn)
	TriggerBookingCheckedOut = Trigger(domain.EventBookingCheckedOut)
	TriggerBookingCancelled  = Trigger(domain.EventBookingCancelled)
	TriggerBookingNoShow     = Trigger(domain.EventBookingNoShow)

	TriggerCleaningCompleted    Trigger = "housekeeping.cleaning_completed"
	TriggerMaintenanceCompleted Trigger = "housekeeping.maintenance_completed"
	TriggerMaintenanceRequested Trigger = "housekeeping.maintenance_requested"
)

// ParseHousekeeping accepts the housekeeping triggers in full or short form
// ("cleaning_completed").
func ParseHousekeeping(s string) (Trigger, error) {
	switch t := Trigger(s); t {
	case TriggerCleaningCompleted, TriggerMaintenanceCompleted, TriggerMaintenanceRequested:
		return t, nil
	}
	switch t := Trigger("housekeeping." + s); t {
	case TriggerCleaningCompleted, TriggerMaintenanceCompleted, TriggerMaintenanceRequested:
		return t, nil
	}
	return "", fmt.Errorf("unknown housekeeping event %q", s)
}

// EventType is the outbox event published for a housekeeping trigger.
func (t Trigger) EventType() domain.EventType {
	switch t {
	case TriggerCleaningCompleted:
		return domain.EventRoomCleaned
	case TriggerMaintenanceCompleted:
		return domain.EventRoomMaintenanceCompleted
	case TriggerMaintenanceRequested:
		return domain.EventRoomNeedsMaintenance
	}
	return domain.EventType(t)
}

type Policy struct {
	// CleanedStatus is what a cleaned, empty room becomes: available or clean.
	CleanedStatus domain.RoomStatus
}

func DefaultPolicy() Policy {
	return Policy{CleanedStatus: domain.RoomAvailable}
}

// Facts is what the synchronizer knows about the room when it decides.
type Facts struct {
	Current      domain.RoomStatus
	GuestInHouse bool
	OutOfOrder   bool
}

// Target is the room status after trigger t. It depends only on its inputs.
func (p Policy) Target(t Trigger, f Facts) domain.RoomStatus {
	switch t {
	case TriggerBookingCheckedIn:
		return domain.RoomOccupied

	case TriggerBookingCheckedOut:
		if f.GuestInHouse {
			return domain.RoomOccupied
		}
		if underRepair(f.Current) {
			return f.Current
		}
		return domain.RoomDirty

	case TriggerCleaningCompleted:
		if f.GuestInHouse {
			return domain.RoomOccupied
		}
		if underRepair(f.Current) {
			return f.Current
		}
		if p.CleanedStatus == domain.RoomClean {
			return domain.RoomClean
		}
		return domain.RoomAvailable

	case TriggerMaintenanceCompleted:
		if f.GuestInHouse {
			return domain.RoomOccupied
		}
		return domain.RoomAvailable

	case TriggerMaintenanceRequested:
		if f.OutOfOrder {
			return domain.RoomOutOfOrder
		}
		return domain.RoomMaintenance
	}

	// created, confirmed, cancelled and no-show recompute from scratch.
	if f.GuestInHouse {
		return domain.RoomOccupied
	}
	if f.Current.IsHousekeepingHold() {
		return f.Current
	}
	return domain.RoomAvailable
}

func underRepair(s domain.RoomStatus) bool {
	return s == domain.RoomMaintenance || s == domain.RoomOutOfOrder
}
