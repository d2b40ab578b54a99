package roomstate

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/repository"
)

// Change describes one trigger for one room.
type Change struct {
	RoomID    int64
	Trigger   Trigger
	BookingID int64
	// OutOfOrder marks a maintenance request that takes the room out of service.
	OutOfOrder bool
}

type Synchronizer struct {
	policy Policy
	clock  dates.Clock
	log    *logrus.Logger
}

func NewSynchronizer(policy Policy, clock dates.Clock, log *logrus.Logger) *Synchronizer {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &Synchronizer{policy: policy, clock: clock, log: log}
}

// Apply recomputes the room status for c inside tx. The caller must hold the
// room's consistency boundary.
func (s *Synchronizer) Apply(ctx context.Context, tx *repository.Store, c Change) (*domain.Room, error) {
	room, err := tx.Rooms().GetByID(ctx, c.RoomID)
	if err != nil {
		return nil, err
	}

	inHouse, err := tx.Bookings().HasGuestInHouse(ctx, c.RoomID, c.BookingID)
	if err != nil {
		return nil, err
	}

	target := s.policy.Target(c.Trigger, Facts{
		Current:      room.Status,
		GuestInHouse: inHouse,
		OutOfOrder:   c.OutOfOrder,
	})

	seq, err := tx.Sequences().Next(ctx, repository.RoomStateSequence)
	if err != nil {
		return nil, fmt.Errorf("next room-state sequence: %w", err)
	}

	upd := repository.RoomStatusUpdate{RoomID: room.ID, Status: target, Seq: seq}
	if c.Trigger == TriggerMaintenanceCompleted {
		now := s.clock.Now().UTC()
		upd.LastMaintenanceDate = &now
		room.LastMaintenanceDate = &now
	}

	applied, err := tx.Rooms().ApplyStatus(ctx, upd)
	if err != nil {
		return nil, err
	}
	if !applied {
		s.log.WithFields(logrus.Fields{
			"room_id": room.ID,
			"trigger": c.Trigger,
			"seq":     seq,
		}).Debug("room status superseded by a later event")
		return tx.Rooms().GetByID(ctx, room.ID)
	}

	if room.Status != target {
		s.log.WithFields(logrus.Fields{
			"room_id": room.ID,
			"trigger": c.Trigger,
			"from":    room.Status,
			"to":      target,
		}).Info("room status changed")
	}
	room.Status = target
	room.StatusSeq = seq
	return room, nil
}
