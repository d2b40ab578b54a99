package roomstate

import (
	"context"
	"strings"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/apperror"
	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/repository"
)

// HousekeepingEvent is a completion or request reported by the housekeeping
// and maintenance task system.
type HousekeepingEvent struct {
	RoomID     int64
	Trigger    Trigger
	TaskID     string
	Issue      string
	OutOfOrder bool
	ActorID    int64
}

// Service runs housekeeping events through the room's consistency boundary.
type Service struct {
	sync     *Synchronizer
	boundary *Boundary
	clock    dates.Clock
	timeout  time.Duration
}

// NewService builds the room service. timeout bounds each storage call made
// outside the boundary.
func NewService(sync *Synchronizer, boundary *Boundary, timeout time.Duration) *Service {
	return &Service{sync: sync, boundary: boundary, clock: sync.clock, timeout: timeout}
}

func (s *Service) HandleHousekeeping(ctx context.Context, ev HousekeepingEvent) (*domain.Room, error) {
	switch ev.Trigger {
	case TriggerCleaningCompleted, TriggerMaintenanceCompleted, TriggerMaintenanceRequested:
	default:
		return nil, apperror.Validation("INVALID_EVENT", "unsupported housekeeping event %q", ev.Trigger)
	}
	if ev.RoomID <= 0 {
		return nil, apperror.Validation("VALIDATION_ERROR", "room id is required")
	}
	if ev.Trigger == TriggerMaintenanceRequested && strings.TrimSpace(ev.Issue) == "" {
		return nil, apperror.Validation("VALIDATION_ERROR", "issue is required for a maintenance request")
	}

	var room *domain.Room
	err := s.boundary.Run(ctx, ev.RoomID, func(ctx context.Context, tx *repository.Store) ([]domain.Event, error) {
		r, err := s.sync.Apply(ctx, tx, Change{
			RoomID:     ev.RoomID,
			Trigger:    ev.Trigger,
			OutOfOrder: ev.OutOfOrder,
		})
		if err != nil {
			return nil, err
		}
		room = r

		return []domain.Event{domain.NewEvent(ev.Trigger.EventType(), domain.AggregateRoom, r.ID, r.ID, domain.EventPayload{
			RoomNumber: r.RoomNumber,
			RoomStatus: r.Status,
			TaskID:     ev.TaskID,
			Issue:      strings.TrimSpace(ev.Issue),
			OutOfOrder: ev.OutOfOrder,
			ActorID:    ev.ActorID,
		}, s.clock.Now().UTC())}, nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	room, err := s.boundary.Store().Rooms().GetByID(ctx, id)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return room, nil
}

func (s *Service) ListRooms(ctx context.Context) ([]domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rooms, err := s.boundary.Store().Rooms().List(ctx, true)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return rooms, nil
}

// UpdatePrice changes a room's nightly rate. Bookings already made keep their
// total.
func (s *Service) UpdatePrice(ctx context.Context, id int64, price float64) (*domain.Room, error) {
	if price < 0 {
		return nil, apperror.Validation("VALIDATION_ERROR", "price per night must not be negative")
	}
	updateCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.boundary.Store().Rooms().UpdatePrice(updateCtx, id, price); err != nil {
		return nil, repository.Classify(err)
	}
	return s.GetRoom(ctx, id)
}
