package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/roomstate"
	"hotelcore/internal/pkg/apperror"
	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/pkg/validator"
	"hotelcore/internal/repository"
)

// Deps wires a Service. Store, Boundary and Synchronizer are required.
type Deps struct {
	Store        *repository.Store
	Boundary     *roomstate.Boundary
	Synchronizer *roomstate.Synchronizer
	// Users defaults to the store's user repository.
	Users       UserDirectory
	Clock       dates.Clock
	Location    *time.Location
	AutoConfirm bool
	// QueryTimeout bounds reads that run outside a boundary.
	QueryTimeout time.Duration
	Log          *logrus.Logger
	Tracer       trace.Tracer
}

type Service struct {
	store       *repository.Store
	boundary    *roomstate.Boundary
	sync        *roomstate.Synchronizer
	users       UserDirectory
	numbers     *NumberGenerator
	clock       dates.Clock
	loc         *time.Location
	autoConfirm bool
	timeout     time.Duration
	log         *logrus.Logger
	tracer      trace.Tracer
}

func NewService(d Deps) *Service {
	s := &Service{
		store:       d.Store,
		boundary:    d.Boundary,
		sync:        d.Synchronizer,
		users:       d.Users,
		clock:       d.Clock,
		loc:         d.Location,
		autoConfirm: d.AutoConfirm,
		timeout:     d.QueryTimeout,
		log:         d.Log,
		tracer:      d.Tracer,
	}
	if s.users == nil {
		s.users = d.Store.Users()
	}
	if s.clock == nil {
		s.clock = dates.SystemClock{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("hotelcore/booking")
	}
	s.numbers = NewNumberGenerator(s.clock)
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "BookingService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (_ *domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, "CreateBooking",
		attribute.Int64("room_id", req.RoomID),
		attribute.Int64("guest_id", req.GuestID))
	defer func() { endSpan(span, err) }()

	req.SpecialRequests = strings.TrimSpace(req.SpecialRequests)
	if fields := validator.Validate(req); fields != nil {
		return nil, apperror.Validation(CodeValidation, "%s", validator.Describe(fields))
	}
	checkIn, checkOut, err := parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	guest, err := s.guest(ctx, req.GuestID)
	if err != nil {
		return nil, err
	}
	if !guest.IsActive {
		return nil, apperror.Validation(CodeGuestInactive, "guest %d is not active", guest.ID)
	}

	var (
		created *domain.Booking
		room    *domain.Room
	)
	err = s.boundary.Run(ctx, req.RoomID, func(ctx context.Context, tx *repository.Store) ([]domain.Event, error) {
		r, err := tx.Rooms().GetByID(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		if req.NumberOfGuests > r.Capacity {
			return nil, apperror.Validation(CodeCapacityExceeded,
				"room %s holds %d guests, %d requested", r.RoomNumber, r.Capacity, req.NumberOfGuests)
		}
		if !r.IsActive || !bookable(r.Status) {
			return nil, apperror.RoomUnavailable(CodeRoomNotReady, "room %s is %s", r.RoomNumber, r.Status)
		}

		overlap, err := NewChecker(tx.Bookings()).HasOverlap(ctx, r.ID, checkIn, checkOut, nil)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, apperror.RoomUnavailable(CodeRoomUnavailable,
				"room %s is already booked between %s and %s", r.RoomNumber, req.CheckInDate, req.CheckOutDate)
		}

		number, err := s.numbers.Next(ctx, tx.Bookings().NumberExists)
		if err != nil {
			return nil, err
		}

		nights, total := PriceStay(checkIn, checkOut, r.PricePerNight)
		status := domain.BookingPending
		if s.autoConfirm {
			status = domain.BookingConfirmed
		}

		b := &domain.Booking{
			BookingNumber:   number,
			GuestID:         guest.ID,
			RoomID:          r.ID,
			CheckInDate:     checkIn,
			CheckOutDate:    checkOut,
			Nights:          nights,
			NumberOfGuests:  req.NumberOfGuests,
			Status:          status,
			PaymentStatus:   domain.PaymentPending,
			TotalAmount:     total,
			SpecialRequests: req.SpecialRequests,
		}
		if err := tx.Bookings().Create(ctx, b); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, apperror.Unavailable(fmt.Errorf("booking number %s taken: %w", number, err))
			}
			return nil, err
		}

		room, err = s.sync.Apply(ctx, tx, roomstate.Change{
			RoomID:    r.ID,
			Trigger:   roomstate.TriggerBookingCreated,
			BookingID: b.ID,
		})
		if err != nil {
			return nil, err
		}

		created = b
		return []domain.Event{s.bookingEvent(domain.EventBookingCreated, b, guest, room, "", "")}, nil
	})
	if err != nil {
		return nil, err
	}

	decorate(created, guest, room)
	s.log.WithFields(logrus.Fields{
		"booking_id":     created.ID,
		"booking_number": created.BookingNumber,
		"room_id":        created.RoomID,
		"status":         created.Status,
	}).Info("booking created")
	return created, nil
}

// bookable lists the room statuses a new reservation may be taken in. Clean
// is the ready state when rooms are inspected after cleaning.
func bookable(s domain.RoomStatus) bool {
	return s == domain.RoomAvailable || s == domain.RoomClean
}

func (s *Service) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, "ConfirmBooking", id, domain.BookingConfirmed, "")
}

func (s *Service) CheckIn(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, "CheckIn", id, domain.BookingCheckedIn, "")
}

func (s *Service) CheckOut(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, "CheckOut", id, domain.BookingCheckedOut, "")
}

func (s *Service) CancelBooking(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	return s.transition(ctx, "CancelBooking", id, domain.BookingCancelled, reason)
}

func (s *Service) MarkNoShow(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.transition(ctx, "MarkNoShow", id, domain.BookingNoShow, "")
}

// transition runs one state-machine move with its room-state consequence
// inside the room's consistency boundary.
func (s *Service) transition(ctx context.Context, op string, id int64, to domain.BookingStatus, reason string) (_ *domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, op,
		attribute.Int64("booking_id", id),
		attribute.String("to_status", string(to)))
	defer func() { endSpan(span, err) }()

	current, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	guest, _ := s.guest(ctx, current.GuestID)

	var (
		updated *domain.Booking
		room    *domain.Room
		from    domain.BookingStatus
	)
	err = s.boundary.Run(ctx, current.RoomID, func(ctx context.Context, tx *repository.Store) ([]domain.Event, error) {
		b, err := tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r, err := tx.Rooms().GetByID(ctx, b.RoomID)
		if err != nil {
			return nil, err
		}

		now := s.clock.Now()
		tc := TransitionContext{
			Today:      dates.Today(now, s.loc),
			Now:        now.UTC(),
			Reason:     reason,
			RoomStatus: r.Status,
		}
		if b.Status.CanTransitionTo(to) {
			switch to {
			case domain.BookingCheckedIn:
				if tc.GuestInHouse, err = tx.Bookings().HasGuestInHouse(ctx, r.ID, b.ID); err != nil {
					return nil, err
				}
			case domain.BookingConfirmed:
				if tc.Overlaps, err = NewChecker(tx.Bookings()).HasOverlap(ctx, r.ID, b.CheckInDate, b.CheckOutDate, &b.ID); err != nil {
					return nil, err
				}
			}
		}

		from = b.Status
		if err := Apply(b, to, tc); err != nil {
			return nil, err
		}
		if err := tx.Bookings().SaveTransition(ctx, b, from); err != nil {
			if errors.Is(err, repository.ErrStaleWrite) {
				return nil, apperror.Unavailable(fmt.Errorf("booking %d changed concurrently: %w", b.ID, err))
			}
			return nil, err
		}

		room, err = s.sync.Apply(ctx, tx, roomstate.Change{
			RoomID:    r.ID,
			Trigger:   roomstate.Trigger(domain.BookingEventFor(to)),
			BookingID: b.ID,
		})
		if err != nil {
			return nil, err
		}

		updated = b
		return []domain.Event{s.bookingEvent(domain.BookingEventFor(to), b, guest, room, from, b.CancellationReason)}, nil
	})
	if err != nil {
		return nil, err
	}

	decorate(updated, guest, room)
	s.log.WithFields(logrus.Fields{
		"booking_id":  updated.ID,
		"room_id":     updated.RoomID,
		"from":        from,
		"to":          to,
		"room_status": room.Status,
	}).Info("booking transition")
	return updated, nil
}

// GetOverlap is the availability query of the public surface.
func (s *Service) GetOverlap(ctx context.Context, roomID int64, checkInDate, checkOutDate string, excludeID *int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "GetOverlap", attribute.Int64("room_id", roomID))
	defer func() { endSpan(span, err) }()

	checkIn, checkOut, err := parseStay(checkInDate, checkOutDate)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Rooms().GetByID(ctx, roomID); err != nil {
		return false, repository.Classify(err)
	}
	overlap, err := NewChecker(s.store.Bookings()).HasOverlap(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, repository.Classify(err)
	}
	return overlap, nil
}

func (s *Service) BusyRanges(ctx context.Context, roomID int64, from, to string) ([]BusyRange, error) {
	start, end, err := parseStay(from, to)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ranges, err := NewChecker(s.store.Bookings()).BusyRanges(ctx, roomID, start, end)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return ranges, nil
}

// GetBooking returns the booking with its guest and room display fields.
func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	guest, _ := s.guest(ctx, b.GuestID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	room, _ := s.store.Rooms().GetByID(ctx, b.RoomID)
	decorate(b, guest, room)
	return b, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, apperror.Validation(CodeValidation, "unknown payment status %q", status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Bookings().UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, repository.Classify(err)
	}
	s.log.WithFields(logrus.Fields{"booking_id": id, "payment_status": status}).Info("payment status updated")
	return s.GetBooking(ctx, id)
}

// SubmitFeedback stores guest feedback. When guestID is set it must own the
// booking.
func (s *Service) SubmitFeedback(ctx context.Context, id int64, guestID *int64, req FeedbackRequest) (*domain.Booking, error) {
	req.Comment = strings.TrimSpace(req.Comment)
	if fields := validator.Validate(req); fields != nil {
		return nil, apperror.Validation(CodeValidation, "%s", validator.Describe(fields))
	}

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if guestID != nil && *guestID != b.GuestID {
		return nil, apperror.NotFound("booking", id)
	}
	if b.Status != domain.BookingCheckedOut {
		return nil, apperror.New(apperror.KindInvalidTransition, CodeFeedbackNotAllowed,
			"feedback can only be left after check-out, booking is %s", b.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.store.Bookings().SetFeedback(ctx, id, req.Rating, req.Comment, s.clock.Now().UTC())
	if errors.Is(err, repository.ErrStaleWrite) {
		return nil, apperror.New(apperror.KindInvalidTransition, CodeFeedbackNotAllowed, "feedback can only be left after check-out")
	}
	if err != nil {
		return nil, repository.Classify(err)
	}
	return s.GetBooking(ctx, id)
}

// DeleteBooking is the administrative override. Only terminal bookings can be
// removed and every removal is logged. Notifications that reference the
// booking are left dangling on purpose.
func (s *Service) DeleteBooking(ctx context.Context, id, actorID int64) error {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return err
	}
	if !b.Status.IsTerminal() {
		return apperror.New(apperror.KindInvalidTransition, CodeDeleteNotAllowed,
			"booking %s is %s, only finished bookings can be deleted", b.BookingNumber, b.Status)
	}

	err = s.boundary.Run(ctx, b.RoomID, func(ctx context.Context, tx *repository.Store) ([]domain.Event, error) {
		if err := tx.Bookings().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrStaleWrite) {
				return nil, apperror.New(apperror.KindInvalidTransition, CodeDeleteNotAllowed, "booking %d is no longer deletable", id)
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":     b.ID,
		"booking_number": b.BookingNumber,
		"room_id":        b.RoomID,
		"status":         b.Status,
		"actor_id":       actorID,
	}).Warn("booking deleted by administrative override")
	return nil
}

func (s *Service) getBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	b, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return b, nil
}

func (s *Service) guest(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.NotFound("guest", id)
		}
		return nil, repository.Classify(err)
	}
	return u, nil
}

func (s *Service) bookingEvent(typ domain.EventType, b *domain.Booking, guest *domain.User, room *domain.Room, from domain.BookingStatus, reason string) domain.Event {
	p := domain.EventPayload{
		BookingID:      b.ID,
		BookingNumber:  b.BookingNumber,
		GuestID:        b.GuestID,
		CheckInDate:    dates.Format(b.CheckInDate),
		CheckOutDate:   dates.Format(b.CheckOutDate),
		NumberOfGuests: b.NumberOfGuests,
		TotalAmount:    b.TotalAmount,
		FromStatus:     from,
		ToStatus:       b.Status,
		Reason:         reason,
	}
	if guest != nil {
		p.GuestName = guest.Name
	}
	if room != nil {
		p.RoomNumber = room.RoomNumber
		p.RoomStatus = room.Status
	}
	return domain.NewEvent(typ, domain.AggregateBooking, b.ID, b.RoomID, p, s.clock.Now().UTC())
}

func decorate(b *domain.Booking, guest *domain.User, room *domain.Room) {
	if guest != nil {
		b.GuestName = guest.Name
		b.GuestEmail = guest.Email
	}
	if room != nil {
		b.RoomNumber = room.RoomNumber
	}
}

func parseStay(checkInDate, checkOutDate string) (time.Time, time.Time, error) {
	checkIn, err := dates.Parse(strings.TrimSpace(checkInDate))
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation(CodeInvalidDateRange, "check_in_date: %v", err)
	}
	checkOut, err := dates.Parse(strings.TrimSpace(checkOutDate))
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation(CodeInvalidDateRange, "check_out_date: %v", err)
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, apperror.Validation(CodeInvalidDateRange, "check-out must be after check-in")
	}
	return checkIn, checkOut, nil
}
