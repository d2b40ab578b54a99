package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/roomstate"
	"hotelcore/internal/pkg/apperror"
	"hotelcore/internal/pkg/roomlock"
	"hotelcore/internal/repository"
	"hotelcore/internal/testutil"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type recordingHook struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (h *recordingHook) AfterCommit(_ context.Context, events []domain.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, events...)
	return h.err
}

func (h *recordingHook) types() []domain.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.EventType, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *repository.Store
	service  *Service
	boundary *roomstate.Boundary
	deps     Deps
	clock    *testClock
	hook     *recordingHook
	log      *logrus.Logger
	logs     *logtest.Hook
	guest    *domain.User
}

// eventTypes waits for background hooks and returns the types they saw.
func (f *fixture) eventTypes() []domain.EventType {
	f.boundary.Wait()
	return f.hook.types()
}

// rebuild swaps the consistency boundary under the service.
func (f *fixture) rebuild(locker roomlock.Locker, hook roomstate.PostCommitHook, timeout time.Duration) {
	f.boundary = roomstate.NewBoundary(f.store, locker, hook, timeout, f.log)
	f.deps.Boundary = f.boundary
	f.service = NewService(f.deps)
}

type option func(*Deps)

func withAutoConfirm(v bool) option {
	return func(d *Deps) { d.AutoConfirm = v }
}

func newFixture(t *testing.T, opts ...option) *fixture {
	t.Helper()
	log, logs := logtest.NewNullLogger()

	store := repository.NewStore(testutil.NewDB(t))
	clock := &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	hook := &recordingHook{}

	synchronizer := roomstate.NewSynchronizer(roomstate.DefaultPolicy(), clock, log)
	boundary := roomstate.NewBoundary(store, roomlock.NewKeyedMutex(), hook, 5*time.Second, log)

	deps := Deps{
		Store:        store,
		Boundary:     boundary,
		Synchronizer: synchronizer,
		Clock:        clock,
		Location:     time.UTC,
		AutoConfirm:  true,
		Log:          log,
	}
	for _, o := range opts {
		o(&deps)
	}

	guest := &domain.User{Name: "Aigerim Sadykova", Email: "aigerim@example.com", Role: domain.RoleGuest}
	require.NoError(t, store.Users().Create(context.Background(), guest))

	return &fixture{
		store:    store,
		service:  NewService(deps),
		boundary: boundary,
		deps:     deps,
		clock:    clock,
		hook:     hook,
		log:      log,
		logs:     logs,
		guest:    guest,
	}
}

func (f *fixture) room(t *testing.T, number string, capacity int, price float64) *domain.Room {
	t.Helper()
	r := &domain.Room{RoomNumber: number, Capacity: capacity, PricePerNight: price}
	require.NoError(t, f.store.Rooms().Create(context.Background(), r))
	return r
}

func (f *fixture) roomStatus(t *testing.T, id int64) domain.RoomStatus {
	t.Helper()
	r, err := f.store.Rooms().GetByID(context.Background(), id)
	require.NoError(t, err)
	return r.Status
}

func (f *fixture) setRoomStatus(t *testing.T, id int64, status domain.RoomStatus) {
	t.Helper()
	ctx := context.Background()
	seq, err := f.store.Sequences().Next(ctx, repository.RoomStateSequence)
	require.NoError(t, err)
	_, err = f.store.Rooms().ApplyStatus(ctx, repository.RoomStatusUpdate{RoomID: id, Status: status, Seq: seq})
	require.NoError(t, err)
}

func (f *fixture) request(roomID int64, in, out string, guests int) CreateBookingRequest {
	return CreateBookingRequest{
		GuestID:        f.guest.ID,
		RoomID:         roomID,
		CheckInDate:    in,
		CheckOutDate:   out,
		NumberOfGuests: guests,
	}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.store.DB().Model(model).Count(&n).Error)
	return n
}

func TestCreateBooking_PricesStay(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "101", 2, 123.45)

	tests := []struct {
		in, out string
		nights  int
		total   float64
	}{
		{"2025-03-01", "2025-03-02", 1, 123.45},
		{"2025-03-02", "2025-03-04", 2, 246.9},
		{"2025-04-01", "2025-05-01", 30, 3703.5},
	}
	var created []*domain.Booking
	for _, tt := range tests {
		b, err := f.service.CreateBooking(context.Background(), f.request(r.ID, tt.in, tt.out, 2))
		require.NoError(t, err)
		assert.Equal(t, tt.nights, b.Nights)
		assert.Equal(t, tt.total, b.TotalAmount)
		assert.Equal(t, domain.BookingConfirmed, b.Status)
		assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
		assert.Regexp(t, `^BK-20250301-[0-9A-F]{8}$`, b.BookingNumber)
		assert.Equal(t, "101", b.RoomNumber)
		assert.Equal(t, f.guest.Name, b.GuestName)
		created = append(created, b)
	}

	require.NoError(t, f.store.Rooms().UpdatePrice(context.Background(), r.ID, 999))

	for _, b := range created {
		again, err := f.store.Bookings().GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.TotalAmount, again.TotalAmount)
	}
}

func TestCreateBooking_CheckOutDayIsFree(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "102", 2, 100)
	ctx := context.Background()

	_, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-12", "2025-03-14", 1))
	require.NoError(t, err)

	_, err = f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-11", "2025-03-13", 1))
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	overlap, err := f.service.GetOverlap(ctx, r.ID, "2025-03-14", "2025-03-15", nil)
	require.NoError(t, err)
	assert.False(t, overlap)

	overlap, err = f.service.GetOverlap(ctx, r.ID, "2025-03-09", "2025-03-11", nil)
	require.NoError(t, err)
	assert.True(t, overlap)

	busy, err := f.service.BusyRanges(ctx, r.ID, "2025-03-01", "2025-04-01")
	require.NoError(t, err)
	assert.Len(t, busy, 2)
}

func TestCreateBooking_Rejects(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "103", 2, 100)
	ctx := context.Background()

	inactive := &domain.User{Name: "Old Guest", Email: "old@example.com", Role: domain.RoleGuest}
	require.NoError(t, f.store.Users().Create(ctx, inactive))
	require.NoError(t, f.store.Users().SetActive(ctx, inactive.ID, false))

	tests := []struct {
		name string
		req  CreateBookingRequest
		want error
	}{
		{"check-out before check-in", f.request(r.ID, "2025-03-12", "2025-03-10", 1), ErrValidation},
		{"zero nights", f.request(r.ID, "2025-03-12", "2025-03-12", 1), ErrValidation},
		{"bad date", f.request(r.ID, "12.03.2025", "2025-03-14", 1), ErrValidation},
		{"no guests", f.request(r.ID, "2025-03-10", "2025-03-12", 0), ErrValidation},
		{"unknown room", f.request(999, "2025-03-10", "2025-03-12", 1), ErrNotFound},
		{"unknown guest", CreateBookingRequest{GuestID: 999, RoomID: r.ID, CheckInDate: "2025-03-10", CheckOutDate: "2025-03-12", NumberOfGuests: 1}, ErrNotFound},
		{"inactive guest", CreateBookingRequest{GuestID: inactive.ID, RoomID: r.ID, CheckInDate: "2025-03-10", CheckOutDate: "2025-03-12", NumberOfGuests: 1}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateBooking(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.count(t, &domain.Booking{}))
}

func TestCreateBooking_CapacityExceededChangesNothing(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "104", 2, 100)

	_, err := f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 3))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, f.count(t, &domain.Booking{}))
	assert.Zero(t, f.count(t, &domain.Event{}))
	assert.Empty(t, f.eventTypes())

	stored, err := f.store.Rooms().GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, stored.Status)
	assert.Zero(t, stored.StatusSeq)
}

func TestCreateBooking_RoomNotReady(t *testing.T) {
	for _, status := range []domain.RoomStatus{domain.RoomDirty, domain.RoomMaintenance, domain.RoomOutOfOrder} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			r := f.room(t, "105", 2, 100)
			f.setRoomStatus(t, r.ID, status)

			_, err := f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
			assert.ErrorIs(t, err, ErrRoomUnavailable)
		})
	}
}

// An inspected clean room is as ready as an available one.
func TestCreateBooking_CleanRoomIsBookable(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "106", 2, 100)
	f.setRoomStatus(t, r.ID, domain.RoomClean)

	b, err := f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, domain.RoomClean, f.roomStatus(t, r.ID))
	assert.Equal(t, []domain.EventType{domain.EventBookingCreated}, f.eventTypes())

	busy, err := f.service.GetOverlap(context.Background(), r.ID, "2025-03-11", "2025-03-12", nil)
	require.NoError(t, err)
	assert.True(t, busy)
}

func TestCreateBooking_ConcurrentOverlapOneWins(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "107", 2, 100)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	ranges := [][2]string{{"2025-03-10", "2025-03-13"}, {"2025-03-11", "2025-03-14"}}
	for i := range ranges {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.service.CreateBooking(context.Background(), f.request(r.ID, ranges[i][0], ranges[i][1], 1))
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrRoomUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, int64(1), f.count(t, &domain.Booking{}))
}

func TestCreateBooking_ConcurrentNeverDoubleBooks(t *testing.T) {
	f := newFixture(t)
	rooms := []*domain.Room{f.room(t, "201", 2, 100), f.room(t, "202", 2, 100), f.room(t, "203", 2, 100)}

	rnd := rand.New(rand.NewSource(42))
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	reqs := make([]CreateBookingRequest, 60)
	for i := range reqs {
		in := base.AddDate(0, 0, rnd.Intn(25))
		out := in.AddDate(0, 0, 1+rnd.Intn(5))
		reqs[i] = f.request(rooms[rnd.Intn(len(rooms))].ID, in.Format(domain.DateLayout), out.Format(domain.DateLayout), 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(reqs))
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateBooking(context.Background(), reqs[i])
		}(i)
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrRoomUnavailable)
	}
	assert.Positive(t, created)

	for _, r := range rooms {
		var held []domain.Booking
		require.NoError(t, f.store.DB().
			Where("room_id = ? AND status IN ?", r.ID, domain.BlockingStatuses).
			Find(&held).Error)
		for i := range held {
			for j := i + 1; j < len(held); j++ {
				a, b := held[i], held[j]
				shared := a.CheckInDate.Before(b.CheckOutDate) && b.CheckInDate.Before(a.CheckOutDate)
				assert.False(t, shared, fmt.Sprintf("room %s: %s and %s share a night", r.RoomNumber, a.BookingNumber, b.BookingNumber))
			}
		}
	}
}

func TestBooking_Lifecycle(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "301", 2, 100)
	ctx := context.Background()

	b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-01", "2025-03-03", 2))
	require.NoError(t, err)
	assert.Equal(t, 200.0, b.TotalAmount)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, r.ID))

	overlap, err := f.service.GetOverlap(ctx, r.ID, "2025-03-02", "2025-03-03", nil)
	require.NoError(t, err)
	assert.True(t, overlap)

	overlap, err = f.service.GetOverlap(ctx, r.ID, "2025-03-02", "2025-03-03", &b.ID)
	require.NoError(t, err)
	assert.False(t, overlap)

	f.clock.Set(time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC))
	in, err := f.service.CheckIn(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, in.Status)
	require.NotNil(t, in.ActualCheckInTime)
	assert.Equal(t, domain.RoomOccupied, f.roomStatus(t, r.ID))

	f.clock.Set(time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC))
	_, err = f.service.CheckIn(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	stored, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.ActualCheckInTime.Equal(*in.ActualCheckInTime))

	f.clock.Set(time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC))
	out, err := f.service.CheckOut(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedOut, out.Status)
	require.NotNil(t, out.ActualCheckOutTime)
	assert.Equal(t, domain.RoomDirty, f.roomStatus(t, r.ID))

	_, err = f.service.CancelBooking(ctx, b.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.ElementsMatch(t, []domain.EventType{
		domain.EventBookingCreated,
		domain.EventBookingCheckedIn,
		domain.EventBookingCheckedOut,
	}, f.eventTypes())
	assert.Equal(t, int64(3), f.count(t, &domain.Event{}))
}

func TestBooking_CheckInRules(t *testing.T) {
	ctx := context.Background()

	t.Run("before arrival day", func(t *testing.T) {
		f := newFixture(t)
		r := f.room(t, "302", 2, 100)
		b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-05", "2025-03-07", 1))
		require.NoError(t, err)

		_, err = f.service.CheckIn(ctx, b.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, r.ID))
	})

	t.Run("room under maintenance", func(t *testing.T) {
		f := newFixture(t)
		r := f.room(t, "303", 2, 100)
		b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-01", "2025-03-02", 1))
		require.NoError(t, err)
		f.setRoomStatus(t, r.ID, domain.RoomMaintenance)

		_, err = f.service.CheckIn(ctx, b.ID)
		assert.ErrorIs(t, err, ErrRoomUnavailable)

		stored, err := f.store.Bookings().GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, stored.Status)
	})

	t.Run("dirty room is accepted", func(t *testing.T) {
		f := newFixture(t)
		r := f.room(t, "304", 2, 100)
		b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-01", "2025-03-02", 1))
		require.NoError(t, err)
		f.setRoomStatus(t, r.ID, domain.RoomDirty)

		_, err = f.service.CheckIn(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoomOccupied, f.roomStatus(t, r.ID))
	})
}

func TestBooking_CancelAndNoShow(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "305", 2, 100)
	ctx := context.Background()

	b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-05", "2025-03-07", 1))
	require.NoError(t, err)

	_, err = f.service.CancelBooking(ctx, b.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	cancelled, err := f.service.CancelBooking(ctx, b.ID, "flight cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, cancelled.Status)
	assert.Equal(t, "flight cancelled", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, r.ID))

	// The range is free again.
	_, err = f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-05", "2025-03-07", 1))
	require.NoError(t, err)

	late, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-02", "2025-03-04", 1))
	require.NoError(t, err)

	_, err = f.service.MarkNoShow(ctx, late.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f.clock.Set(time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	noShow, err := f.service.MarkNoShow(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingNoShow, noShow.Status)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, r.ID))
}

func TestBooking_ConfirmPending(t *testing.T) {
	f := newFixture(t, withAutoConfirm(false))
	r := f.room(t, "306", 2, 100)
	ctx := context.Background()

	first, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, first.Status)

	// Pending bookings do not hold the room.
	second, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-11", "2025-03-13", 1))
	require.NoError(t, err)

	confirmed, err := f.service.ConfirmBooking(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)

	_, err = f.service.ConfirmBooking(ctx, second.ID)
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	stored, err := f.store.Bookings().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, stored.Status)
}

func TestBooking_HookFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.hook.err = errors.New("notification store down")
	r := f.room(t, "307", 2, 100)

	b, err := f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)

	stored, err := f.store.Bookings().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, stored.Status)
	assert.Equal(t, int64(1), f.count(t, &domain.Event{}))
	f.boundary.Wait()

	var warned bool
	for _, e := range f.logs.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["kind"] == apperror.KindNotificationDispatch {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestBooking_CreatedEventPayload(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "308", 2, 100)

	b, err := f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 2))
	require.NoError(t, err)

	f.boundary.Wait()
	require.Len(t, f.hook.events, 1)
	ev := f.hook.events[0]
	assert.Equal(t, domain.EventBookingCreated, ev.Type)
	assert.Equal(t, domain.AggregateBooking, ev.AggregateType)
	assert.Equal(t, b.ID, ev.AggregateID)
	assert.Equal(t, r.ID, ev.Payload.RoomID)
	assert.Equal(t, "308", ev.Payload.RoomNumber)
	assert.Equal(t, b.BookingNumber, ev.Payload.BookingNumber)
	assert.Equal(t, "2025-03-10", ev.Payload.CheckInDate)
	assert.Equal(t, 200.0, ev.Payload.TotalAmount)
	assert.Equal(t, f.guest.Name, ev.Payload.GuestName)

	stored, err := f.store.Outbox().GetByID(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.Payload, stored.Payload)
}

func TestBooking_FeedbackAndDelete(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "309", 2, 100)
	ctx := context.Background()

	b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-01", "2025-03-02", 1))
	require.NoError(t, err)

	_, err = f.service.SubmitFeedback(ctx, b.ID, nil, FeedbackRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = f.service.DeleteBooking(ctx, b.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.service.CheckIn(ctx, b.ID)
	require.NoError(t, err)
	f.clock.Set(time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC))
	_, err = f.service.CheckOut(ctx, b.ID)
	require.NoError(t, err)

	_, err = f.service.SubmitFeedback(ctx, b.ID, nil, FeedbackRequest{Rating: 9})
	assert.ErrorIs(t, err, ErrValidation)

	other := f.guest.ID + 100
	_, err = f.service.SubmitFeedback(ctx, b.ID, &other, FeedbackRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrNotFound)

	withFeedback, err := f.service.SubmitFeedback(ctx, b.ID, &f.guest.ID, FeedbackRequest{Rating: 4, Comment: " quiet room "})
	require.NoError(t, err)
	require.NotNil(t, withFeedback.FeedbackRating)
	assert.Equal(t, 4, *withFeedback.FeedbackRating)
	assert.Equal(t, "quiet room", withFeedback.FeedbackComment)

	require.NoError(t, f.service.DeleteBooking(ctx, b.ID, 1))
	_, err = f.service.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBooking_PaymentStatus(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "310", 2, 100)
	ctx := context.Background()

	b, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)

	_, err = f.service.UpdatePaymentStatus(ctx, b.ID, "bartered")
	assert.ErrorIs(t, err, ErrValidation)

	paid, err := f.service.UpdatePaymentStatus(ctx, b.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, domain.BookingConfirmed, paid.Status)

	_, err = f.service.UpdatePaymentStatus(ctx, 999, domain.PaymentPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_HeldRoomLockIsUnavailable(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "310", 2, 100)

	locker := roomlock.NewKeyedMutex()
	f.rebuild(locker, f.hook, 100*time.Millisecond)

	release, err := locker.Lock(context.Background(), r.ID)
	require.NoError(t, err)
	defer release()

	_, err = f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.Zero(t, f.count(t, &domain.Booking{}))
	assert.Zero(t, f.count(t, &domain.Event{}))
	assert.Empty(t, f.eventTypes())
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t, r.ID))
}

func TestCreateBooking_ExpiredContextIsUnavailable(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "311", 2, 100)

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err := f.service.CreateBooking(ctx, f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, f.count(t, &domain.Booking{}))
	assert.Zero(t, f.count(t, &domain.Event{}))
}

type blockingHook struct {
	release chan struct{}
	sawCtx  chan bool
}

func (h *blockingHook) AfterCommit(ctx context.Context, _ []domain.Event) error {
	_, ok := ctx.Deadline()
	h.sawCtx <- ok
	select {
	case <-h.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestCreateBooking_SlowHookDoesNotDelayCaller(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "312", 2, 100)

	hook := &blockingHook{release: make(chan struct{}), sawCtx: make(chan bool, 1)}
	timeout := 500 * time.Millisecond
	f.rebuild(roomlock.NewKeyedMutex(), hook, timeout)

	start := time.Now()
	b, err := f.service.CreateBooking(context.Background(), f.request(r.ID, "2025-03-10", "2025-03-12", 1))
	require.NoError(t, err)
	assert.Less(t, time.Since(start), timeout)
	assert.Equal(t, domain.BookingConfirmed, b.Status)

	select {
	case hasDeadline := <-hook.sawCtx:
		assert.True(t, hasDeadline)
	case <-time.After(2 * time.Second):
		t.Fatal("hook never ran")
	}
	close(hook.release)
	f.boundary.Wait()
}
