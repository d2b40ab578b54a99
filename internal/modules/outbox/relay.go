// Package outbox delivers committed domain events: notifications first, then
// the message broker when one is configured.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/repository"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, ev domain.Event) ([]domain.Notification, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	// DeliveryTimeout bounds one event's dispatch and publish. Zero means
	// the caller's deadline only.
	DeliveryTimeout time.Duration
}

// Relay moves events from the outbox to their consumers. Committed events are
// delivered right away through AfterCommit; Run picks up whatever failed.
// Delivery is at least once.
type Relay struct {
	store      *repository.Store
	dispatcher Dispatcher
	publisher  Publisher
	cfg        Config
	clock      dates.Clock
	log        *logrus.Logger
	tracer     trace.Tracer
}

// NewRelay builds a relay. publisher may be nil.
func NewRelay(store *repository.Store, dispatcher Dispatcher, publisher Publisher, cfg Config, clock dates.Clock, log *logrus.Logger) *Relay {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &Relay{
		store:      store,
		dispatcher: dispatcher,
		publisher:  publisher,
		cfg:        cfg,
		clock:      clock,
		log:        log,
		tracer:     otel.Tracer("hotelcore/outbox"),
	}
}

// AfterCommit delivers freshly committed events. Failed ones stay pending for
// the poller.
func (r *Relay) AfterCommit(ctx context.Context, events []domain.Event) error {
	var errs []error
	for _, ev := range events {
		if err := r.deliver(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProcessPending delivers one batch of pending events and returns how many
// were delivered.
func (r *Relay) ProcessPending(ctx context.Context) (delivered int, err error) {
	ctx, span := r.tracer.Start(ctx, "Relay.ProcessPending")
	defer func() {
		span.SetAttributes(attribute.Int("delivered", delivered))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	events, err := r.store.Outbox().FetchPending(ctx, r.cfg.BatchSize, r.cfg.MaxAttempts)
	if err != nil {
		return 0, repository.Classify(err)
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if r.deliver(ctx, ev) == nil {
			delivered++
		}
	}
	return delivered, nil
}

// Run polls the outbox every PollInterval until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.log.WithField("interval", r.cfg.PollInterval.String()).Info("outbox relay started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			n, err := r.ProcessPending(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.log.WithError(err).Warn("outbox poll failed")
			} else if n > 0 {
				r.log.WithField("delivered", n).Debug("outbox batch delivered")
			}
		}
	}
}

func (r *Relay) deliver(ctx context.Context, ev domain.Event) error {
	sendCtx := ctx
	if r.cfg.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, r.cfg.DeliveryTimeout)
		defer cancel()
	}

	_, err := r.dispatcher.Dispatch(sendCtx, ev)
	if err == nil && r.publisher != nil {
		err = r.publisher.Publish(sendCtx, ev)
	}

	fields := logrus.Fields{"event_id": ev.ID, "event_type": ev.Type, "room_id": ev.RoomID}
	if err != nil {
		if mErr := r.store.Outbox().MarkFailed(ctx, ev.ID, err.Error()); mErr != nil {
			r.log.WithError(mErr).WithFields(fields).Error("could not record outbox failure")
		}
		attempts := ev.Attempts + 1
		entry := r.log.WithError(err).WithFields(fields).WithField("attempts", attempts)
		if attempts >= r.cfg.MaxAttempts {
			entry.Error("outbox event abandoned after max attempts")
		} else {
			entry.Warn("outbox delivery failed, will retry")
		}
		return err
	}

	if err := r.store.Outbox().MarkProcessed(ctx, ev.ID, r.clock.Now().UTC()); err != nil {
		r.log.WithError(err).WithFields(fields).Warn("could not mark outbox event processed")
		return err
	}
	return nil
}
