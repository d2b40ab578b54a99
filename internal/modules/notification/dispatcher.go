package notification

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/apperror"
)

// Store persists rendered notifications. CreateIfAbsent must ignore a second
// insert for the same event and recipient role.
type Store interface {
	CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error)
}

// Pusher delivers a stored notification to connected clients.
type Pusher interface {
	Push(role domain.Role, n domain.Notification)
}

type Dispatcher struct {
	store  Store
	pusher Pusher
	ttl    time.Duration
	log    *logrus.Logger
}

func NewDispatcher(store Store, pusher Pusher, ttl time.Duration, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{store: store, pusher: pusher, ttl: ttl, log: log}
}

// Dispatch fans ev out to every role in its route and returns the
// notifications written by this call. A failure for one role does not stop
// the others; all failures are logged and returned joined so the caller can
// retry. Retrying is safe since repeated inserts are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) ([]domain.Notification, error) {
	roles := Recipients(ev.Type)
	if len(roles) == 0 {
		d.log.WithFields(logrus.Fields{"event_id": ev.ID, "event_type": ev.Type}).Debug("no notification route")
		return nil, nil
	}

	var (
		out  []domain.Notification
		errs []error
	)
	for _, role := range roles {
		n, _ := Render(ev, role, d.ttl)
		inserted, err := d.store.CreateIfAbsent(ctx, &n)
		if err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"event_id":   ev.ID,
				"event_type": ev.Type,
				"role":       role,
				"kind":       apperror.KindNotificationDispatch,
			}).Warn("notification not stored")
			errs = append(errs, apperror.NotificationDispatch(err))
			continue
		}
		if !inserted {
			continue
		}
		out = append(out, n)
		if d.pusher != nil {
			d.pusher.Push(role, n)
		}
	}

	if len(out) > 0 {
		d.log.WithFields(logrus.Fields{
			"event_id":   ev.ID,
			"event_type": ev.Type,
			"count":      len(out),
		}).Debug("notifications dispatched")
	}
	return out, errors.Join(errs...)
}
