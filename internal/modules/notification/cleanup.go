package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/repository"
)

// CleanupService purges expired notifications and delivered outbox events.
type CleanupService struct {
	store     *repository.Store
	clock     dates.Clock
	retention time.Duration
	log       *logrus.Logger
}

// CleanupResult reports how many rows a cleanup run removed.
type CleanupResult struct {
	Notifications int64
	OutboxEvents  int64
}

// NewCleanupService keeps processed outbox events for retention.
func NewCleanupService(store *repository.Store, clock dates.Clock, retention time.Duration, log *logrus.Logger) *CleanupService {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &CleanupService{store: store, clock: clock, retention: retention, log: log}
}

// PurgeExpired deletes notifications whose expiry has passed.
func (c *CleanupService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := c.store.Notifications().DeleteExpired(ctx, c.clock.Now())
	if err != nil {
		return 0, repository.Classify(err)
	}
	return deleted, nil
}

func (c *CleanupService) PurgeProcessedEvents(ctx context.Context) (int64, error) {
	deleted, err := c.store.Outbox().DeleteProcessedBefore(ctx, c.clock.Now().Add(-c.retention))
	if err != nil {
		return 0, repository.Classify(err)
	}
	return deleted, nil
}

// RunOnce runs every cleanup task. A failing task does not stop the next one.
func (c *CleanupService) RunOnce(ctx context.Context) (CleanupResult, error) {
	start := time.Now()
	var (
		res      CleanupResult
		firstErr error
	)

	n, err := c.PurgeExpired(ctx)
	if err != nil {
		c.log.WithError(err).Warn("notification cleanup failed")
		firstErr = err
	}
	res.Notifications = n

	n, err = c.PurgeProcessedEvents(ctx)
	if err != nil {
		c.log.WithError(err).Warn("outbox cleanup failed")
		if firstErr == nil {
			firstErr = err
		}
	}
	res.OutboxEvents = n

	c.log.WithFields(logrus.Fields{
		"notifications": res.Notifications,
		"outbox_events": res.OutboxEvents,
		"duration":      time.Since(start).String(),
	}).Info("cleanup completed")
	return res, firstErr
}

// ScheduleCleanup runs RunOnce every interval until ctx is done or the
// returned channel is closed.
func (c *CleanupService) ScheduleCleanup(ctx context.Context, interval time.Duration) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, _ = c.RunOnce(ctx)
			case <-stopCh:
				c.log.Info("scheduled cleanup stopped")
				return
			case <-ctx.Done():
				c.log.Info("scheduled cleanup stopped (context done)")
				return
			}
		}
	}()

	c.log.WithField("interval", interval.String()).Info("scheduled cleanup started")
	return stopCh
}
