package roomstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/apperror"
	"hotelcore/internal/pkg/roomlock"
	"hotelcore/internal/repository"
)

// PostCommitHook receives the events of a committed unit of work. It runs in
// the background after the room lock is released, under its own deadline; its
// error is logged and never returned.
type PostCommitHook interface {
	AfterCommit(ctx context.Context, events []domain.Event) error
}

// Work is the body of a consistency boundary. Every storage call must go
// through tx. The returned events are stored in the same transaction.
type Work func(ctx context.Context, tx *repository.Store) ([]domain.Event, error)

// Boundary serializes work per room: lock, one transaction, unlock, hook.
type Boundary struct {
	store   *repository.Store
	locker  roomlock.Locker
	hook    PostCommitHook
	timeout time.Duration
	log     *logrus.Logger
	pending sync.WaitGroup
}

func NewBoundary(store *repository.Store, locker roomlock.Locker, hook PostCommitHook, timeout time.Duration, log *logrus.Logger) *Boundary {
	return &Boundary{store: store, locker: locker, hook: hook, timeout: timeout, log: log}
}

func (b *Boundary) Store() *repository.Store { return b.store }

// Run executes w for roomID. Either everything w wrote plus its events is
// committed, or nothing is.
func (b *Boundary) Run(ctx context.Context, roomID int64, w Work) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	release, err := b.locker.Lock(ctx, roomID)
	if err != nil {
		return apperror.Unavailable(fmt.Errorf("lock room %d: %w", roomID, err))
	}

	var events []domain.Event
	err = b.store.Transaction(ctx, func(tx *repository.Store) error {
		evs, err := w(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Insert(ctx, evs...); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
		events = evs
		return nil
	})
	release()
	if err != nil {
		return repository.Classify(err)
	}

	if b.hook != nil && len(events) > 0 {
		b.pending.Add(1)
		go b.afterCommit(context.WithoutCancel(ctx), roomID, events)
	}
	return nil
}

// Wait blocks until every post-commit hook started so far has returned.
func (b *Boundary) Wait() {
	b.pending.Wait()
}

func (b *Boundary) afterCommit(ctx context.Context, roomID int64, events []domain.Event) {
	defer b.pending.Done()
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.hook.AfterCommit(ctx, events); err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"room_id": roomID,
			"kind":    apperror.KindNotificationDispatch,
		}).Warn("post-commit hook failed")
	}
}
