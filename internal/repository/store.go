package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one gorm handle. Inside Transaction every
// repository obtained from the callback's Store runs on the same transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Rooms() *RoomRepository { return NewRoomRepository(s.db) }

func (s *Store) Bookings() *BookingRepository { return NewBookingRepository(s.db) }

func (s *Store) Users() *UserRepository { return NewUserRepository(s.db) }

func (s *Store) Notifications() *NotificationRepository { return NewNotificationRepository(s.db) }

func (s *Store) Outbox() *OutboxRepository { return NewOutboxRepository(s.db) }

func (s *Store) Sequences() *SequenceRepository { return NewSequenceRepository(s.db) }
