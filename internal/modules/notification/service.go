package notification

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/dates"
	"hotelcore/internal/repository"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service is the read side over stored notifications.
type Service struct {
	repo    *repository.NotificationRepository
	clock   dates.Clock
	timeout time.Duration
	log     *logrus.Logger
}

func NewService(repo *repository.NotificationRepository, clock dates.Clock, timeout time.Duration, log *logrus.Logger) *Service {
	if clock == nil {
		clock = dates.SystemClock{}
	}
	return &Service{repo: repo, clock: clock, timeout: timeout, log: log}
}

func (s *Service) ListForRole(ctx context.Context, role domain.Role, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.repo.ListForRole(ctx, role, limit, s.clock.Now())
	if err != nil {
		return nil, repository.Classify(err)
	}
	return list, nil
}

func (s *Service) UnreadCount(ctx context.Context, role domain.Role, userID *int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.repo.CountUnread(ctx, role, userID, s.clock.Now())
	if err != nil {
		return 0, repository.Classify(err)
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, repository.Classify(err)
	}
	return n, nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return repository.Classify(s.repo.MarkRead(ctx, id, s.clock.Now().UTC()))
}

func (s *Service) MarkAllRead(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.repo.MarkAllRead(ctx, role, s.clock.Now().UTC())
	if err != nil {
		return 0, repository.Classify(err)
	}
	return n, nil
}

// Deactivate hides a notification from every listing.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return repository.Classify(s.repo.Deactivate(ctx, id))
}
