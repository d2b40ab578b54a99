package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelcore/internal/domain"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateIfAbsent inserts n unless a notification for the same event and role
// already exists. It reports whether a row was written.
func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "recipient_role"}},
			DoNothing: true,
		}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, notFound(err, "notification", id)
	}
	return &n, nil
}

func (r *NotificationRepository) visible(ctx context.Context, role domain.Role, now time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_role = ? AND is_active = ?", role, true).
		Where("expires_at IS NULL OR expires_at > ?", now)
}

// ListForRole returns the newest active notifications for role.
func (r *NotificationRepository) ListForRole(ctx context.Context, role domain.Role, limit int, now time.Time) ([]domain.Notification, error) {
	var out []domain.Notification
	err := r.visible(ctx, role, now).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountUnread counts unread notifications for role. With a userID it counts
// the role-wide ones plus those addressed to that user.
func (r *NotificationRepository) CountUnread(ctx context.Context, role domain.Role, userID *int64, now time.Time) (int64, error) {
	q := r.visible(ctx, role, now).Where("is_read = ?", false)
	if userID != nil {
		q = q.Where("recipient_id IS NULL OR recipient_id = ?", *userID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "read_at": gorm.Expr("COALESCE(read_at, ?)", at)})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "notification", id)
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, role domain.Role, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("recipient_role = ? AND is_read = ? AND is_active = ?", role, false, true).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

// Deactivate soft-deletes a notification.
func (r *NotificationRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "notification", id)
	}
	return nil
}

// DeleteExpired hard-deletes notifications past their expiry.
func (r *NotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}
