package domain

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationUrgent  NotificationType = "urgent"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

type NotificationCategory string

const (
	CategoryBooking      NotificationCategory = "booking"
	CategoryRoom         NotificationCategory = "room"
	CategoryHousekeeping NotificationCategory = "housekeeping"
	CategoryMaintenance  NotificationCategory = "maintenance"
)

// Notification is immutable once stored, apart from the read flag and the
// soft-delete flag. RelatedEntity is a soft reference: the entity may be gone.
type Notification struct {
	ID                int64                `json:"id" gorm:"primaryKey"`
	EventID           string               `json:"event_id" gorm:"size:36;uniqueIndex:idx_notifications_event_role,priority:1;not null"`
	Title             string               `json:"title" gorm:"size:255;not null"`
	Message           string               `json:"message" gorm:"type:text"`
	Type              NotificationType     `json:"type" gorm:"size:16;not null"`
	Category          NotificationCategory `json:"category" gorm:"size:32;not null"`
	RecipientRole     Role                 `json:"recipient_role" gorm:"size:32;uniqueIndex:idx_notifications_event_role,priority:2;index:idx_notifications_role_read,priority:1;not null"`
	RecipientID       *int64               `json:"recipient_id,omitempty"`
	RelatedEntityType string               `json:"related_entity_type" gorm:"size:32"`
	RelatedEntityID   int64                `json:"related_entity_id"`
	IsRead            bool                 `json:"is_read" gorm:"index:idx_notifications_role_read,priority:2;not null;default:false"`
	ReadAt            *time.Time           `json:"read_at,omitempty"`
	Priority          NotificationPriority `json:"priority" gorm:"size:16;not null"`
	Metadata          map[string]any       `json:"metadata,omitempty" gorm:"serializer:json;type:text"`
	IsActive          bool                 `json:"is_active" gorm:"not null;default:true"`
	CreatedAt         time.Time            `json:"created_at" gorm:"index"`
	ExpiresAt         *time.Time           `json:"expires_at,omitempty" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) Expired(now time.Time) bool {
	return n.ExpiresAt != nil && !now.Before(*n.ExpiresAt)
}
