package notification

import (
	"fmt"
	"time"

	"hotelcore/internal/domain"
)

type template struct {
	title    string
	message  func(p domain.EventPayload) string
	typ      domain.NotificationType
	priority domain.NotificationPriority
	category domain.NotificationCategory
}

type route struct {
	roles []domain.Role
	tmpl  template
	// byRole overrides tmpl for a single recipient.
	byRole map[domain.Role]template
}

var routes = map[domain.EventType]route{
	domain.EventBookingCreated: {
		roles: []domain.Role{domain.RoleReceptionist, domain.RoleManager},
		tmpl: template{
			title: "New booking",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("Booking %s for %s in room %s, %s to %s (%d guests)",
					p.BookingNumber, guestName(p), p.RoomNumber, p.CheckInDate, p.CheckOutDate, p.NumberOfGuests)
			},
			typ:      domain.NotificationInfo,
			priority: domain.PriorityMedium,
			category: domain.CategoryBooking,
		},
	},
	domain.EventBookingConfirmed: {
		roles: []domain.Role{domain.RoleReceptionist},
		tmpl: template{
			title: "Booking confirmed",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("Booking %s for room %s is confirmed", p.BookingNumber, p.RoomNumber)
			},
			typ:      domain.NotificationSuccess,
			priority: domain.PriorityMedium,
			category: domain.CategoryBooking,
		},
	},
	domain.EventBookingCancelled: {
		roles: []domain.Role{domain.RoleReceptionist, domain.RoleManager},
		tmpl: template{
			title: "Booking cancelled",
			message: func(p domain.EventPayload) string {
				msg := fmt.Sprintf("Booking %s for room %s (%s to %s) was cancelled",
					p.BookingNumber, p.RoomNumber, p.CheckInDate, p.CheckOutDate)
				if p.Reason != "" {
					msg += ". Reason: " + p.Reason
				}
				return msg
			},
			typ:      domain.NotificationWarning,
			priority: domain.PriorityHigh,
			category: domain.CategoryBooking,
		},
	},
	domain.EventBookingCheckedIn: {
		roles: []domain.Role{domain.RoleReceptionist, domain.RoleManager},
		tmpl: template{
			title: "Guest checked in",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("%s checked in to room %s", guestName(p), p.RoomNumber)
			},
			typ:      domain.NotificationInfo,
			priority: domain.PriorityMedium,
			category: domain.CategoryBooking,
		},
	},
	domain.EventBookingCheckedOut: {
		roles: []domain.Role{domain.RoleHousekeeping, domain.RoleReceptionist},
		tmpl: template{
			title: "Guest checked out",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("%s checked out of room %s", guestName(p), p.RoomNumber)
			},
			typ:      domain.NotificationInfo,
			priority: domain.PriorityMedium,
			category: domain.CategoryBooking,
		},
		byRole: map[domain.Role]template{
			domain.RoleHousekeeping: {
				title: "Room needs cleaning",
				message: func(p domain.EventPayload) string {
					return fmt.Sprintf("Room %s was vacated and is %s", p.RoomNumber, p.RoomStatus)
				},
				typ:      domain.NotificationWarning,
				priority: domain.PriorityHigh,
				category: domain.CategoryHousekeeping,
			},
		},
	},
	domain.EventBookingNoShow: {
		roles: []domain.Role{domain.RoleReceptionist, domain.RoleManager},
		tmpl: template{
			title: "Guest did not arrive",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("Booking %s for room %s was marked as no-show", p.BookingNumber, p.RoomNumber)
			},
			typ:      domain.NotificationWarning,
			priority: domain.PriorityMedium,
			category: domain.CategoryBooking,
		},
	},
	domain.EventRoomNeedsMaintenance: {
		roles: []domain.Role{domain.RoleMaintenance, domain.RoleManager},
		tmpl: template{
			title: "Room needs maintenance",
			message: func(p domain.EventPayload) string {
				msg := fmt.Sprintf("Room %s is now %s", p.RoomNumber, p.RoomStatus)
				if p.Issue != "" {
					msg += ": " + p.Issue
				}
				return msg
			},
			typ:      domain.NotificationUrgent,
			priority: domain.PriorityHigh,
			category: domain.CategoryMaintenance,
		},
	},
	domain.EventRoomCleaned: {
		roles: []domain.Role{domain.RoleReceptionist},
		tmpl: template{
			title: "Room cleaned",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("Room %s is cleaned and now %s", p.RoomNumber, p.RoomStatus)
			},
			typ:      domain.NotificationSuccess,
			priority: domain.PriorityLow,
			category: domain.CategoryHousekeeping,
		},
	},
	domain.EventRoomMaintenanceCompleted: {
		roles: []domain.Role{domain.RoleReceptionist, domain.RoleManager},
		tmpl: template{
			title: "Maintenance completed",
			message: func(p domain.EventPayload) string {
				return fmt.Sprintf("Maintenance on room %s is done, room is %s", p.RoomNumber, p.RoomStatus)
			},
			typ:      domain.NotificationSuccess,
			priority: domain.PriorityMedium,
			category: domain.CategoryMaintenance,
		},
	},
}

// Recipients returns the roles notified about t, nil for unrouted events.
func Recipients(t domain.EventType) []domain.Role {
	return routes[t].roles
}

// Render builds the notification role receives for ev. It does no I/O and
// depends only on its arguments.
func Render(ev domain.Event, role domain.Role, ttl time.Duration) (domain.Notification, bool) {
	r, ok := routes[ev.Type]
	if !ok {
		return domain.Notification{}, false
	}
	tmpl := r.tmpl
	if o, ok := r.byRole[role]; ok {
		tmpl = o
	}

	p := ev.Payload
	n := domain.Notification{
		EventID:       ev.ID,
		Title:         tmpl.title,
		Message:       tmpl.message(p),
		Type:          tmpl.typ,
		Category:      tmpl.category,
		RecipientRole: role,
		Priority:      tmpl.priority,
		Metadata:      metadata(ev),
		IsActive:      true,
		CreatedAt:     ev.CreatedAt,
	}
	if p.OutOfOrder && ev.Type == domain.EventRoomNeedsMaintenance {
		n.Priority = domain.PriorityUrgent
	}

	switch ev.AggregateType {
	case domain.AggregateBooking:
		n.RelatedEntityType = domain.AggregateBooking
		n.RelatedEntityID = p.BookingID
	default:
		n.RelatedEntityType = domain.AggregateRoom
		n.RelatedEntityID = p.RoomID
	}

	if ttl > 0 {
		exp := ev.CreatedAt.Add(ttl)
		n.ExpiresAt = &exp
	}
	return n, true
}

func metadata(ev domain.Event) map[string]any {
	p := ev.Payload
	m := map[string]any{
		"event_type":  string(ev.Type),
		"room_id":     p.RoomID,
		"room_number": p.RoomNumber,
	}
	if p.RoomStatus != "" {
		m["room_status"] = string(p.RoomStatus)
	}
	if p.BookingID != 0 {
		m["booking_id"] = p.BookingID
		m["booking_number"] = p.BookingNumber
		m["guest_id"] = p.GuestID
		m["check_in_date"] = p.CheckInDate
		m["check_out_date"] = p.CheckOutDate
	}
	if p.TaskID != "" {
		m["task_id"] = p.TaskID
	}
	return m
}

func guestName(p domain.EventPayload) string {
	if p.GuestName != "" {
		return p.GuestName
	}
	return fmt.Sprintf("guest #%d", p.GuestID)
}
