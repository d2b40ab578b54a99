package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hotelcore/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, notFound(err, "room", id)
	}
	return &room, nil
}

func (r *RoomRepository) List(ctx context.Context, activeOnly bool) ([]domain.Room, error) {
	var rooms []domain.Room
	q := r.db.WithContext(ctx).Order("room_number ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpdatePrice changes the nightly rate. Existing bookings keep the amount
// they were priced at.
func (r *RoomRepository) UpdatePrice(ctx context.Context, id int64, price float64) error {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ?", id).
		Updates(map[string]any{"price_per_night": price, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "room", id)
	}
	return nil
}

// RoomStatusUpdate is one synchronizer decision for a room.
type RoomStatusUpdate struct {
	RoomID              int64
	Status              domain.RoomStatus
	Seq                 int64
	LastMaintenanceDate *time.Time
}

// ApplyStatus writes the status only when u.Seq is newer than the sequence
// already stored for the room. It reports whether the row changed.
func (r *RoomRepository) ApplyStatus(ctx context.Context, u RoomStatusUpdate) (bool, error) {
	fields := map[string]any{
		"status":     u.Status,
		"status_seq": u.Seq,
		"updated_at": time.Now(),
	}
	if u.LastMaintenanceDate != nil {
		fields["last_maintenance_date"] = *u.LastMaintenanceDate
	}

	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND status_seq < ?", u.RoomID, u.Seq).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
