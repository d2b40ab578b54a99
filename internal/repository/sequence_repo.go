package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelcore/internal/domain"
)

const RoomStateSequence = "room_state"

type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next increments the named counter and returns the new value. Inside a
// transaction the row stays locked until commit, so values are handed out in
// commit order.
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := r.db.WithContext(ctx)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Sequence{Name: name}).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&domain.Sequence{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}

	var seq domain.Sequence
	if err := db.Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
