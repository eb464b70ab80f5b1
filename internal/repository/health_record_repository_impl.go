package repository

import (
	"context"
	"errors"

	"swasth-sathi/internal/domain/entity"
	domainRepo "swasth-sathi/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type healthRecordRepository struct{}

func NewHealthRecordRepository() domainRepo.HealthRecordRepository {
	return &healthRecordRepository{}
}

func (r *healthRecordRepository) Create(ctx context.Context, db *gorm.DB, record *entity.HealthRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *healthRecordRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.HealthRecord, error) {
	var record entity.HealthRecord
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Update writes every column, so NULLs in the snapshot overwrite stored values.
func (r *healthRecordRepository) Update(ctx context.Context, db *gorm.DB, record *entity.HealthRecord) error {
	return db.WithContext(ctx).Save(record).Error
}
