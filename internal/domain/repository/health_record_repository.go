package repository

import (
	"context"

	"swasth-sathi/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HealthRecordRepository interface {
	Create(ctx context.Context, db *gorm.DB, record *entity.HealthRecord) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.HealthRecord, error)
	Update(ctx context.Context, db *gorm.DB, record *entity.HealthRecord) error
}
