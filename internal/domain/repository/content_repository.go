package repository

import (
	"context"

	"swasth-sathi/internal/domain/entity"

	"gorm.io/gorm"
)

type DiseaseRepository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Disease, error)
}

type VaccinationRepository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Vaccination, error)
}

type HealthAlertRepository interface {
	FindActive(ctx context.Context, db *gorm.DB) ([]entity.HealthAlert, error)
}
