package repository

import (
	"context"

	"swasth-sathi/internal/domain/entity"
	domainRepo "swasth-sathi/internal/domain/repository"

	"gorm.io/gorm"
)

type diseaseRepository struct{}

func NewDiseaseRepository() domainRepo.DiseaseRepository {
	return &diseaseRepository{}
}

func (r *diseaseRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Disease, error) {
	var diseases []entity.Disease
	err := db.WithContext(ctx).Order("severity DESC").Find(&diseases).Error
	if err != nil {
		return nil, err
	}
	return diseases, nil
}

type vaccinationRepository struct{}

func NewVaccinationRepository() domainRepo.VaccinationRepository {
	return &vaccinationRepository{}
}

func (r *vaccinationRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Vaccination, error) {
	var vaccinations []entity.Vaccination
	err := db.WithContext(ctx).Order("age_group ASC").Find(&vaccinations).Error
	if err != nil {
		return nil, err
	}
	return vaccinations, nil
}

type healthAlertRepository struct{}

func NewHealthAlertRepository() domainRepo.HealthAlertRepository {
	return &healthAlertRepository{}
}

func (r *healthAlertRepository) FindActive(ctx context.Context, db *gorm.DB) ([]entity.HealthAlert, error) {
	var alerts []entity.HealthAlert
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("severity DESC").
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
