package usecase

import (
	"context"

	"swasth-sathi/internal/converter"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/service"

	"github.com/sirupsen/logrus"
)

type ContentUsecase interface {
	ListDiseases(ctx context.Context) ([]dto.DiseaseResponse, error)
	ListVaccinations(ctx context.Context) ([]dto.VaccinationResponse, error)
	ListAlerts(ctx context.Context, loc entity.Location) (*dto.AlertListResponse, error)
}

type contentUsecase struct {
	log     *logrus.Logger
	content *service.ContentSyncService
}

func NewContentUsecase(log *logrus.Logger, content *service.ContentSyncService) ContentUsecase {
	return &contentUsecase{
		log:     log,
		content: content,
	}
}

func (u *contentUsecase) ListDiseases(ctx context.Context) ([]dto.DiseaseResponse, error) {
	diseases, err := u.content.Diseases(ctx)
	if err != nil {
		u.log.Warnf("Failed to find diseases: %+v", err)
		return nil, err
	}
	return converter.DiseasesToResponses(diseases), nil
}

func (u *contentUsecase) ListVaccinations(ctx context.Context) ([]dto.VaccinationResponse, error) {
	vaccinations, err := u.content.Vaccinations(ctx)
	if err != nil {
		u.log.Warnf("Failed to find vaccinations: %+v", err)
		return nil, err
	}
	return converter.VaccinationsToResponses(vaccinations), nil
}

// ListAlerts returns the active alerts visible from loc, keeping the
// severity and recency order of the source.
func (u *contentUsecase) ListAlerts(ctx context.Context, loc entity.Location) (*dto.AlertListResponse, error) {
	alerts, err := u.content.ActiveAlerts(ctx)
	if err != nil {
		u.log.Warnf("Failed to find active alerts: %+v", err)
		return nil, err
	}

	visible := entity.FilterAlerts(alerts, loc)
	return &dto.AlertListResponse{
		State:    loc.State,
		District: loc.District,
		Alerts:   converter.AlertsToResponses(visible),
		Total:    len(visible),
	}, nil
}
