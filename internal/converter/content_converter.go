package converter

import (
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
)

func DiseasesToResponses(diseases []entity.Disease) []dto.DiseaseResponse {
	responses := make([]dto.DiseaseResponse, len(diseases))
	for i, d := range diseases {
		responses[i] = dto.DiseaseResponse{
			ID:         d.ID,
			Name:       d.Name,
			Severity:   d.Severity,
			Symptoms:   d.Symptoms,
			Prevention: d.Prevention,
			Treatment:  d.Treatment,
		}
	}
	return responses
}

func VaccinationsToResponses(vaccinations []entity.Vaccination) []dto.VaccinationResponse {
	responses := make([]dto.VaccinationResponse, len(vaccinations))
	for i, v := range vaccinations {
		responses[i] = dto.VaccinationResponse{
			ID:          v.ID,
			Name:        v.Name,
			AgeGroup:    v.AgeGroup,
			Schedule:    v.Schedule,
			Description: v.Description,
			Required:    v.Required,
		}
	}
	return responses
}

func AlertsToResponses(alerts []entity.HealthAlert) []dto.AlertResponse {
	responses := make([]dto.AlertResponse, len(alerts))
	for i, a := range alerts {
		responses[i] = dto.AlertResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Severity:    a.Severity,
			Location:    a.Location,
			CreatedAt:   a.CreatedAt,
		}
	}
	return responses
}
