package dto

import (
	"time"

	"github.com/google/uuid"
)

type DiseaseResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Severity   string    `json:"severity"`
	Symptoms   string    `json:"symptoms"`
	Prevention string    `json:"prevention"`
	Treatment  *string   `json:"treatment,omitempty"`
}

type VaccinationResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	AgeGroup    string    `json:"age_group"`
	Schedule    string    `json:"schedule"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

type AlertResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Location    *string   `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type AlertListResponse struct {
	State    string          `json:"state"`
	District string          `json:"district"`
	Alerts   []AlertResponse `json:"alerts"`
	Total    int             `json:"total"`
}
