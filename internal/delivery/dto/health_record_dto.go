package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HealthRecordRequest is the full form snapshot. Blank text and missing
// numbers are stored as NULL. Height is in cm and weight in kg.
type HealthRecordRequest struct {
	Age                *int             `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender             string           `json:"gender" validate:"omitempty,max=20"`
	BloodGroup         string           `json:"blood_group" validate:"omitempty,max=5"`
	Height             *decimal.Decimal `json:"height" validate:"omitempty,gt=0,lte=300"`
	Weight             *decimal.Decimal `json:"weight" validate:"omitempty,gt=0,lte=500"`
	ChronicConditions  string           `json:"chronic_conditions" validate:"omitempty,max=5000"`
	Allergies          string           `json:"allergies" validate:"omitempty,max=5000"`
	CurrentMedications string           `json:"current_medications" validate:"omitempty,max=5000"`
	PreviousSurgeries  string           `json:"previous_surgeries" validate:"omitempty,max=5000"`
	FamilyHistory      string           `json:"family_history" validate:"omitempty,max=5000"`
	LifestyleNotes     string           `json:"lifestyle_notes" validate:"omitempty,max=5000"`
}

type HealthRecordResponse struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	Age                *int             `json:"age"`
	Gender             *string          `json:"gender"`
	BloodGroup         *string          `json:"blood_group"`
	Height             *decimal.Decimal `json:"height"`
	Weight             *decimal.Decimal `json:"weight"`
	ChronicConditions  *string          `json:"chronic_conditions"`
	Allergies          *string          `json:"allergies"`
	CurrentMedications *string          `json:"current_medications"`
	PreviousSurgeries  *string          `json:"previous_surgeries"`
	FamilyHistory      *string          `json:"family_history"`
	LifestyleNotes     *string          `json:"lifestyle_notes"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}
