package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HealthRecord is the single health profile owned by a user.
// All descriptive fields are optional and stored as NULL when blank.
type HealthRecord struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID           `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Age                *int                `json:"age,omitempty"`
	Gender             *string             `gorm:"type:varchar(20)" json:"gender,omitempty"`
	BloodGroup         *string             `gorm:"type:varchar(5)" json:"blood_group,omitempty"`
	Height             decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"height"`
	Weight             decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"weight"`
	ChronicConditions  *string             `gorm:"type:text" json:"chronic_conditions,omitempty"`
	Allergies          *string             `gorm:"type:text" json:"allergies,omitempty"`
	CurrentMedications *string             `gorm:"type:text" json:"current_medications,omitempty"`
	PreviousSurgeries  *string             `gorm:"type:text" json:"previous_surgeries,omitempty"`
	FamilyHistory      *string             `gorm:"type:text" json:"family_history,omitempty"`
	LifestyleNotes     *string             `gorm:"type:text" json:"lifestyle_notes,omitempty"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (HealthRecord) TableName() string {
	return "health_records"
}

func (r *HealthRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

