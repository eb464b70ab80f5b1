package entity

import (
	"time"

	"github.com/google/uuid"
)

// Disease, Vaccination and HealthAlert are reference data maintained
// outside this service. The application only reads them.

type Disease struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Severity   string    `gorm:"type:varchar(20);not null;index" json:"severity"`
	Symptoms   string    `gorm:"type:text" json:"symptoms"`
	Prevention string    `gorm:"type:text" json:"prevention"`
	Treatment  *string   `gorm:"type:text" json:"treatment,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Disease) TableName() string {
	return "diseases"
}

type Vaccination struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	AgeGroup    string    `gorm:"type:varchar(100);not null;index" json:"age_group"`
	Schedule    string    `gorm:"type:text" json:"schedule"`
	Description string    `gorm:"type:text" json:"description"`
	Required    bool      `gorm:"not null;default:false" json:"required"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Vaccination) TableName() string {
	return "vaccinations"
}

type HealthAlert struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Severity    string    `gorm:"type:varchar(20);not null;index" json:"severity"`
	Location    *string   `gorm:"type:varchar(255)" json:"location,omitempty"`
	Active      bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (HealthAlert) TableName() string {
	return "health_alerts"
}

// Disease severities
const (
	DiseaseSeverityCritical = "critical"
	DiseaseSeverityHigh     = "high"
	DiseaseSeverityMedium   = "medium"
	DiseaseSeverityLow      = "low"
)

// Alert severities
const (
	AlertSeverityCritical = "critical"
	AlertSeverityUrgent   = "urgent"
	AlertSeverityWarning  = "warning"
	AlertSeverityInfo     = "info"
)
