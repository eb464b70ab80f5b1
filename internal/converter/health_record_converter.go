package converter

import (
	"strings"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// HealthRecordToResponse converts a HealthRecord entity to HealthRecordResponse DTO
func HealthRecordToResponse(record *entity.HealthRecord) *dto.HealthRecordResponse {
	if record == nil {
		return nil
	}

	return &dto.HealthRecordResponse{
		ID:                 record.ID,
		UserID:             record.UserID,
		Age:                record.Age,
		Gender:             record.Gender,
		BloodGroup:         record.BloodGroup,
		Height:             fromNullDecimal(record.Height),
		Weight:             fromNullDecimal(record.Weight),
		ChronicConditions:  record.ChronicConditions,
		Allergies:          record.Allergies,
		CurrentMedications: record.CurrentMedications,
		PreviousSurgeries:  record.PreviousSurgeries,
		FamilyHistory:      record.FamilyHistory,
		LifestyleNotes:     record.LifestyleNotes,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
}

// ApplyHealthRecordRequest copies the form snapshot onto record.
// Blank strings and zero or missing numbers become NULL.
func ApplyHealthRecordRequest(record *entity.HealthRecord, req *dto.HealthRecordRequest) {
	record.Age = nil
	if req.Age != nil && *req.Age > 0 {
		age := *req.Age
		record.Age = &age
	}
	record.Gender = nullString(req.Gender)
	record.BloodGroup = nullString(req.BloodGroup)
	record.Height = toNullDecimal(req.Height)
	record.Weight = toNullDecimal(req.Weight)
	record.ChronicConditions = nullString(req.ChronicConditions)
	record.Allergies = nullString(req.Allergies)
	record.CurrentMedications = nullString(req.CurrentMedications)
	record.PreviousSurgeries = nullString(req.PreviousSurgeries)
	record.FamilyHistory = nullString(req.FamilyHistory)
	record.LifestyleNotes = nullString(req.LifestyleNotes)
}

func nullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil || d.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func fromNullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
