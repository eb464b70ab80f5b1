package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swasth-sathi/internal/converter"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/domain/repository"
	"swasth-sathi/internal/infrastructure/cache"
	"swasth-sathi/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrHealthRecordNotFound = errors.New("health record not found")
	ErrHealthRecordExists   = errors.New("health record already exists")
)

const healthContextTTL = 10 * time.Minute

type HealthRecordUsecase interface {
	GetHealthRecord(ctx context.Context, userID uuid.UUID) (*dto.HealthRecordResponse, error)
	CreateHealthRecord(ctx context.Context, userID uuid.UUID, req *dto.HealthRecordRequest) (*dto.HealthRecordResponse, error)
	UpdateHealthRecord(ctx context.Context, userID uuid.UUID, req *dto.HealthRecordRequest) (*dto.HealthRecordResponse, error)
	// HealthContext summarises the stored profile for chat personalization.
	// It returns "" when the user has no profile.
	HealthContext(ctx context.Context, userID uuid.UUID) (string, error)
	// OnSessionEvent drops the cached summary when the user signs out.
	OnSessionEvent(ctx context.Context, event entity.SessionEvent, session *entity.Session)
}

type healthRecordUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	healthRecordRepo repository.HealthRecordRepository
	auditService     service.AuditService
	store            cache.Store
}

func NewHealthRecordUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	healthRecordRepo repository.HealthRecordRepository,
	auditService service.AuditService,
	store cache.Store,
) HealthRecordUsecase {
	return &healthRecordUsecase{
		db:               db,
		log:              log,
		healthRecordRepo: healthRecordRepo,
		auditService:     auditService,
		store:            store,
	}
}

func (u *healthRecordUsecase) GetHealthRecord(ctx context.Context, userID uuid.UUID) (*dto.HealthRecordResponse, error) {
	record, err := u.healthRecordRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find health record: %+v", err)
		return nil, err
	}
	if record == nil {
		return nil, ErrHealthRecordNotFound
	}

	return converter.HealthRecordToResponse(record), nil
}

func (u *healthRecordUsecase) CreateHealthRecord(ctx context.Context, userID uuid.UUID, req *dto.HealthRecordRequest) (*dto.HealthRecordResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.healthRecordRepo.FindByUserID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find health record: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrHealthRecordExists
	}

	record := &entity.HealthRecord{UserID: userID}
	converter.ApplyHealthRecordRequest(record, req)

	if err := u.healthRecordRepo.Create(ctx, tx, record); err != nil {
		if isDuplicateKeyError(err, "user_id") {
			return nil, ErrHealthRecordExists
		}
		u.log.Warnf("Failed to create health record: %+v", err)
		return nil, err
	}

	res := converter.HealthRecordToResponse(record)
	if err := u.auditService.LogCreate(ctx, tx, &userID, entity.AuditActionHealthRecordCreate, "health_record", record.ID.String(), res); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.forgetHealthContext(ctx, userID)
	return res, nil
}

// UpdateHealthRecord replaces the stored profile with the snapshot in req.
// Concurrent updates are last-write-wins.
func (u *healthRecordUsecase) UpdateHealthRecord(ctx context.Context, userID uuid.UUID, req *dto.HealthRecordRequest) (*dto.HealthRecordResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	record, err := u.healthRecordRepo.FindByUserID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find health record: %+v", err)
		return nil, err
	}
	if record == nil {
		return nil, ErrHealthRecordNotFound
	}

	oldValue := converter.HealthRecordToResponse(record)
	converter.ApplyHealthRecordRequest(record, req)

	if err := u.healthRecordRepo.Update(ctx, tx, record); err != nil {
		u.log.Warnf("Failed to update health record: %+v", err)
		return nil, err
	}

	res := converter.HealthRecordToResponse(record)
	if err := u.auditService.LogUpdate(ctx, tx, &userID, entity.AuditActionHealthRecordUpdate, "health_record", record.ID.String(), oldValue, res); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.forgetHealthContext(ctx, userID)
	return res, nil
}

func (u *healthRecordUsecase) HealthContext(ctx context.Context, userID uuid.UUID) (string, error) {
	key := healthContextKey(userID)
	if cached, err := u.store.Get(ctx, key); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		u.log.Warnf("Failed to read health context from cache: %+v", err)
	}

	record, err := u.healthRecordRepo.FindByUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find health record: %+v", err)
		return "", err
	}

	summary := SummarizeHealthRecord(record)
	if err := u.store.Set(ctx, key, summary, healthContextTTL); err != nil {
		u.log.Warnf("Failed to cache health context: %+v", err)
	}
	return summary, nil
}

func (u *healthRecordUsecase) OnSessionEvent(ctx context.Context, event entity.SessionEvent, session *entity.Session) {
	if session == nil {
		return
	}
	if event == entity.SessionSignedOut || event == entity.SessionPasswordReset {
		u.forgetHealthContext(ctx, session.UserID)
	}
}

func (u *healthRecordUsecase) forgetHealthContext(ctx context.Context, userID uuid.UUID) {
	if err := u.store.Delete(ctx, healthContextKey(userID)); err != nil {
		u.log.Warnf("Failed to drop cached health context: %+v", err)
	}
}

func healthContextKey(userID uuid.UUID) string {
	return fmt.Sprintf("health_context:%s", userID)
}

// SummarizeHealthRecord renders the non-empty profile fields as one line
// of plain text. A nil or empty record yields "".
func SummarizeHealthRecord(record *entity.HealthRecord) string {
	if record == nil {
		return ""
	}

	var parts []string
	add := func(label string, value *string) {
		if value != nil && strings.TrimSpace(*value) != "" {
			parts = append(parts, label+": "+strings.TrimSpace(*value))
		}
	}

	if record.Age != nil {
		parts = append(parts, fmt.Sprintf("Age: %d", *record.Age))
	}
	add("Gender", record.Gender)
	add("Blood group", record.BloodGroup)
	if record.Height.Valid {
		parts = append(parts, "Height: "+record.Height.Decimal.String()+" cm")
	}
	if record.Weight.Valid {
		parts = append(parts, "Weight: "+record.Weight.Decimal.String()+" kg")
	}
	add("Chronic conditions", record.ChronicConditions)
	add("Allergies", record.Allergies)
	add("Current medications", record.CurrentMedications)
	add("Previous surgeries", record.PreviousSurgeries)
	add("Family history", record.FamilyHistory)
	add("Lifestyle", record.LifestyleNotes)

	if len(parts) == 0 {
		return ""
	}
	return "User health profile - " + strings.Join(parts, "; ")
}
