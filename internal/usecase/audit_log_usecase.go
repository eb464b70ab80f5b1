package usecase

import (
	"context"

	"swasth-sathi/internal/converter"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultActivityLimit = 50

// AuditLogUsecase exposes a user's own account activity (sign-ins,
// password changes, profile edits).
type AuditLogUsecase interface {
	GetUserActivity(ctx context.Context, userID uuid.UUID, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetUserActivity(ctx context.Context, userID uuid.UUID, limit int) (*dto.AuditLogListResponse, error) {
	if limit <= 0 || limit > defaultActivityLimit {
		limit = defaultActivityLimit
	}

	logs, err := u.auditLogRepo.FindByUserID(ctx, u.db, userID, limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	logResponses := converter.AuditLogsToResponses(logs)

	return &dto.AuditLogListResponse{
		Logs:  logResponses,
		Total: len(logResponses),
	}, nil
}
