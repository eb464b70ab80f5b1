package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrInvalidLocation = errors.New("state and district are required")

// LocationUsecase keeps each user's alert location. Preferences have no
// expiry and fall back to the default location.
type LocationUsecase interface {
	GetLocation(ctx context.Context, userID uuid.UUID) (entity.Location, error)
	SaveLocation(ctx context.Context, userID uuid.UUID, req *dto.LocationRequest) (entity.Location, error)
	// Resolve picks the location for an alert query: explicit values first,
	// then the caller's saved preference, then the default.
	Resolve(ctx context.Context, userID *uuid.UUID, state, district string) entity.Location
}

type locationUsecase struct {
	log   *logrus.Logger
	store cache.Store
}

func NewLocationUsecase(log *logrus.Logger, store cache.Store) LocationUsecase {
	return &locationUsecase{
		log:   log,
		store: store,
	}
}

func (u *locationUsecase) GetLocation(ctx context.Context, userID uuid.UUID) (entity.Location, error) {
	raw, err := u.store.Get(ctx, locationKey(userID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return entity.DefaultLocation(), nil
	}
	if err != nil {
		u.log.Warnf("Failed to read location preference: %+v", err)
		return entity.Location{}, err
	}

	var loc entity.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil || loc.State == "" || loc.District == "" {
		u.log.Warnf("Discarding malformed location preference for %s", userID)
		return entity.DefaultLocation(), nil
	}
	return loc, nil
}

func (u *locationUsecase) SaveLocation(ctx context.Context, userID uuid.UUID, req *dto.LocationRequest) (entity.Location, error) {
	loc := entity.Location{
		State:    strings.TrimSpace(req.State),
		District: strings.TrimSpace(req.District),
	}
	if loc.State == "" || loc.District == "" {
		return entity.Location{}, ErrInvalidLocation
	}

	raw, err := json.Marshal(loc)
	if err != nil {
		return entity.Location{}, err
	}
	if err := u.store.Set(ctx, locationKey(userID), string(raw), 0); err != nil {
		u.log.Warnf("Failed to save location preference: %+v", err)
		return entity.Location{}, err
	}
	return loc, nil
}

func (u *locationUsecase) Resolve(ctx context.Context, userID *uuid.UUID, state, district string) entity.Location {
	loc := entity.DefaultLocation()
	if userID != nil {
		if saved, err := u.GetLocation(ctx, *userID); err == nil {
			loc = saved
		}
	}
	if s := strings.TrimSpace(state); s != "" {
		loc.State = s
	}
	if d := strings.TrimSpace(district); d != "" {
		loc.District = d
	}
	return loc
}

func locationKey(userID uuid.UUID) string {
	return fmt.Sprintf("location:%s", userID)
}
