package usecase

import (
	"context"
	"testing"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationPreference(t *testing.T) {
	uc := NewLocationUsecase(quietLogger(), cache.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	loc, err := uc.GetLocation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultLocation(), loc)

	_, err = uc.SaveLocation(ctx, userID, &dto.LocationRequest{State: "  ", District: "Kochi"})
	assert.ErrorIs(t, err, ErrInvalidLocation)

	saved, err := uc.SaveLocation(ctx, userID, &dto.LocationRequest{State: " Kerala ", District: "Kochi"})
	require.NoError(t, err)
	assert.Equal(t, entity.Location{State: "Kerala", District: "Kochi"}, saved)

	loc, err = uc.GetLocation(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, saved, loc)
}

func TestLocationResolve(t *testing.T) {
	uc := NewLocationUsecase(quietLogger(), cache.NewMemoryStore())
	ctx := context.Background()
	userID := uuid.New()

	assert.Equal(t, entity.DefaultLocation(), uc.Resolve(ctx, nil, "", ""))

	_, err := uc.SaveLocation(ctx, userID, &dto.LocationRequest{State: "Punjab", District: "Ludhiana"})
	require.NoError(t, err)

	assert.Equal(t, entity.Location{State: "Punjab", District: "Ludhiana"}, uc.Resolve(ctx, &userID, "", ""))
	assert.Equal(t, entity.Location{State: "Kerala", District: "Ludhiana"}, uc.Resolve(ctx, &userID, "Kerala", ""))
	assert.Equal(t, entity.Location{State: "Kerala", District: "Kochi"}, uc.Resolve(ctx, nil, "Kerala", "Kochi"))
}
