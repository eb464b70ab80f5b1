package handler

import (
	"errors"
	"net/http"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/delivery/http/middleware"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/usecase"
	"swasth-sathi/pkg/response"
	"swasth-sathi/pkg/validator"
)

type LocationHandler struct {
	locationUsecase usecase.LocationUsecase
	validator       *validator.CustomValidator
}

func NewLocationHandler(locationUsecase usecase.LocationUsecase, validator *validator.CustomValidator) *LocationHandler {
	return &LocationHandler{
		locationUsecase: locationUsecase,
		validator:       validator,
	}
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	loc, err := h.locationUsecase.GetLocation(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get location")
		return
	}

	response.Success(w, http.StatusOK, "Location retrieved successfully", dto.LocationResponse{
		State:    loc.State,
		District: loc.District,
		States:   entity.IndianStates,
	})
}

func (h *LocationHandler) SaveLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.LocationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	loc, err := h.locationUsecase.SaveLocation(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidLocation) {
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		response.InternalServerError(w, "Failed to save location")
		return
	}

	response.Success(w, http.StatusOK, "Location saved successfully", dto.LocationResponse{
		State:    loc.State,
		District: loc.District,
	})
}
