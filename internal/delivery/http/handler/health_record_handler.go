package handler

import (
	"errors"
	"net/http"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/delivery/http/middleware"
	"swasth-sathi/internal/usecase"
	"swasth-sathi/pkg/response"
	"swasth-sathi/pkg/validator"
)

type HealthRecordHandler struct {
	healthRecordUsecase usecase.HealthRecordUsecase
	validator           *validator.CustomValidator
}

func NewHealthRecordHandler(healthRecordUsecase usecase.HealthRecordUsecase, validator *validator.CustomValidator) *HealthRecordHandler {
	return &HealthRecordHandler{
		healthRecordUsecase: healthRecordUsecase,
		validator:           validator,
	}
}

func (h *HealthRecordHandler) GetHealthRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	record, err := h.healthRecordUsecase.GetHealthRecord(r.Context(), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get health record")
		return
	}

	response.Success(w, http.StatusOK, "Health record retrieved successfully", record)
}

func (h *HealthRecordHandler) CreateHealthRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.HealthRecordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	record, err := h.healthRecordUsecase.CreateHealthRecord(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to save health record")
		return
	}

	response.Success(w, http.StatusCreated, "Health record saved successfully", record)
}

func (h *HealthRecordHandler) UpdateHealthRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.HealthRecordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	record, err := h.healthRecordUsecase.UpdateHealthRecord(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update health record")
		return
	}

	response.Success(w, http.StatusOK, "Health record updated successfully", record)
}

func (h *HealthRecordHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrHealthRecordNotFound):
		response.NotFound(w, "Health record not found")
	case errors.Is(err, usecase.ErrHealthRecordExists):
		response.Error(w, http.StatusConflict, "Health record already exists", nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
