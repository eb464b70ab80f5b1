package handler

import (
	"errors"
	"net/http"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/usecase"
	"swasth-sathi/pkg/response"
	"swasth-sathi/pkg/validator"
)

type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
	validator      *validator.CustomValidator
}

func NewContactHandler(contactUsecase usecase.ContactUsecase, validator *validator.CustomValidator) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		validator:      validator,
	}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.contactUsecase.Submit(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrCaptchaFailed):
			response.Error(w, http.StatusBadRequest, "CAPTCHA verification failed", nil)
		case errors.Is(err, usecase.ErrEmailNotConfigured):
			response.InternalServerError(w, "Email service not configured")
		default:
			response.InternalServerError(w, "Failed to send email")
		}
		return
	}

	response.Success(w, http.StatusOK, "Message sent successfully", result)
}
