package handler

import (
	"net/http"

	"swasth-sathi/internal/delivery/http/middleware"
	"swasth-sathi/internal/usecase"
	"swasth-sathi/pkg/response"

	"github.com/google/uuid"
)

type ContentHandler struct {
	contentUsecase  usecase.ContentUsecase
	locationUsecase usecase.LocationUsecase
}

func NewContentHandler(contentUsecase usecase.ContentUsecase, locationUsecase usecase.LocationUsecase) *ContentHandler {
	return &ContentHandler{
		contentUsecase:  contentUsecase,
		locationUsecase: locationUsecase,
	}
}

func (h *ContentHandler) ListDiseases(w http.ResponseWriter, r *http.Request) {
	diseases, err := h.contentUsecase.ListDiseases(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get diseases")
		return
	}

	response.Success(w, http.StatusOK, "Diseases retrieved successfully", diseases)
}

func (h *ContentHandler) ListVaccinations(w http.ResponseWriter, r *http.Request) {
	vaccinations, err := h.contentUsecase.ListVaccinations(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get vaccinations")
		return
	}

	response.Success(w, http.StatusOK, "Vaccinations retrieved successfully", vaccinations)
}

// ListAlerts accepts optional state and district query parameters. Missing
// values come from the caller's saved location, then the default.
func (h *ContentHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		userID = &id
	}

	query := r.URL.Query()
	loc := h.locationUsecase.Resolve(r.Context(), userID, query.Get("state"), query.Get("district"))

	alerts, err := h.contentUsecase.ListAlerts(r.Context(), loc)
	if err != nil {
		response.InternalServerError(w, "Failed to get alerts")
		return
	}

	response.Success(w, http.StatusOK, "Alerts retrieved successfully", alerts)
}
