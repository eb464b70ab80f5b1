package handler

import (
	"errors"
	"io"
	"net/http"
	"sort"

	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/delivery/http/middleware"
	"swasth-sathi/internal/usecase"
	"swasth-sathi/pkg/response"
	"swasth-sathi/pkg/validator"

	"github.com/sirupsen/logrus"
)

const chatRelayBufferSize = 4 * 1024

type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
	validator   *validator.CustomValidator
	log         *logrus.Logger
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, validator *validator.CustomValidator, log *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		chatUsecase: chatUsecase,
		validator:   validator,
		log:         log,
	}
}

// Chat relays one conversation turn. Errors use the bare {"error": "..."}
// document; a successful turn is the upstream event stream copied as is.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := decodeJSON(w, r, maxChatBodyBytes, &req); err != nil {
		status, msg := bodyError(err)
		response.PlainError(w, status, msg)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.PlainError(w, http.StatusBadRequest, firstValidationError(h.validator.FormatValidationErrors(err)))
		return
	}

	stream, err := h.chatUsecase.StreamChat(r.Context(), middleware.SessionFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	buf := make([]byte, chatRelayBufferSize)
	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				// client went away
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && r.Context().Err() == nil {
				h.log.Warnf("Failed to relay chat stream: %+v", readErr)
			}
			return
		}
	}
}

// firstValidationError picks the message of the alphabetically first field
func firstValidationError(errs map[string]string) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	if len(fields) == 0 {
		return "Invalid request body"
	}
	sort.Strings(fields)
	return errs[fields[0]]
}

func (h *ChatHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyConversation),
		errors.Is(err, usecase.ErrInvalidChatRole),
		errors.Is(err, usecase.ErrEmptyChatMessage):
		response.PlainError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrRateLimited):
		response.PlainError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	case errors.Is(err, usecase.ErrQuotaExhausted):
		response.PlainError(w, http.StatusPaymentRequired, "Service temporarily unavailable. Please try again later.")
	case errors.Is(err, usecase.ErrChatNotConfigured):
		response.PlainError(w, http.StatusInternalServerError, "AI service not configured")
	case errors.Is(err, usecase.ErrUpstream):
		response.PlainError(w, http.StatusInternalServerError, "AI gateway error")
	default:
		response.PlainError(w, http.StatusInternalServerError, "Failed to reach the AI service")
	}
}
