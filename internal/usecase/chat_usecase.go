package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"swasth-sathi/internal/converter"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/infrastructure/gateway"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyConversation   = errors.New("at least one message is required")
	ErrInvalidChatRole     = errors.New("messages may only have the user or assistant role")
	ErrEmptyChatMessage    = errors.New("message content must not be empty")
	ErrChatNotConfigured   = errors.New("AI service not configured")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrQuotaExhausted      = errors.New("AI usage quota exhausted")
	ErrUpstream            = errors.New("AI gateway error")
	ErrUpstreamUnavailable = errors.New("AI gateway unreachable")
)

const baseSystemPrompt = `You are a helpful AI health assistant for rural and semi-urban populations. Your role is to:

1. Educate about preventive healthcare, disease symptoms, and vaccination schedules
2. Provide accurate, easy-to-understand health information
3. Use simple language that can be understood by people with varying education levels
4. Always recommend consulting healthcare professionals for serious symptoms
5. Provide information about common diseases like Malaria, Tuberculosis, Dengue, Cholera, COVID-19
6. Explain vaccination schedules for children and adults
7. Share preventive health tips and hygiene practices
8. Alert about disease outbreaks when relevant
9. Be empathetic, supportive, and culturally sensitive
10. Focus on evidence-based medical information

IMPORTANT: Always encourage users to visit healthcare facilities for proper diagnosis and treatment. You provide information and awareness, not medical diagnosis or treatment.

Keep responses concise, practical, and actionable. Use bullet points when listing symptoms or prevention methods.`

const personalizationPrompt = `IMPORTANT - PERSONALIZED CONTEXT:
The user has shared their health profile with you:

%CONTEXT%

Use this information to provide MORE PERSONALIZED and RELEVANT health recommendations. Consider their age, chronic conditions, allergies, medications, and lifestyle when giving advice. Always mention specific considerations based on their profile when relevant.`

type ChatUsecase interface {
	// StreamChat relays one turn to the AI gateway and returns the raw
	// event-stream body. The caller must close it.
	StreamChat(ctx context.Context, session *entity.Session, req *dto.ChatRequest) (io.ReadCloser, error)
}

type chatUsecase struct {
	log           *logrus.Logger
	gateway       gateway.ChatStreamer
	healthRecords HealthRecordUsecase
}

func NewChatUsecase(log *logrus.Logger, chatGateway gateway.ChatStreamer, healthRecords HealthRecordUsecase) ChatUsecase {
	return &chatUsecase{
		log:           log,
		gateway:       chatGateway,
		healthRecords: healthRecords,
	}
}

func (u *chatUsecase) StreamChat(ctx context.Context, session *entity.Session, req *dto.ChatRequest) (io.ReadCloser, error) {
	history := converter.ChatRequestToMessages(req)
	if err := ValidateConversation(history); err != nil {
		return nil, err
	}

	personalization := strings.TrimSpace(req.HealthContext)
	if personalization == "" && req.Personalize && session != nil {
		summary, err := u.healthRecords.HealthContext(ctx, session.UserID)
		if err != nil {
			u.log.Warnf("Failed to load health context, continuing without it: %+v", err)
		} else {
			personalization = summary
		}
	}

	u.log.WithFields(logrus.Fields{
		"messages":     len(history),
		"personalized": personalization != "",
	}).Info("Processing health chat request")

	body, err := u.gateway.StreamChat(ctx, BuildChatMessages(history, personalization))
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return body, nil
}

// ValidateConversation rejects empty conversations, caller-supplied system
// turns and blank messages.
func ValidateConversation(messages []entity.ChatMessage) error {
	if len(messages) == 0 {
		return ErrEmptyConversation
	}
	for _, m := range messages {
		if m.Role != entity.ChatRoleUser && m.Role != entity.ChatRoleAssistant {
			return ErrInvalidChatRole
		}
		if strings.TrimSpace(m.Content) == "" {
			return ErrEmptyChatMessage
		}
	}
	return nil
}

// BuildChatMessages prepends the base instruction and, when personalization
// is non-empty after trimming, a second system message carrying it.
func BuildChatMessages(history []entity.ChatMessage, personalization string) []entity.ChatMessage {
	out := make([]entity.ChatMessage, 0, len(history)+2)
	out = append(out, entity.ChatMessage{Role: entity.ChatRoleSystem, Content: baseSystemPrompt})

	if p := strings.TrimSpace(personalization); p != "" {
		out = append(out, entity.ChatMessage{
			Role:    entity.ChatRoleSystem,
			Content: strings.Replace(personalizationPrompt, "%CONTEXT%", p, 1),
		})
	}

	return append(out, history...)
}

func mapGatewayError(err error) error {
	var statusErr *gateway.StatusError
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		return ErrChatNotConfigured
	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return ErrRateLimited
		case http.StatusPaymentRequired:
			return ErrQuotaExhausted
		default:
			return ErrUpstream
		}
	default:
		return ErrUpstreamUnavailable
	}
}
