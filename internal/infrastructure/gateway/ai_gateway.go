package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"swasth-sathi/config"
	"swasth-sathi/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no gateway credential is set.
var ErrNotConfigured = errors.New("AI gateway API key is not configured")

// StatusError is a non-2xx answer from the gateway. Body holds the
// (truncated) JSON error document for logging.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI gateway error: %d", e.StatusCode)
}

// TransportError wraps a failure to reach the gateway at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "AI gateway unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ChatStreamer opens one streaming chat completion.
type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []entity.ChatMessage) (io.ReadCloser, error)
}

type chatCompletionRequest struct {
	Model    string               `json:"model"`
	Messages []entity.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type AIGateway struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewAIGateway builds an OpenAI-compatible chat completions client.
// The timeout bounds the whole stream, so it is kept generous.
func NewAIGateway(cfg config.AIConfig, log *logrus.Logger) *AIGateway {
	return &AIGateway{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.GatewayURL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// StreamChat posts the conversation with stream=true and hands back the
// raw event-stream body on success. The caller must close it.
func (g *AIGateway) StreamChat(ctx context.Context, messages []entity.ChatMessage) (io.ReadCloser, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.log.Warnf("AI gateway error: %d %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return resp.Body, nil
}
