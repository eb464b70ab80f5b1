package mailer

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

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned by Send when no API key is set.
var ErrNotConfigured = errors.New("email service not configured")

// Sender delivers one transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

type SendResult struct {
	ID string
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 1000 {
		msg = msg[:1000] + "..."
	}
	return fmt.Sprintf("email api http %d: %s", e.StatusCode, msg)
}

// wire format of the Resend-compatible /emails endpoint
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type Client struct {
	baseURL     string
	apiKey      string
	defaultFrom string
	httpClient  *http.Client
	log         *logrus.Logger
}

func NewClient(cfg config.EmailConfig, log *logrus.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		defaultFrom: strings.TrimSpace(cfg.From),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log,
	}
}

// Configured reports whether Send can reach the provider.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if msg.From == "" {
		msg.From = c.defaultFrom
	}
	if len(msg.To) == 0 {
		return nil, errors.New("email api: recipient required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return nil, errors.New("email api: subject required")
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(sendRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("email api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out sendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warnf("Failed to decode email api response: %+v", err)
	}

	return &SendResult{ID: out.ID}, nil
}
