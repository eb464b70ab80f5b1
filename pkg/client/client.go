// Package client is a Go client for the SWASTH SATHI HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const apiPrefix = "/api/v1"

// APIError is any non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("swasth sathi: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnavailable reports whether the AI service is out of quota.
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// HealthRecord mirrors the health profile. Nil fields are unset.
type HealthRecord struct {
	ID                 string           `json:"id,omitempty"`
	Age                *int             `json:"age,omitempty"`
	Gender             *string          `json:"gender,omitempty"`
	BloodGroup         *string          `json:"blood_group,omitempty"`
	Height             *decimal.Decimal `json:"height,omitempty"`
	Weight             *decimal.Decimal `json:"weight,omitempty"`
	ChronicConditions  *string          `json:"chronic_conditions,omitempty"`
	Allergies          *string          `json:"allergies,omitempty"`
	CurrentMedications *string          `json:"current_medications,omitempty"`
	PreviousSurgeries  *string          `json:"previous_surgeries,omitempty"`
	FamilyHistory      *string          `json:"family_history,omitempty"`
	LifestyleNotes     *string          `json:"lifestyle_notes,omitempty"`
	UpdatedAt          *time.Time       `json:"updated_at,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.RWMutex
	accessToken string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithAccessToken(token string) Option {
	return func(c *Client) { c.accessToken = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// Login signs in with a password and keeps the access token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &tokens); err != nil {
		return err
	}
	c.SetAccessToken(tokens.AccessToken)
	return nil
}

// GetHealthRecord returns nil, nil when the user has not saved a profile yet.
func (c *Client) GetHealthRecord(ctx context.Context) (*HealthRecord, error) {
	var record HealthRecord
	err := c.do(ctx, http.MethodGet, "/health-records", nil, &record)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Client) CreateHealthRecord(ctx context.Context, record HealthRecord) (*HealthRecord, error) {
	var saved HealthRecord
	if err := c.do(ctx, http.MethodPost, "/health-records", record, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) UpdateHealthRecord(ctx context.Context, record HealthRecord) (*HealthRecord, error) {
	var saved HealthRecord
	if err := c.do(ctx, http.MethodPut, "/health-records", record, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// do sends a JSON request and unwraps the {success, message, data} envelope
// into out.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in interface{}) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// readAPIError accepts both the envelope and the bare {"error": "..."} body.
func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil {
		var plain string
		switch {
		case body.Message != "":
			msg = body.Message
		case json.Unmarshal(body.Error, &plain) == nil && plain != "":
			msg = plain
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
