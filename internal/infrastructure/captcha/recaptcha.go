package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swasth-sathi/config"

	"github.com/sirupsen/logrus"
)

var ErrCaptchaFailed = errors.New("captcha verification failed")

// Verifier checks a client-side CAPTCHA token for the named action.
type Verifier interface {
	Verify(ctx context.Context, token, action string) error
}

// NewVerifier returns a reCAPTCHA v3 verifier, or a verifier that accepts
// every token when no secret is configured.
func NewVerifier(cfg config.CaptchaConfig, log *logrus.Logger) Verifier {
	if strings.TrimSpace(cfg.Secret) == "" {
		log.Info("CAPTCHA secret not set, tokens are accepted unverified")
		return noopVerifier{}
	}
	return &RecaptchaVerifier{
		secret:     cfg.Secret,
		verifyURL:  cfg.VerifyURL,
		minScore:   cfg.MinScore,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type noopVerifier struct{}

func (noopVerifier) Verify(context.Context, string, string) error { return nil }

type RecaptchaVerifier struct {
	secret     string
	verifyURL  string
	minScore   float64
	httpClient *http.Client
	log        *logrus.Logger
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, action string) error {
	if strings.TrimSpace(token) == "" {
		return ErrCaptchaFailed
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("captcha siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("captcha siteverify http %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode siteverify response: %w", err)
	}

	if !out.Success || out.Score < v.minScore || (action != "" && out.Action != action) {
		v.log.Warnf("CAPTCHA rejected: success=%v score=%.2f action=%q errors=%v", out.Success, out.Score, out.Action, out.ErrorCodes)
		return ErrCaptchaFailed
	}

	return nil
}
