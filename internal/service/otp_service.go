package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"swasth-sathi/config"
	"swasth-sathi/internal/infrastructure/cache"
)

var (
	ErrOTPInvalid         = errors.New("invalid or expired code")
	ErrOTPTooManyAttempts = errors.New("too many attempts, request a new code")
)

type OTPPurpose string

const (
	OTPPurposeSignIn        OTPPurpose = "sign_in"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

const otpDigits = 6

// OTPService issues and checks short numeric codes sent by email.
// Only a hash of each code is stored, and a code is consumed on success.
// Failed attempts are counted per address and purpose, and reissuing a
// code does not reset the count before its window expires.
type OTPService interface {
	Issue(ctx context.Context, purpose OTPPurpose, email string) (string, error)
	Verify(ctx context.Context, purpose OTPPurpose, email, code string) error
	TTL() time.Duration
}

type otpService struct {
	store       cache.Store
	ttl         time.Duration
	maxAttempts int
}

func NewOTPService(store cache.Store, cfg config.OTPConfig) OTPService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &otpService{store: store, ttl: ttl, maxAttempts: maxAttempts}
}

func (s *otpService) TTL() time.Duration {
	return s.ttl
}

func (s *otpService) Issue(ctx context.Context, purpose OTPPurpose, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%0*d", otpDigits, n.Int64())

	codeKey, _ := otpKeys(purpose, email)
	if err := s.store.Set(ctx, codeKey, hashCode(code), s.ttl); err != nil {
		return "", err
	}

	return code, nil
}

func (s *otpService) Verify(ctx context.Context, purpose OTPPurpose, email, code string) error {
	codeKey, attemptsKey := otpKeys(purpose, email)

	attempts, err := s.store.Incr(ctx, attemptsKey, s.ttl)
	if err != nil {
		return err
	}
	if attempts > int64(s.maxAttempts) {
		_ = s.store.Delete(ctx, codeKey)
		return ErrOTPTooManyAttempts
	}

	stored, err := s.store.Get(ctx, codeKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return ErrOTPInvalid
	}
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(strings.TrimSpace(code)))) != 1 {
		return ErrOTPInvalid
	}

	return s.store.Delete(ctx, codeKey, attemptsKey)
}

func otpKeys(purpose OTPPurpose, email string) (string, string) {
	email = strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("otp:%s:%s", purpose, email), fmt.Sprintf("otp_attempts:%s:%s", purpose, email)
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
