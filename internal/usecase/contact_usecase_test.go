package usecase

import (
	"context"
	"errors"
	"testing"

	"swasth-sathi/config"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/infrastructure/captcha"
	"swasth-sathi/internal/infrastructure/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContact() *dto.ContactRequest {
	return &dto.ContactRequest{
		Name:    "Ravi <b>Kumar</b>",
		Email:   "ravi@example.com",
		Subject: "Clinic hours",
		Message: "When is the clinic open? a<b>c",
	}
}

func TestContactSubmitSendsBothEmails(t *testing.T) {
	m := &fakeMailer{}
	uc := NewContactUsecase(quietLogger(), m, fakeCaptcha{}, config.EmailConfig{AdminAddress: "admin@example.com"})

	res, err := uc.Submit(context.Background(), validContact())
	require.NoError(t, err)
	assert.Equal(t, "email_1", res.ID)

	sent := m.messages()
	require.Len(t, sent, 2)

	assert.Equal(t, []string{"admin@example.com"}, sent[0].To)
	assert.Equal(t, "ravi@example.com", sent[0].ReplyTo)
	assert.Equal(t, "New Contact Form Submission: Clinic hours", sent[0].Subject)

	assert.Equal(t, []string{"ravi@example.com"}, sent[1].To)
	assert.Equal(t, "We received your message - SWASTH SATHI", sent[1].Subject)

	for _, msg := range sent {
		assert.NotContains(t, msg.HTML, "a<b>c")
		assert.NotContains(t, msg.HTML, "<b>Kumar</b>")
		assert.Contains(t, msg.HTML, "a&lt;b&gt;c")
	}
}

func TestContactSubmitAdminFailure(t *testing.T) {
	m := &fakeMailer{failOn: map[int]error{1: &mailer.HTTPError{StatusCode: 500}}}
	uc := NewContactUsecase(quietLogger(), m, fakeCaptcha{}, config.EmailConfig{AdminAddress: "admin@example.com"})

	_, err := uc.Submit(context.Background(), validContact())
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Empty(t, m.messages())
}

func TestContactSubmitAcknowledgementFailureIsSwallowed(t *testing.T) {
	m := &fakeMailer{failOn: map[int]error{2: errors.New("mailbox unavailable")}}
	uc := NewContactUsecase(quietLogger(), m, fakeCaptcha{}, config.EmailConfig{AdminAddress: "admin@example.com"})

	res, err := uc.Submit(context.Background(), validContact())
	require.NoError(t, err)
	assert.Equal(t, "email_1", res.ID)
	assert.Len(t, m.messages(), 1)
}

func TestContactSubmitNotConfigured(t *testing.T) {
	uc := NewContactUsecase(quietLogger(), &fakeMailer{}, fakeCaptcha{}, config.EmailConfig{})
	_, err := uc.Submit(context.Background(), validContact())
	assert.ErrorIs(t, err, ErrEmailNotConfigured)

	m := &fakeMailer{failOn: map[int]error{1: mailer.ErrNotConfigured}}
	uc = NewContactUsecase(quietLogger(), m, fakeCaptcha{}, config.EmailConfig{AdminAddress: "admin@example.com"})
	_, err = uc.Submit(context.Background(), validContact())
	assert.ErrorIs(t, err, ErrEmailNotConfigured)
}

func TestContactSubmitCaptchaRejected(t *testing.T) {
	m := &fakeMailer{}
	uc := NewContactUsecase(quietLogger(), m, fakeCaptcha{err: captcha.ErrCaptchaFailed}, config.EmailConfig{AdminAddress: "admin@example.com"})

	_, err := uc.Submit(context.Background(), validContact())
	assert.ErrorIs(t, err, ErrCaptchaFailed)
	assert.Empty(t, m.messages())
}
