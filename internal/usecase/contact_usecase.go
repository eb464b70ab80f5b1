package usecase

import (
	"context"
	"errors"
	"strings"

	"swasth-sathi/config"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/infrastructure/captcha"
	"swasth-sathi/internal/infrastructure/mailer"

	"github.com/sirupsen/logrus"
)

var ErrSendFailed = errors.New("failed to send email")

const (
	captchaActionContact = "contact_form"

	acknowledgementSubject = "We received your message - SWASTH SATHI"
)

type ContactUsecase interface {
	Submit(ctx context.Context, req *dto.ContactRequest) (*dto.ContactResponse, error)
}

type contactUsecase struct {
	log          *logrus.Logger
	mailer       mailer.Sender
	captcha      captcha.Verifier
	adminAddress string
}

func NewContactUsecase(log *logrus.Logger, mailSender mailer.Sender, captchaVerifier captcha.Verifier, cfg config.EmailConfig) ContactUsecase {
	return &contactUsecase{
		log:          log,
		mailer:       mailSender,
		captcha:      captchaVerifier,
		adminAddress: strings.TrimSpace(cfg.AdminAddress),
	}
}

// Submit sends the admin notification and then the acknowledgement to the
// submitter. Only the admin notification has to succeed.
func (u *contactUsecase) Submit(ctx context.Context, req *dto.ContactRequest) (*dto.ContactResponse, error) {
	if err := u.captcha.Verify(ctx, req.CaptchaToken, captchaActionContact); err != nil {
		if errors.Is(err, captcha.ErrCaptchaFailed) {
			return nil, ErrCaptchaFailed
		}
		u.log.Warnf("Failed to verify captcha: %+v", err)
		return nil, err
	}

	if u.adminAddress == "" {
		return nil, ErrEmailNotConfigured
	}

	submission := entity.ContactSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	data := mailer.ContactData{
		Name:    submission.Name,
		Email:   submission.Email,
		Subject: submission.Subject,
		Message: submission.Message,
	}

	adminHTML, err := mailer.RenderContactNotification(data)
	if err != nil {
		u.log.Warnf("Failed to render contact notification: %+v", err)
		return nil, err
	}

	// Subject lines are plain text, never rendered as HTML
	adminResult, err := u.mailer.Send(ctx, mailer.Message{
		To:      []string{u.adminAddress},
		ReplyTo: submission.Email,
		Subject: "New Contact Form Submission: " + submission.Subject,
		HTML:    adminHTML,
	})
	if err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return nil, ErrEmailNotConfigured
		}
		u.log.Warnf("Failed to send contact notification: %+v", err)
		return nil, ErrSendFailed
	}

	u.log.WithField("email_id", adminResult.ID).Info("Contact notification sent")

	ackHTML, err := mailer.RenderContactAcknowledgement(data)
	if err != nil {
		u.log.Warnf("Failed to render contact acknowledgement: %+v", err)
		return &dto.ContactResponse{ID: adminResult.ID}, nil
	}

	if _, err := u.mailer.Send(ctx, mailer.Message{
		To:      []string{submission.Email},
		Subject: acknowledgementSubject,
		HTML:    ackHTML,
	}); err != nil {
		u.log.Warnf("Failed to send contact acknowledgement: %+v", err)
	}

	return &dto.ContactResponse{ID: adminResult.ID}, nil
}
