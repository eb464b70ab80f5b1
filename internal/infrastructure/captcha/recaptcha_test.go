package captcha

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"swasth-sathi/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestVerifierWithoutSecretAcceptsEverything(t *testing.T) {
	v := NewVerifier(config.CaptchaConfig{}, quietLogger())
	assert.NoError(t, v.Verify(context.Background(), "", "contact_form"))
}

func newSiteverify(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		assert.Equal(t, "tok", r.PostForm.Get("response"))
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRecaptchaVerifier(t *testing.T) {
	srv := newSiteverify(t, `{"success":true,"score":0.9,"action":"contact_form"}`)
	v := NewVerifier(config.CaptchaConfig{Secret: "s3cret", VerifyURL: srv.URL, MinScore: 0.5}, quietLogger())

	assert.NoError(t, v.Verify(context.Background(), "tok", "contact_form"))
	assert.ErrorIs(t, v.Verify(context.Background(), "tok", "otp_request"), ErrCaptchaFailed)
	assert.ErrorIs(t, v.Verify(context.Background(), "", "contact_form"), ErrCaptchaFailed)
}

func TestRecaptchaVerifierLowScore(t *testing.T) {
	srv := newSiteverify(t, `{"success":true,"score":0.1,"action":"contact_form"}`)
	v := NewVerifier(config.CaptchaConfig{Secret: "s3cret", VerifyURL: srv.URL, MinScore: 0.5}, quietLogger())

	assert.ErrorIs(t, v.Verify(context.Background(), "tok", "contact_form"), ErrCaptchaFailed)
}
