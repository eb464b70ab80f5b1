package usecase

import (
	"context"
	"testing"

	"swasth-sathi/config"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/infrastructure/cache"
	"swasth-sathi/internal/infrastructure/captcha"
	"swasth-sathi/internal/infrastructure/mailer"
	"swasth-sathi/internal/repository"
	"swasth-sathi/internal/service"
	"swasth-sathi/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	db       *gorm.DB
	usecase  AuthUsecase
	tokens   service.TokenStore
	jwt      *jwt.JWTService
	mailer   *fakeMailer
	sessions *service.SessionHolder
	events   []entity.SessionEvent
}

func newAuthFixture(t *testing.T, verifier captcha.Verifier) *authFixture {
	t.Helper()
	db := newTestDB(t)
	store := cache.NewMemoryStore()
	log := quietLogger()

	f := &authFixture{
		db:       db,
		tokens:   service.NewTokenStore(store),
		jwt:      jwt.NewJWTService(testJWTConfig),
		mailer:   &fakeMailer{},
		sessions: service.NewSessionHolder(log),
	}
	f.sessions.Subscribe(func(_ context.Context, event entity.SessionEvent, _ *entity.Session) {
		f.events = append(f.events, event)
	})

	f.usecase = NewAuthUsecase(
		db,
		log,
		repository.NewUserRepository(),
		f.jwt,
		f.tokens,
		service.NewOTPService(store, config.OTPConfig{}),
		newTestAuditService(db),
		f.sessions,
		f.mailer,
		verifier,
	)
	return f
}

func (f *authFixture) register(t *testing.T, email, password string) *dto.UserResponse {
	t.Helper()
	user, err := f.usecase.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: "Asha Devi",
	})
	require.NoError(t, err)
	return user
}

func (f *authFixture) sessionFor(t *testing.T, accessToken string) *entity.Session {
	t.Helper()
	claims, err := f.jwt.ValidateToken(accessToken, jwt.AccessToken)
	require.NoError(t, err)
	return &entity.Session{UserID: claims.UserID, Email: claims.Email, TokenID: claims.TokenID}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	user := f.register(t, "Asha@Example.com", "secret1")

	assert.Equal(t, "asha@example.com", user.Email)
	assert.True(t, user.HasPassword)

	_, err := f.usecase.Register(context.Background(), &dto.RegisterRequest{
		Email:    "asha@example.com",
		Password: "secret2",
		FullName: "Someone Else",
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLoginIssuesRevocableTokens(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	f.register(t, "asha@example.com", "secret1")
	ctx := context.Background()

	_, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, tokens.User)

	session := f.sessionFor(t, tokens.AccessToken)
	valid, err := f.tokens.IsValid(ctx, session.UserID, session.TokenID, jwt.AccessToken)
	require.NoError(t, err)
	assert.True(t, valid)

	require.NoError(t, f.usecase.Logout(ctx, session, tokens.RefreshToken))

	valid, _ = f.tokens.IsValid(ctx, session.UserID, session.TokenID, jwt.AccessToken)
	assert.False(t, valid)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.Equal(t, []entity.SessionEvent{entity.SessionSignedIn, entity.SessionSignedOut}, f.events)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	f.register(t, "asha@example.com", "secret1")
	ctx := context.Background()

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)

	rotated, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.Contains(t, f.events, entity.SessionTokenRefreshed)
}

func TestOTPSignInCreatesAccount(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	ctx := context.Background()

	require.NoError(t, f.usecase.RequestOTP(ctx, &dto.OTPRequest{Email: "new@example.com"}))
	code := f.mailer.lastCode(t)

	_, err := f.usecase.VerifyOTP(ctx, &dto.OTPVerifyRequest{Email: "new@example.com", Code: flipCode(code)})
	assert.ErrorIs(t, err, ErrInvalidCode)

	tokens, err := f.usecase.VerifyOTP(ctx, &dto.OTPVerifyRequest{Email: "new@example.com", Code: code})
	require.NoError(t, err)
	assert.True(t, tokens.User.EmailVerified)
	assert.False(t, tokens.User.HasPassword)

	// password login is impossible until a password is set
	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "new@example.com", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.usecase.ChangePassword(ctx, tokens.User.ID, &dto.ChangePasswordRequest{
		NewPassword:     "secret1",
		ConfirmPassword: "secret1",
	}))
	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "new@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestRequestOTPChecksCaptcha(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{err: captcha.ErrCaptchaFailed})

	err := f.usecase.RequestOTP(context.Background(), &dto.OTPRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrCaptchaFailed)
	assert.Empty(t, f.mailer.messages())
}

func TestRequestOTPWithoutEmailService(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	f.mailer.failOn = map[int]error{1: mailer.ErrNotConfigured}

	err := f.usecase.RequestOTP(context.Background(), &dto.OTPRequest{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailNotConfigured)
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	user := f.register(t, "asha@example.com", "secret1")
	ctx := context.Background()

	err := f.usecase.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "nope",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.usecase.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	}))

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "secret2"})
	assert.NoError(t, err)
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	f := newAuthFixture(t, fakeCaptcha{})
	f.register(t, "asha@example.com", "secret1")
	ctx := context.Background()

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	session := f.sessionFor(t, tokens.AccessToken)

	// unknown addresses succeed silently
	require.NoError(t, f.usecase.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ghost@example.com"}))
	assert.Empty(t, f.mailer.messages())

	require.NoError(t, f.usecase.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "asha@example.com"}))
	code := f.mailer.lastCode(t)

	require.NoError(t, f.usecase.ResetPassword(ctx, &dto.ResetPasswordRequest{
		Email:           "asha@example.com",
		Code:            code,
		NewPassword:     "secret9",
		ConfirmPassword: "secret9",
	}))

	valid, err := f.tokens.IsValid(ctx, session.UserID, session.TokenID, jwt.AccessToken)
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = f.usecase.Login(ctx, &dto.LoginRequest{Email: "asha@example.com", Password: "secret9"})
	assert.NoError(t, err)
	assert.Contains(t, f.events, entity.SessionPasswordReset)
}

func flipCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}
