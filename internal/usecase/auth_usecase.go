package usecase

import (
	"context"
	"errors"
	"strings"

	"swasth-sathi/internal/converter"
	"swasth-sathi/internal/delivery/dto"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/domain/repository"
	"swasth-sathi/internal/infrastructure/captcha"
	"swasth-sathi/internal/infrastructure/mailer"
	"swasth-sathi/internal/service"
	"swasth-sathi/pkg/jwt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrTooManyAttempts    = errors.New("too many attempts, request a new code")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrEmailNotConfigured = errors.New("email service not configured")
)

const (
	captchaActionOTP = "otp_request"
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session *entity.Session, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	RequestOTP(ctx context.Context, req *dto.OTPRequest) error
	VerifyOTP(ctx context.Context, req *dto.OTPVerifyRequest) (*dto.TokenResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	otpService   service.OTPService
	auditService service.AuditService
	sessions     *service.SessionHolder
	mailer       mailer.Sender
	captcha      captcha.Verifier
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	otpService service.OTPService,
	auditService service.AuditService,
	sessions *service.SessionHolder,
	mailSender mailer.Sender,
	captchaVerifier captcha.Verifier,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		otpService:   otpService,
		auditService: auditService,
		sessions:     sessions,
		mailer:       mailSender,
		captcha:      captchaVerifier,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	email := normalizeEmail(req.Email)

	existing, err := u.userRepo.FindByEmail(ctx, tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:    email,
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.FullName),
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"email": user.Email,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// Find user by email (read-only, no transaction needed)
	user, err := u.userRepo.FindByEmail(ctx, u.db, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u.signIn(ctx, user, entity.SessionSignedIn)
}

func (u *authUsecase) Logout(ctx context.Context, session *entity.Session, refreshToken string) error {
	if err := u.tokenStore.Revoke(ctx, session.UserID, session.TokenID, jwt.AccessToken); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken, jwt.RefreshToken)
		if err == nil && claims.UserID == session.UserID {
			if err := u.tokenStore.Revoke(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken); err != nil {
				u.log.Warnf("Failed to delete refresh token: %+v", err)
				return err
			}
		}
	}

	u.sessions.Publish(ctx, entity.SessionSignedOut, session)
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	valid, err := u.tokenStore.IsValid(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !valid {
		return nil, ErrTokenRevoked
	}

	// Refresh tokens are single use
	if err := u.tokenStore.Revoke(ctx, claims.UserID, claims.TokenID, jwt.RefreshToken); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return u.signIn(ctx, user, entity.SessionTokenRefreshed)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// RequestOTP emails a sign-in code. Unknown addresses get one too: the
// account is created when the code is verified.
func (u *authUsecase) RequestOTP(ctx context.Context, req *dto.OTPRequest) error {
	if err := u.captcha.Verify(ctx, req.CaptchaToken, captchaActionOTP); err != nil {
		if errors.Is(err, captcha.ErrCaptchaFailed) {
			return ErrCaptchaFailed
		}
		u.log.Warnf("Failed to verify captcha: %+v", err)
		return err
	}

	email := normalizeEmail(req.Email)
	code, err := u.otpService.Issue(ctx, service.OTPPurposeSignIn, email)
	if err != nil {
		u.log.Warnf("Failed to issue sign-in code: %+v", err)
		return err
	}

	return u.sendCode(ctx, email, "Your SWASTH SATHI sign-in code", "Sign in to SWASTH SATHI", code)
}

func (u *authUsecase) VerifyOTP(ctx context.Context, req *dto.OTPVerifyRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if err := u.verifyCode(ctx, service.OTPPurposeSignIn, email, req.Code); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByEmail(ctx, tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}

	switch {
	case user == nil:
		user = &entity.User{Email: email, EmailVerified: true}
		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			u.log.Warnf("Failed to create user: %+v", err)
			return nil, err
		}
		if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
			"email":  user.Email,
			"method": "otp",
		}); err != nil {
			return nil, err
		}
	case !user.EmailVerified:
		user.EmailVerified = true
		if err := u.userRepo.Update(ctx, tx, user); err != nil {
			u.log.Warnf("Failed to update user: %+v", err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return u.signIn(ctx, user, entity.SessionSignedIn)
}

// ChangePassword sets a new password. Accounts that already have one must
// confirm it first.
func (u *authUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByID(ctx, tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
			return ErrInvalidCredentials
		}
	}

	if err := u.setPassword(ctx, tx, user, req.NewPassword); err != nil {
		return err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionPasswordChange, "user", user.ID.String(), nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}

// ForgotPassword emails a reset code. It reports success for unknown
// addresses so callers cannot probe which emails are registered.
func (u *authUsecase) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	user, err := u.userRepo.FindByEmail(ctx, u.db, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil {
		return nil
	}

	code, err := u.otpService.Issue(ctx, service.OTPPurposePasswordReset, email)
	if err != nil {
		u.log.Warnf("Failed to issue reset code: %+v", err)
		return err
	}

	return u.sendCode(ctx, email, "Reset your SWASTH SATHI password", "Reset your password", code)
}

// ResetPassword sets a new password with an emailed code and signs the
// account out everywhere.
func (u *authUsecase) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if err := u.verifyCode(ctx, service.OTPPurposePasswordReset, email, req.Code); err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.userRepo.FindByEmail(ctx, tx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if user == nil {
		return ErrInvalidCode
	}

	user.EmailVerified = true
	if err := u.setPassword(ctx, tx, user, req.NewPassword); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if err := u.tokenStore.RevokeAll(ctx, user.ID); err != nil {
		u.log.Warnf("Failed to revoke tokens after password reset: %+v", err)
		return err
	}

	u.sessions.Publish(ctx, entity.SessionPasswordReset, &entity.Session{UserID: user.ID, Email: user.Email})
	return nil
}

func (u *authUsecase) signIn(ctx context.Context, user *entity.User, event entity.SessionEvent) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, user.ID, accessTokenID, jwt.AccessToken, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, user.ID, refreshTokenID, jwt.RefreshToken, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	u.sessions.Publish(ctx, event, &entity.Session{
		UserID:  user.ID,
		Email:   user.Email,
		TokenID: accessTokenID,
	})

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		User:         converter.UserToResponse(user),
	}, nil
}

func (u *authUsecase) setPassword(ctx context.Context, tx *gorm.DB, user *entity.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	user.Password = string(hashedPassword)
	if err := u.userRepo.Update(ctx, tx, user); err != nil {
		u.log.Warnf("Failed to update user password: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) verifyCode(ctx context.Context, purpose service.OTPPurpose, email, code string) error {
	err := u.otpService.Verify(ctx, purpose, email, code)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrOTPInvalid):
		return ErrInvalidCode
	case errors.Is(err, service.ErrOTPTooManyAttempts):
		return ErrTooManyAttempts
	default:
		u.log.Warnf("Failed to verify code: %+v", err)
		return err
	}
}

func (u *authUsecase) sendCode(ctx context.Context, email, subject, heading, code string) error {
	html, err := mailer.RenderOneTimeCode(mailer.OneTimeCodeData{
		Heading:      heading,
		Code:         code,
		ValidMinutes: int(u.otpService.TTL().Minutes()),
	})
	if err != nil {
		u.log.Warnf("Failed to render code email: %+v", err)
		return err
	}

	if _, err := u.mailer.Send(ctx, mailer.Message{
		To:      []string{email},
		Subject: subject,
		HTML:    html,
	}); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return ErrEmailNotConfigured
		}
		u.log.Warnf("Failed to send code email: %+v", err)
		return err
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
