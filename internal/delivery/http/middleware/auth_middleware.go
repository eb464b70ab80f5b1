package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/service"
	"swasth-sathi/pkg/jwt"
	"swasth-sathi/pkg/response"

	"github.com/google/uuid"
)

type contextKey string

const (
	SessionKey contextKey = "session"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	tokenStore service.TokenStore
}

func NewAuthMiddleware(jwtService *jwt.JWTService, tokenStore service.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Authenticate rejects requests without a live access token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		session, status, msg := m.resolve(r.Context(), authHeader)
		if session == nil {
			if status == http.StatusInternalServerError {
				response.InternalServerError(w, msg)
				return
			}
			response.Unauthorized(w, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Optional attaches the session when a valid token is present and lets
// anonymous requests through unchanged.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			if session, _, _ := m.resolve(r.Context(), authHeader); session != nil {
				r = r.WithContext(WithSession(r.Context(), session))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(ctx context.Context, authHeader string) (*entity.Session, int, string) {
	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, http.StatusUnauthorized, "Invalid authorization header format"
	}

	// Validate JWT access token
	claims, err := m.jwtService.ValidateToken(parts[1], jwt.AccessToken)
	if errors.Is(err, jwt.ErrWrongTokenType) {
		return nil, http.StatusUnauthorized, "Invalid token type"
	}
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token"
	}

	// Check if token is still registered (not revoked)
	valid, err := m.tokenStore.IsValid(ctx, claims.UserID, claims.TokenID, jwt.AccessToken)
	if err != nil {
		return nil, http.StatusInternalServerError, "Failed to validate token"
	}
	if !valid {
		return nil, http.StatusUnauthorized, "Token has been revoked"
	}

	session := &entity.Session{
		UserID:  claims.UserID,
		Email:   claims.Email,
		TokenID: claims.TokenID,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, http.StatusOK, ""
}

func WithSession(ctx context.Context, session *entity.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// SessionFromContext returns the signed-in session, or nil for anonymous requests
func SessionFromContext(ctx context.Context) *entity.Session {
	session, _ := ctx.Value(SessionKey).(*entity.Session)
	return session
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	session := SessionFromContext(ctx)
	if session == nil {
		return uuid.Nil, false
	}
	return session.UserID, true
}
