package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the signed-in identity attached to a request.
type Session struct {
	UserID    uuid.UUID
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

type SessionEvent string

const (
	SessionSignedIn       SessionEvent = "SIGNED_IN"
	SessionSignedOut      SessionEvent = "SIGNED_OUT"
	SessionTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
	SessionPasswordReset  SessionEvent = "PASSWORD_RECOVERY"
)
