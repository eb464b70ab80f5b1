package service

import (
	"context"
	"fmt"
	"time"

	"swasth-sathi/internal/infrastructure/cache"
	"swasth-sathi/pkg/jwt"

	"github.com/google/uuid"
)

// TokenStore is the registry of issued tokens. A signed token is only
// honoured while its id is present here, which makes tokens revocable.
type TokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error
	IsValid(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type tokenStore struct {
	store cache.Store
}

func NewTokenStore(store cache.Store) TokenStore {
	return &tokenStore{store: store}
}

func (s *tokenStore) Save(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error {
	return s.store.Set(ctx, tokenKey(userID, tokenID, tokenType), "valid", ttl)
}

func (s *tokenStore) IsValid(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	return s.store.Exists(ctx, tokenKey(userID, tokenID, tokenType))
}

func (s *tokenStore) Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error {
	return s.store.Delete(ctx, tokenKey(userID, tokenID, tokenType))
}

// RevokeAll signs the user out everywhere (password reset, compromised account).
func (s *tokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.DeletePrefix(ctx, fmt.Sprintf("access_token:%s:", userID)); err != nil {
		return err
	}
	return s.store.DeletePrefix(ctx, fmt.Sprintf("refresh_token:%s:", userID))
}

func tokenKey(userID uuid.UUID, tokenID string, tokenType jwt.TokenType) string {
	if tokenType == jwt.AccessToken {
		return fmt.Sprintf("access_token:%s:%s", userID, tokenID)
	}
	return fmt.Sprintf("refresh_token:%s:%s", userID, tokenID)
}
