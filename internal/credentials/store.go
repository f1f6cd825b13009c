package credentials

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/domain"
)

// Fixed keys held by the store.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Keys lists every key removed by Clear.
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Backend is durable key/value storage. Get reports absence with ok=false.
// Values are stored as given; callers serialize.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Store is the process-wide credential store. Read failures degrade to absent.
type Store struct {
	backend Backend
	logger  *zap.Logger
}

// NewStore wraps backend.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger.Named("credentials")}
}

// Get returns the raw value for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("credential read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, ok
}

// Set writes the raw value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Remove deletes keys; missing keys are ignored.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	if err := s.backend.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Token returns the access token, or "" when absent.
func (s *Store) Token(ctx context.Context) string {
	token, _ := s.Get(ctx, KeyAccessToken)
	return token
}

// RefreshToken returns the refresh token, or "" when absent.
func (s *Store) RefreshToken(ctx context.Context) string {
	token, _ := s.Get(ctx, KeyRefreshToken)
	return token
}

// SetToken stores the access token. An empty token removes it.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Remove(ctx, KeyAccessToken)
	}
	return s.Set(ctx, KeyAccessToken, token)
}

// SetRefreshToken stores the refresh token. An empty token removes it.
func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Remove(ctx, KeyRefreshToken)
	}
	return s.Set(ctx, KeyRefreshToken, token)
}

// User decodes the stored profile snapshot. A missing or malformed snapshot yields nil.
func (s *Store) User(ctx context.Context) *domain.User {
	raw, ok := s.Get(ctx, KeyUser)
	if !ok || raw == "" {
		return nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding malformed user snapshot", zap.Error(err))
		return nil
	}
	return &user
}

// SetUser serializes and stores the profile snapshot. nil removes it.
func (s *Store) SetUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return s.Remove(ctx, KeyUser)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	return s.Set(ctx, KeyUser, string(raw))
}

// Clear removes all credential keys. It is the only logout primitive.
func (s *Store) Clear(ctx context.Context) error {
	return s.Remove(ctx, Keys...)
}
