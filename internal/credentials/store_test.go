package credentials

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/config"
	"github.com/spec-kit/medpractice-client/internal/domain"
)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingBackend) Set(context.Context, string, string) error { return errors.New("disk on fire") }
func (failingBackend) Remove(context.Context, ...string) error   { return errors.New("disk on fire") }

func TestStoreSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), zap.NewNop())

	assert.Empty(t, store.Token(ctx))
	assert.Nil(t, store.User(ctx))

	require.NoError(t, store.SetToken(ctx, "access"))
	require.NoError(t, store.SetRefreshToken(ctx, "refresh"))
	require.NoError(t, store.SetUser(ctx, &domain.User{Username: "dr.house", UserType: "DOCTOR"}))

	assert.Equal(t, "access", store.Token(ctx))
	assert.Equal(t, "refresh", store.RefreshToken(ctx))
	require.NotNil(t, store.User(ctx))
	assert.Equal(t, domain.RoleDoctor, store.User(ctx).Role())
}

func TestStoreClearRemovesEveryKey(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, nil)

	require.NoError(t, store.SetToken(ctx, "access"))
	require.NoError(t, store.SetRefreshToken(ctx, "refresh"))
	require.NoError(t, store.SetUser(ctx, &domain.User{Username: "u"}))

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	for _, key := range Keys {
		_, ok, err := backend.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestStoreMalformedUserIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), nil)

	require.NoError(t, store.Set(ctx, KeyUser, "{not json"))
	assert.Nil(t, store.User(ctx))

	require.NoError(t, store.Set(ctx, KeyUser, ""))
	assert.Nil(t, store.User(ctx))
}

func TestStoreReadFailureDegradesToAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(failingBackend{}, nil)

	assert.Empty(t, store.Token(ctx))
	assert.Nil(t, store.User(ctx))
	assert.Error(t, store.SetToken(ctx, "x"))
	assert.Error(t, store.Clear(ctx))
}

func TestEmptyValuesRemoveKeys(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, nil)

	require.NoError(t, store.SetToken(ctx, "access"))
	require.NoError(t, store.SetToken(ctx, ""))
	require.NoError(t, store.SetUser(ctx, nil))

	_, ok, _ := backend.Get(ctx, KeyAccessToken)
	assert.False(t, ok)
}

func TestOpenLocalBackends(t *testing.T) {
	ctx := context.Background()

	opened, err := Open(ctx, &config.Config{Credentials: config.CredentialsConfig{Backend: config.BackendMemory}}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, opened.Backend)
	assert.Nil(t, opened.Health)
	opened.Close()

	opened, err = Open(ctx, &config.Config{Credentials: config.CredentialsConfig{
		Backend:  config.BackendFile,
		FilePath: filepath.Join(t.TempDir(), "creds.json"),
	}}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &FileBackend{}, opened.Backend)

	_, err = Open(ctx, &config.Config{Credentials: config.CredentialsConfig{Backend: "etcd"}}, zap.NewNop())
	assert.Error(t, err)
}
