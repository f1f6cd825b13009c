package credentials

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")

	first := NewFileBackend(path, "", nil)
	require.NoError(t, first.Set(ctx, KeyAccessToken, "token-1"))

	second := NewFileBackend(path, "", nil)
	value, ok, err := second.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-1", value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileBackendMissingFileIsEmpty(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"), "", nil)
	_, ok, err := backend.Get(context.Background(), KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendEncrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	backend := NewFileBackend(path, "correct horse", nil)
	require.NoError(t, backend.Set(ctx, KeyAccessToken, "secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	value, ok, err := NewFileBackend(path, "correct horse", nil).Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-token", value)

	wrong := NewFileBackend(path, "battery staple", nil)
	_, _, err = wrong.Get(ctx, KeyAccessToken)
	assert.ErrorIs(t, err, ErrDecrypt)

	// logout must still work when the passphrase changed
	require.NoError(t, wrong.Remove(ctx, Keys...))
	_, ok, err = wrong.Get(ctx, KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendRecoversFromUnreadableFile(t *testing.T) {
	ctx := context.Background()

	sealedWithOtherKey := func(t *testing.T, path string) {
		require.NoError(t, NewFileBackend(path, "old passphrase", nil).Set(ctx, KeyAccessToken, "old"))
	}
	truncated := func(t *testing.T, path string) {
		require.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"old",`), 0o600))
	}

	tests := []struct {
		name       string
		passphrase string
		prepare    func(t *testing.T, path string)
	}{
		{"truncated document", "", truncated},
		{"truncated sealed document", "correct horse", truncated},
		{"sealed with another passphrase", "correct horse", sealedWithOtherKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.json")
			tt.prepare(t, path)
			backend := NewFileBackend(path, tt.passphrase, nil)

			require.NoError(t, backend.Set(ctx, KeyAccessToken, "new"))
			value, ok, err := backend.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "new", value)

			require.NoError(t, backend.Remove(ctx, Keys...))
			_, ok, err = backend.Get(ctx, KeyAccessToken)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	t.Run("clearing a corrupt file succeeds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.json")
		truncated(t, path)
		backend := NewFileBackend(path, "", nil)

		_, _, err := backend.Get(ctx, KeyAccessToken)
		assert.ErrorIs(t, err, ErrCorrupt)

		require.NoError(t, backend.Remove(ctx, Keys...))
		_, ok, err := backend.Get(ctx, KeyAccessToken)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStoreSavesSessionOverCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"old",`), 0o600))

	store := NewStore(NewFileBackend(path, "", nil), nil)
	assert.Empty(t, store.Token(ctx))

	require.NoError(t, store.SetToken(ctx, "new"))
	assert.Equal(t, "new", store.Token(ctx))

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Token(ctx))
}
