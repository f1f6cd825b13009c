package credentials

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var (
	// ErrDecrypt is returned when the credential file cannot be opened with the passphrase.
	ErrDecrypt = errors.New("credentials: unable to decrypt credential file")
	// ErrCorrupt is returned when the credential file is not a JSON document.
	ErrCorrupt = errors.New("credentials: corrupt credential file")
)

const (
	saltSize = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

type sealedFile struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// FileBackend stores credentials as one JSON document. With a passphrase the
// document is sealed with XChaCha20-Poly1305 under an Argon2id-derived key.
type FileBackend struct {
	path       string
	passphrase []byte
	logger     *zap.Logger

	mu sync.Mutex
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path, passphrase string, logger *zap.Logger) *FileBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	fb := &FileBackend{path: path, logger: logger}
	if passphrase != "" {
		fb.passphrase = []byte(passphrase)
	}
	return fb
}

func (f *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileBackend) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.loadForWrite()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileBackend) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.loadForWrite()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return f.save(values)
}

func (f *FileBackend) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	if f.passphrase != nil {
		raw, err = f.open(raw)
		if err != nil {
			return nil, err
		}
	}

	values := map[string]string{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return values, nil
}

// loadForWrite starts over from an empty document when the file cannot be
// decoded, so a damaged file never blocks saving or clearing the session.
func (f *FileBackend) loadForWrite() (map[string]string, error) {
	values, err := f.load()
	if errors.Is(err, ErrDecrypt) || errors.Is(err, ErrCorrupt) {
		f.logger.Warn("discarding unreadable credential file", zap.String("path", f.path), zap.Error(err))
		return map[string]string{}, nil
	}
	return values, err
}

func (f *FileBackend) save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if f.passphrase != nil {
		if raw, err = f.seal(raw); err != nil {
			return err
		}
	}
	return writeAtomic(f.path, raw)
}

func (f *FileBackend) seal(plain []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(f.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return json.Marshal(sealedFile{
		Version: 1,
		Salt:    salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, plain, nil),
	})
}

func (f *FileBackend) open(raw []byte) ([]byte, error) {
	var sealed sealedFile
	if err := json.Unmarshal(raw, &sealed); err != nil || sealed.Version != 1 {
		return nil, ErrDecrypt
	}
	aead, err := chacha20poly1305.NewX(f.deriveKey(sealed.Salt))
	if err != nil {
		return nil, err
	}
	if len(sealed.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plain, err := aead.Open(nil, sealed.Nonce, sealed.Data, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func (f *FileBackend) deriveKey(salt []byte) []byte {
	return argon2.IDKey(f.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
