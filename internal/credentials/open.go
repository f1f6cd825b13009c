package credentials

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/medpractice-client/internal/config"
	"github.com/spec-kit/medpractice-client/internal/persistence"
	"github.com/spec-kit/medpractice-client/internal/repository"
)

// Pinger is implemented by backends with a remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Opened bundles the selected backend with its connection lifecycle.
type Opened struct {
	Backend Backend
	// Health is nil for local backends.
	Health Pinger
	close  func()
}

// Close releases connections held by the backend.
func (o *Opened) Close() {
	if o != nil && o.close != nil {
		o.close()
	}
}

// Open selects the backend named by cfg.Credentials.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Opened, error) {
	switch cfg.Credentials.Backend {
	case config.BackendMemory:
		return &Opened{Backend: NewMemoryBackend()}, nil
	case config.BackendFile:
		logger.Info("using file credential store", zap.String("path", cfg.Credentials.FilePath))
		return &Opened{Backend: NewFileBackend(cfg.Credentials.FilePath, cfg.Credentials.Passphrase, logger)}, nil
	case config.BackendRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		return &Opened{
			Backend: repository.NewRedisCredentialRepository(rdb.Client, cfg.Credentials.Profile),
			Health:  rdb,
			close:   rdb.Close,
		}, nil
	case config.BackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		return &Opened{
			Backend: repository.NewCredentialRepository(pg.Pool, cfg.Credentials.Profile),
			Health:  pg,
			close:   pg.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.Credentials.Backend)
	}
}
