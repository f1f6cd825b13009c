package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository persists client credentials per profile.
type CredentialRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

type credentialRepository struct {
	pool    *pgxpool.Pool
	profile string
}

// NewCredentialRepository returns a Postgres-backed implementation scoped to profile.
func NewCredentialRepository(pool *pgxpool.Pool, profile string) CredentialRepository {
	return &credentialRepository{pool: pool, profile: profile}
}

func (r *credentialRepository) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
        SELECT value FROM client_credentials
        WHERE profile=$1 AND key=$2`

	var value string
	if err := r.pool.QueryRow(ctx, query, r.profile, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *credentialRepository) Set(ctx context.Context, key, value string) error {
	const query = `
        INSERT INTO client_credentials (profile, key, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (profile, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, r.profile, key, value)
	return err
}

func (r *credentialRepository) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `DELETE FROM client_credentials WHERE profile=$1 AND key = ANY($2)`

	_, err := r.pool.Exec(ctx, query, r.profile, keys)
	return err
}
