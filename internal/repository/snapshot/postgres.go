package snapshot

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"souvenir-shop/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM snapshots WHERE namespace = $1 AND key = $2`, namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *postgresRepo) Put(ctx context.Context, namespace, key string, value []byte) error {
	const q = `
INSERT INTO snapshots (namespace, key, value)
VALUES ($1, $2, $3)
ON CONFLICT (namespace, key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, namespace, key, value)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, namespace, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM snapshots WHERE namespace = $1 AND key = $2`, namespace, key)
	return err
}
