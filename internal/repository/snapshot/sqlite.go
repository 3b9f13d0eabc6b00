package snapshot

import (
	"context"
	"database/sql"
	"errors"

	"souvenir-shop/internal/domain"
)

type sqliteRepo struct {
	db *sql.DB
}

// NewSQLite stores snapshots in the snapshots table of a migrated SQLite database.
func NewSQLite(db *sql.DB) Repository {
	return &sqliteRepo{db: db}
}

func (r *sqliteRepo) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE namespace = ? AND key = ?`, namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *sqliteRepo) Put(ctx context.Context, namespace, key string, value []byte) error {
	const q = `
INSERT INTO snapshots (namespace, key, value, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (namespace, key) DO UPDATE
SET value = excluded.value,
    updated_at = excluded.updated_at
`
	_, err := r.db.ExecContext(ctx, q, namespace, key, value)
	return err
}

func (r *sqliteRepo) Delete(ctx context.Context, namespace, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE namespace = ? AND key = ?`, namespace, key)
	return err
}
