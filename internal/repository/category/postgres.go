package category

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"souvenir-shop/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT c.key, c.name, COUNT(p.id)
FROM categories c
LEFT JOIN products p ON p.category_key = c.key
GROUP BY c.key, c.name, c.position
ORDER BY c.position ASC, c.name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Key, &c.Name, &c.Count); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category, position int) (*domain.Category, error) {
	const q = `
INSERT INTO categories (key, name, position)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE
SET name = EXCLUDED.name,
    position = EXCLUDED.position
`
	if _, err := r.pool.Exec(ctx, q, c.Key, c.Name, position); err != nil {
		return nil, err
	}
	return &c, nil
}
