package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var errNoPool = errors.New("postgres storage: pool not configured")

// PostgresStorage stores values in the cv_store table created by the
// migration package.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (r *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if r.pool == nil {
		return nil, errNoPool
	}
	var v []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM cv_store WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *PostgresStorage) Put(ctx context.Context, key string, value []byte) error {
	if r.pool == nil {
		return errNoPool
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO cv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value)
	return err
}

func (r *PostgresStorage) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errNoPool
	}
	return r.pool.Ping(ctx)
}
