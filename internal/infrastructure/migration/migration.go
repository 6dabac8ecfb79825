package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// Migrations lists the schema steps for the shared Postgres store, in order.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_cv_store", Up: createCVStore},
		{Name: "add_cv_store_updated_at_index", Up: addUpdatedAtIndex},
	}
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	return Run(ctx, pool, Migrations(), log)
}

func Run(ctx context.Context, pool *pgxpool.Pool, migrations []Migration, log *zap.Logger) error {
	log.Info("starting database migrations", zap.Int("count", len(migrations)))
	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			log.Error("migration failed", zap.String("name", m.Name), zap.Error(err))
			return err
		}
		log.Info("migration completed", zap.String("name", m.Name))
	}
	log.Info("all migrations completed")
	return nil
}

func createCVStore(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cv_store (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func addUpdatedAtIndex(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_cv_store_updated_at ON cv_store (updated_at);`)
	return err
}
