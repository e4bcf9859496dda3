package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/voxgate/voxgate/internal/dbx"
	"github.com/voxgate/voxgate/internal/server/migrations"
	"github.com/voxgate/voxgate/internal/server/repositories/accounts"
	"github.com/voxgate/voxgate/internal/server/repositories/projects"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories over one
// connection pool and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresRepositoryManager opens a pgx-backed pool for dsn and checks
// that it is reachable.
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (*PostgresRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepositoryManager{db: db}, nil
}

// NewPostgresRepositoryManagerFromDB wraps an already opened pool.
func NewPostgresRepositoryManagerFromDB(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db}
}

func (m *PostgresRepositoryManager) Accounts() accounts.Repository {
	return accounts.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) Projects() projects.Repository {
	return projects.NewPostgresRepository(m.db)
}

func (m *PostgresRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, Repositories{
			Accounts: accounts.NewPostgresRepository(tx),
			Projects: projects.NewPostgresRepository(tx),
		})
	})
}

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
