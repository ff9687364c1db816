package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientportal/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Clients string
	Folders string
	Files   string
	Reports string
	prefix  string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Clients: fmt.Sprintf("%sclients", prefix),
		Folders: fmt.Sprintf("%sfolders", prefix),
		Files:   fmt.Sprintf("%sfiles", prefix),
		Reports: fmt.Sprintf("%sreports", prefix),
		prefix:  prefix,
	}
}

// All returns every table in dependency order (parents first)
func (t *TableNames) All() []string {
	return []string{t.Clients, t.Folders, t.Files, t.Reports}
}

// Index builds a prefixed index name so environments sharing a database do not collide
func (t *TableNames) Index(name string) string {
	return fmt.Sprintf("idx_%s%s", t.prefix, name)
}

// CreateConnectionPool creates a pgx pool.
//
// Port 6543 is Supabase's transaction pooler (PgBouncer), which does not
// support prepared statements. For that port the pool switches to
// QueryExecModeCacheDescribe unless the URL already sets
// default_query_exec_mode explicitly.
//
// Table names are interpolated with fmt.Sprintf before the SQL reaches the
// server, so each prefix gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
// Repositories use it so they join a transaction opened by TransactionManager.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
