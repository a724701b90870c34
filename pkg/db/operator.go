// Package db declares database contracts used by PostgreSQL export.
package db

import (
	"context"

	"github.com/gnames/dsrecon/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator manages a PostgreSQL connection pool. Export components use
// Pool() to run their own statements.
type Operator interface {
	// Connect establishes a connection pool to the database.
	Connect(context.Context, *config.DatabaseConfig) error

	// Close closes the database connection pool.
	Close() error

	// Pool returns the underlying pool, or nil before Connect.
	Pool() *pgxpool.Pool

	// TableExists checks if a table exists in the public schema.
	TableExists(ctx context.Context, tableName string) (bool, error)
}

// SchemaManager creates or updates export tables. It is idempotent.
type SchemaManager interface {
	Migrate(ctx context.Context) error
}
