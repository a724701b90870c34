// Package ioschema implements db.SchemaManager with GORM AutoMigrate
// over the pgx pool of a db.Operator.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gnames/dsrecon/pkg/db"
	"github.com/gnames/dsrecon/pkg/schema"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the db.SchemaManager interface
// using GORM AutoMigrate.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) db.SchemaManager {
	return &manager{operator: op}
}

// Open wraps the operator pool into a GORM connection.
func Open(op db.Operator) (*gorm.DB, error) {
	pool := op.Pool()
	if pool == nil {
		return nil, NotConnectedError()
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return gormDB, nil
}

// Migrate creates missing tables and columns of export models.
func (m *manager) Migrate(ctx context.Context) error {
	gormDB, err := Open(m.operator)
	if err != nil {
		return err
	}

	if err := schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return MigrateSchemaError(err)
	}
	slog.Info("Database schema is up to date", "tables", schema.TableNames())
	return nil
}
