package ioschema

import (
	"errors"
	"fmt"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError is returned when the operator has no pool.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Export tables need a database connection, none is open",
		Err:  errors.New("schema manager: operator is not connected"),
	}
}

// GORMConnectionError wraps failures to open gorm over the pgx pool.
func GORMConnectionError(err error) error {
	msg := `Cannot open PostgreSQL export connection

<em>How to fix:</em>
  1. Check the <em>database</em> section of config.yaml
  2. Check that DSRECON_DATABASE_* variables are correct`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("gorm open: %w", err),
	}
}

// MigrateSchemaError wraps AutoMigrate failures of export tables.
func MigrateSchemaError(err error) error {
	msg := `Cannot create or update export tables

<em>How to fix:</em>
  1. The database user needs CREATE and ALTER permissions
  2. Tables changed by hand may need to be dropped`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Err:  fmt.Errorf("auto-migrate export tables: %w", err),
	}
}
