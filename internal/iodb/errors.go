package iodb

import (
	"fmt"
	"runtime"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

// ConnectionError is returned when database connection fails.
func ConnectionError(
	host string,
	port int,
	database, user string,
	err error,
) error {
	msg := `Could not connect to PostgreSQL database

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>
  2. Verify database <em>%s</em> exists and user <em>%s</em> can use it
  3. Review the database section of
     <em>~/.config/dsrecon/config.yaml</em>`

	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: []any{host, port, database, user},
		Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// NotConnectedError is returned when an operation needs a pool.
func NotConnectedError() error {
	msg := "Database operation attempted without connection"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: not connected to database", fn.Name()),
	}
}

// TableExistsCheckError is returned when a table lookup fails.
func TableExistsCheckError(table string, err error) error {
	msg := "Cannot check if table <em>%s</em> exists"
	return &gn.Error{
		Code: errcode.DBTableExistsCheckError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to check table %s: %w", table, err),
	}
}

// TruncateError is returned when export tables cannot be emptied.
func TruncateError(err error) error {
	msg := "Cannot remove results of the previous export"
	return &gn.Error{
		Code: errcode.DBTruncateError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to truncate export tables: %w", err),
	}
}

// InsertError is returned when rows cannot be inserted.
func InsertError(table string, err error) error {
	msg := "Cannot insert rows into <em>%s</em>"
	return &gn.Error{
		Code: errcode.DBInsertError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("failed to insert into %s: %w", table, err),
	}
}

// AnalyzeError is returned when planner statistics cannot be updated.
func AnalyzeError(err error) error {
	msg := "Cannot update statistics of exported tables"
	return &gn.Error{
		Code: errcode.DBAnalyzeError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to analyze export tables: %w", err),
	}
}
