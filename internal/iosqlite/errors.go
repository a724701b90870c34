package iosqlite

import (
	"fmt"
	"runtime"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

func ExportError(path string, err error) error {
	msg := "Cannot export results to SQLite file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SQLiteExportError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: sqlite export to %s: %w", fn.Name(), path, err),
	}
}
