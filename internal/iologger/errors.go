package iologger

import (
	"fmt"
	"runtime"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

// CreateLogFileError is returned when the log file cannot be opened.
func CreateLogFileError(path string, err error) error {
	pc, _, _, _ := runtime.Caller(1)
	caller := runtime.FuncForPC(pc).Name()
	return &gn.Error{
		Code: errcode.CreateLogFileError,
		Msg:  "Cannot open log file <em>%s</em>, check permissions of the log directory",
		Vars: []any{path},
		Err:  fmt.Errorf("from %s: open log %s: %w", caller, path, err),
	}
}
