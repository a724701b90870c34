package ioharvest

import (
	"fmt"
	"runtime"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

func ReadFileError(path string, err error) error {
	msg := "Cannot read input file <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: cannot read %s: %w", fn.Name(), path, err),
	}
}

func ScanError(path string, line int, err error) error {
	msg := "Reading <em>%s</em> failed after line %d"
	vars := []any{path, line}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.InputScanError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: scan of %s failed at line %d: %w",
			fn.Name(), path, line, err),
	}
}

func CancelledError(err error) error {
	msg := "Reading of input was cancelled"
	return &gn.Error{
		Code: errcode.RunCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("input reading cancelled: %w", err),
	}
}
