package iopipeline

import (
	"errors"
	"fmt"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

func NoInputError() error {
	msg := "No input files, use <em>--input</em> to give harvested JSONL files"
	return &gn.Error{
		Code: errcode.ConfigNoInputError,
		Msg:  msg,
		Err:  errors.New("no input paths"),
	}
}

func CancelledError(err error) error {
	msg := "The run was cancelled"
	return &gn.Error{
		Code: errcode.RunCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("run cancelled before exports: %w", err),
	}
}
