package ioartifact

import (
	"fmt"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

func UnknownArtifactError(name string) error {
	msg := "Unknown artifact <em>%s</em>"
	vars := []any{name}
	return &gn.Error{
		Code: errcode.UnknownError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown artifact %s", name),
	}
}
