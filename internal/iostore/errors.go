package iostore

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/dsrecon/pkg/errcode"
	"github.com/gnames/gn"
)

func NoBucketError() error {
	msg := "S3 publishing is enabled, but <em>s3.bucket</em> is empty"
	return &gn.Error{
		Code: errcode.S3ConfigError,
		Msg:  msg,
		Err:  errors.New("s3 bucket is not set"),
	}
}

func ConfigError(err error) error {
	msg := "Cannot load S3 settings"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.S3ConfigError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: aws config: %w", fn.Name(), err),
	}
}

func UploadError(file, bucket string, err error) error {
	msg := "Cannot upload <em>%s</em> to bucket <em>%s</em>"
	vars := []any{file, bucket}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.S3UploadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: upload of %s: %w", fn.Name(), file, err),
	}
}
