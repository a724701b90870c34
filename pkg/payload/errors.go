package payload

import "errors"

var (
	errNotObject = errors.New("record is not a JSON object")
	errNoYear    = errors.New("year is null")
)
