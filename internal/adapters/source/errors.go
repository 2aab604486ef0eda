package source

import "errors"

// Sentinel errors for source reading.
var (
	ErrRead  = errors.New("read source failed")
	ErrParse = errors.New("parse source failed")
)
