package site

import "errors"

// Sentinel errors for site generation.
var (
	ErrRender      = errors.New("render site failed")
	ErrPublish     = errors.New("publish site failed")
	ErrUnknownLang = errors.New("unsupported site language")
)
