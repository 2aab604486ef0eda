package export

import "errors"

// Sentinel errors for exports.
var (
	ErrWrite         = errors.New("write export failed")
	ErrReadManifest  = errors.New("read manifest failed")
	ErrUnknownFormat = errors.New("unknown export format")
)
