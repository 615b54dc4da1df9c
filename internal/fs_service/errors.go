package fs_service

import "errors"

var (
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	ErrUnsupportedFlag     = errors.New("unsupported open flag")
)
