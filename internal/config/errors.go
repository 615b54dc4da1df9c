package config

import "errors"

var (
	ErrConfigReadFailed  = errors.New("failed to read config file")
	ErrConfigParseFailed = errors.New("failed to parse config file")
	ErrConfigWriteFailed = errors.New("failed to write default config")
	ErrInvalidTransport  = errors.New("invalid transport type")
	ErrInvalidLogLevel   = errors.New("invalid log level")
)
