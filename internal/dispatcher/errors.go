package dispatcher

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrNilPayload       = errors.New("payload could not be encoded")
)
