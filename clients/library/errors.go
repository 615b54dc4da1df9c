package bridgelib

import (
	"fmt"

	"github.com/supervise-dev/bridge/internal/communication"
)

// Sentinel errors matched from server response codes via errors.Is.
var (
	ErrNotFound      = fmt.Errorf("not found")
	ErrPermission    = fmt.Errorf("permission denied")
	ErrAlreadyExists = fmt.Errorf("already exists")
	ErrInvalidInput  = fmt.Errorf("invalid input")
	ErrSpawnFailed   = fmt.Errorf("spawn failed")
)

// CallError is an application-level failure: the server answered, and the
// answer was an ErrorEnvelope. Message is exactly the server's message
// string; the client fabricates nothing beyond it.
type CallError struct {
	Op      string
	Code    communication.BridgeCode
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Op, e.Code, e.Message)
}

func (e *CallError) Unwrap() error {
	switch e.Code {
	case communication.CodeNotFound:
		return ErrNotFound
	case communication.CodePermissionDenied:
		return ErrPermission
	case communication.CodeAlreadyExists:
		return ErrAlreadyExists
	case communication.CodeBadRequest:
		return ErrInvalidInput
	case communication.CodeSpawnFailed:
		return ErrSpawnFailed
	default:
		return nil
	}
}

// TransportError is a failure to complete the exchange at all (connection
// refused, timeout, broken response). It is distinguishable from any
// application-level CallError.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
