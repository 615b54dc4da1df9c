package communication

import "context"

// BridgeCode is the transport-independent status of a single call. Each
// communicator maps it to and from its own status space (HTTP status codes,
// gRPC response fields).
type BridgeCode string

const (
	CodeOK               BridgeCode = "OK"
	CodeBadRequest       BridgeCode = "BAD_REQUEST"
	CodeNotFound         BridgeCode = "NOT_FOUND"
	CodePermissionDenied BridgeCode = "PERMISSION_DENIED"
	CodeAlreadyExists    BridgeCode = "ALREADY_EXISTS"
	CodeSpawnFailed      BridgeCode = "SPAWN_FAILED"
	CodeInternal         BridgeCode = "INTERNAL"
	CodeUnavailable      BridgeCode = "UNAVAILABLE"
)

// Message is one inbound or outbound call frame. Type is the operation name
// (e.g. "fs.readFile"); Payload is the operation input, decoded by the
// dispatcher against the operation's schema.
type Message struct {
	From    string `json:"From"`
	Type    string `json:"Type"`
	Payload any    `json:"Payload,omitempty"`
}

// Response is the outcome of one call. Body is either the JSON-encoded result
// or an ErrorEnvelope, depending on Code.
type Response struct {
	Code    BridgeCode
	Body    []byte
	Headers map[string]string
}

// MessageHandler services one decoded message. A returned error means the
// handler itself broke; operation-level failures travel inside the Response.
type MessageHandler func(ctx context.Context, msg Message) (*Response, error)

// Communicator is the transport substrate: it accepts inbound messages,
// hands them to the registered handler, and sends outbound messages to peers.
type Communicator interface {
	Start(handler MessageHandler) error
	Stop() error
	Send(ctx context.Context, to string, msg Message) (*Response, error)
	Address() string
}
