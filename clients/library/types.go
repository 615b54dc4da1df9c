package bridgelib

import (
	"github.com/supervise-dev/bridge/internal/communication"
	"github.com/supervise-dev/bridge/internal/schema"
)

// BridgeClient is the function-call façade over the wire protocol. Every
// remote operation has a same-named method that marshals native arguments
// into the wire input shape and decodes the result. The client never retries,
// caches, or batches; the transport owns those semantics.
type BridgeClient struct {
	ServerAddr string
	Comm       communication.Communicator
	From       string
}

func NewBridgeClient(serverAddr string, comm communication.Communicator) *BridgeClient {
	return &BridgeClient{
		ServerAddr: serverAddr,
		Comm:       comm,
		From:       "bridgelib",
	}
}

// SpawnOptions are the optional knobs for Spawn.
type SpawnOptions struct {
	Cwd       string
	Env       map[string]string
	Stdio     schema.StdioConfig
	Input     string
	TimeoutMs int64
}

// ExecOptions are the optional knobs for Exec.
type ExecOptions struct {
	Cwd       string
	Env       map[string]string
	TimeoutMs int64
}
