package communication

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// JSONCodecName selects the JSON codec via the gRPC content-subtype. The wire
// contract is JSON end to end, so the gRPC transport uses the same encoding
// as the HTTP one instead of generated protobuf messages.
const JSONCodecName = "bridge-json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
