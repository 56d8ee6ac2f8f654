// Package rpc holds the gRPC contract of the sync API: the kitchensync.Sync
// service descriptor, its client stub and the JSON codec its messages travel
// with. Messages are the models transport types, so no generated protobuf
// code is involved.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype of the JSON codec.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

// Codec returns the JSON codec used by both ends of kitchensync.Sync.
func Codec() encoding.Codec {
	return jsonCodec{}
}
