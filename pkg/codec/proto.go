package codec

import (
	"google.golang.org/protobuf/proto"

	"github.com/Suhaibinator/SServer/pkg/common"
)

// ProtoCodec is a codec that uses Protocol Buffers for marshaling and unmarshaling.
// T and U are generated message pointer types.
//
// Request bodies arrive as a single wire line, so binary payloads containing CRLF
// cannot be received intact; ProtoCodec is mostly useful for encoding responses.
type ProtoCodec[T proto.Message, U proto.Message] struct{}

// Decode unmarshals the request body into a new message of type T.
func (c *ProtoCodec[T, U]) Decode(req *common.Request) (T, error) {
	var zero T
	msg := zero.ProtoReflect().New().Interface().(T)
	if err := proto.Unmarshal(req.Body, msg); err != nil {
		return zero, err
	}
	return msg, nil
}

// Encode marshals resp into the response body and sets the content type.
func (c *ProtoCodec[T, U]) Encode(w *common.Response, resp U) error {
	body, err := proto.Marshal(resp)
	if err != nil {
		return err
	}
	w.SetHeader("Content-Type", "application/x-protobuf")
	w.SetBody(body)
	return nil
}

// NewProtoCodec creates a new ProtoCodec instance for the specified message types.
func NewProtoCodec[T proto.Message, U proto.Message]() *ProtoCodec[T, U] {
	return &ProtoCodec[T, U]{}
}
